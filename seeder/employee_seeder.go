package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"geo-attendance/models"
	"geo-attendance/pkg/password"
	"geo-attendance/repository"
)

// DemoPassword is the password of every seeded demo employee.
const DemoPassword = "Password123"

var departmentDesignations = map[string][]string{
	"Engineering":     {"Backend Developer", "Frontend Developer", "DevOps Engineer", "QA Engineer"},
	"Finance":         {"Accountant", "Financial Analyst", "Payroll Officer"},
	"Human Resources": {"HR Manager", "Recruiter", "HR Specialist"},
	"Sales":           {"Account Manager", "Sales Executive", "Business Development"},
	"Operations":      {"Operations Manager", "Logistics Coordinator", "Office Administrator"},
}

var (
	firstNames = []string{"Asha", "Ravi", "Meera", "Arjun", "Kavya", "Rohan", "Priya", "Vikram", "Neha", "Karan", "Divya", "Sanjay"}
	lastNames  = []string{"Rao", "Sharma", "Iyer", "Patel", "Nair", "Reddy", "Gupta", "Menon", "Das", "Kulkarni"}
)

// SeedDemoEmployees adds n demo employees (employee01@example.com, ...) for
// local runs. Existing addresses are left alone, so reruns are harmless.
func SeedDemoEmployees(ctx context.Context, employees repository.EmployeeRepository, n int, log *slog.Logger) (int, error) {
	hashed, err := password.HashPassword(DemoPassword)
	if err != nil {
		return 0, fmt.Errorf("failed to hash demo password: %w", err)
	}

	departments := make([]string, 0, len(departmentDesignations))
	for dept := range departmentDesignations {
		departments = append(departments, dept)
	}
	sort.Strings(departments)

	rng := rand.New(rand.NewPCG(42, uint64(n))) //nolint:gosec // demo data only
	created := 0
	for i := 1; i <= n; i++ {
		email := fmt.Sprintf("employee%02d@example.com", i)
		existing, err := employees.FindByEmail(ctx, email)
		if err != nil {
			return created, fmt.Errorf("failed to look up %s: %w", email, err)
		}
		if existing != nil {
			continue
		}

		dept := departments[rng.IntN(len(departments))]
		designations := departmentDesignations[dept]
		now := time.Now()
		emp := &models.Employee{
			FullName:            firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))],
			Email:               email,
			Password:            hashed,
			Department:          dept,
			Designation:         designations[rng.IntN(len(designations))],
			CreatedByAdminEmail: "seeder",
			Role:                models.RoleEmployee,
			IsActive:            true,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err = employees.Create(ctx, emp); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", email, err)
		}
		created++
	}

	log.Info("demo employees seeded", "created", created, "requested", n)
	return created, nil
}
