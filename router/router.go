package router

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"geo-attendance/config"
	"geo-attendance/config/middleware"
	_ "geo-attendance/docs"
	"geo-attendance/handlers"
	"geo-attendance/pkg/metrics"
	"geo-attendance/pkg/paseto"
	"geo-attendance/repository"
	"geo-attendance/services"
)

// Dependencies is everything the HTTP layer needs.
type Dependencies struct {
	Log      *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Store    repository.Pinger
	Maker    *paseto.Maker

	Employees repository.EmployeeRepository

	Auth          *services.AuthService
	EmployeeSvc   *services.EmployeeService
	Attendance    *services.AttendanceService
	Leaves        *services.LeaveService
	Offices       *services.OfficeService
	Notifications *services.NotificationService
	Dashboard     *services.DashboardService

	AllowedOrigins []string
	CookieSecure   bool
	RequestTimeout time.Duration
	// AccessLog toggles Fiber's request logger.
	AccessLog bool
}

// NewApp builds the Fiber application with middleware and routes.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "geo-attendance",
		ErrorHandler: handlers.ErrorHandler(deps.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	config.SetupCORS(app, deps.AllowedOrigins)
	if deps.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(middleware.MetricsMiddleware(deps.Metrics))

	SetupRoutes(app, deps)
	return app
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	timeout := deps.RequestTimeout

	authHandler := handlers.NewAuthHandler(deps.Auth, timeout, deps.CookieSecure)
	employeeHandler := handlers.NewEmployeeHandler(deps.EmployeeSvc, deps.Attendance, timeout)
	attendanceHandler := handlers.NewAttendanceHandler(deps.Attendance, timeout)
	leaveHandler := handlers.NewLeaveHandler(deps.Leaves, timeout)
	officeHandler := handlers.NewOfficeHandler(deps.Offices, timeout)
	notificationHandler := handlers.NewNotificationHandler(deps.Notifications, timeout)
	dashboardHandler := handlers.NewDashboardHandler(deps.Dashboard, timeout)

	adminOnly := middleware.AdminMiddleware(deps.Maker)
	employeeOnly := middleware.EmployeeMiddleware(deps.Maker, deps.Employees, timeout)

	// Service, health and docs
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Geo Attendance API",
			"status":  "running",
			"docs":    "/docs/index.html",
		})
	})
	app.Get("/healthz", handlers.Health(deps.Store, timeout))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	app.Get("/docs/*", swagger.HandlerDefault)

	// Public auth routes are registered before the protected groups that
	// share their prefix.
	app.Post("/admin/login", authHandler.AdminLogin)
	app.Post("/admin/logout", authHandler.AdminLogout)
	app.Post("/employee/login", authHandler.EmployeeLogin)
	app.Post("/employee/logout", authHandler.EmployeeLogout)
	app.Post("/employee/register", adminOnly, employeeHandler.Register)

	admin := app.Group("/admin", adminOnly)
	admin.Get("/profile", authHandler.AdminProfile)
	admin.Get("/dashboard", dashboardHandler.Stats)

	admin.Get("/employees", employeeHandler.List)
	admin.Get("/employees/:id", employeeHandler.Get)
	admin.Get("/employees/:id/attendance", employeeHandler.Attendance)
	admin.Patch("/employees/:id/status", employeeHandler.SetStatus)

	admin.Get("/attendance", attendanceHandler.List)
	admin.Get("/attendance/today", attendanceHandler.Today)
	admin.Get("/attendance/export", attendanceHandler.Export)
	admin.Post("/attendance/close-out", attendanceHandler.CloseOut)
	admin.Patch("/attendance/:id", attendanceHandler.Override)

	admin.Get("/leaves", leaveHandler.List)
	admin.Patch("/leaves/:id", leaveHandler.Review)

	admin.Post("/office-location", officeHandler.Configure)
	admin.Get("/office-location", officeHandler.Get)
	admin.Get("/office-location/qr", officeHandler.QRCode)

	admin.Post("/notifications", notificationHandler.Create)
	admin.Get("/notifications", notificationHandler.All)

	employee := app.Group("/employee", employeeOnly)
	employee.Get("/profile", employeeHandler.Profile)
	employee.Put("/profile", employeeHandler.UpdateProfile)
	employee.Get("/notifications", notificationHandler.Mine)
	employee.Patch("/notifications/:id/read", notificationHandler.MarkRead)

	attendance := app.Group("/attendance", employeeOnly)
	attendance.Post("/check-in", attendanceHandler.CheckIn)
	attendance.Post("/check-out", attendanceHandler.CheckOut)
	attendance.Get("/my", attendanceHandler.My)
	attendance.Get("/my/summary", attendanceHandler.MySummary)

	leaves := app.Group("/leaves", employeeOnly)
	leaves.Post("/apply", leaveHandler.Apply)
	leaves.Get("/my", leaveHandler.Mine)
	leaves.Delete("/:id", leaveHandler.Cancel)

	deps.Log.Info("routes registered", "count", len(app.GetRoutes(true)))
}
