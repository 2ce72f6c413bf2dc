package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var ErrNoRows = errors.New("failed to generate report, 0 attendance rows were provided")

const maxSheetName = 31

// Generator holds the state for the workbook generation.
type Generator struct {
	file *excelize.File
	loc  *time.Location
}

// ExcelRow is one attendance record flattened for the workbook.
type ExcelRow struct {
	Date           time.Time
	FullName       string
	Email          string
	Department     string
	Designation    string
	Status         string
	CheckInTime    *time.Time
	CheckOutTime   *time.Time
	WorkingMinutes int
	Remarks        string
}

var headers = []string{
	"Date", "Employee", "Email", "Designation", "Status", "Check In", "Check Out", "Working Minutes", "Remarks",
}

func NewGenerator(loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{file: excelize.NewFile(), loc: loc}
}

// GenerateAttendanceReport builds a workbook with one sheet per department,
// sheets ordered by name and rows in the order given.
func GenerateAttendanceReport(rows []ExcelRow, loc *time.Location) (*bytes.Buffer, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	rowsByDept := make(map[string][]ExcelRow)
	for _, row := range rows {
		dept := row.Department
		if dept == "" {
			dept = "Unassigned"
		}
		rowsByDept[dept] = append(rowsByDept[dept], row)
	}

	gen := NewGenerator(loc)
	defer gen.file.Close()

	if err := gen.addSheets(rowsByDept); err != nil {
		return nil, fmt.Errorf("failed to add sheets: %w", err)
	}

	gen.file.SetActiveSheet(0)

	if sheetIndex, _ := gen.file.GetSheetIndex("Sheet1"); sheetIndex != -1 {
		if err := gen.file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet 'Sheet1': %w", err)
		}
	}

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buffer, nil
}

func (g *Generator) addSheets(rowsByDept map[string][]ExcelRow) error {
	depts := make([]string, 0, len(rowsByDept))
	for dept := range rowsByDept {
		depts = append(depts, dept)
	}
	sort.Strings(depts)

	headerIndex := 2
	for _, dept := range depts {
		sheetName := truncateSheetName(dept)
		if _, err := g.file.NewSheet(sheetName); err != nil {
			return fmt.Errorf("failed to create sheet '%s': %w", sheetName, err)
		}
		if err := g.setupSheet(sheetName); err != nil {
			return fmt.Errorf("failed to setup sheet '%s': %w", sheetName, err)
		}
		for i, row := range rowsByDept[dept] {
			if err := g.addRow(sheetName, i+headerIndex, row); err != nil {
				return fmt.Errorf("failed to add row '%d': %w", i+headerIndex, err)
			}
		}
	}
	return nil
}

func (g *Generator) setupSheet(sheetName string) error {
	headerStyle, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err = g.file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to set header row: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err = g.file.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	widths := map[string]float64{
		"A": 12, "B": 28, "C": 30, "D": 20, "E": 12, "F": 10, "G": 10, "H": 16, "I": 40, //nolint:mnd // column widths
	}
	for col, width := range widths {
		if err = g.file.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return g.file.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func (g *Generator) addRow(sheetName string, rowNum int, row ExcelRow) error {
	rowData := []interface{}{
		row.Date.In(g.loc).Format("2006-01-02"),
		row.FullName,
		row.Email,
		row.Designation,
		row.Status,
		g.clock(row.CheckInTime),
		g.clock(row.CheckOutTime),
		row.WorkingMinutes,
		row.Remarks,
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	if err := g.file.SetSheetRow(sheetName, cell, &rowData); err != nil {
		return fmt.Errorf("failed to set sheet row: %w", err)
	}
	return nil
}

func (g *Generator) clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(g.loc).Format("15:04")
}

// truncateSheetName keeps names within Excel's 31 rune limit and strips the
// characters Excel forbids in sheet names.
func truncateSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	if utf8.RuneCountInString(name) > maxSheetName {
		return string([]rune(name)[:maxSheetName])
	}
	return name
}
