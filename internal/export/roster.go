package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"employeedir/internal/domain/employee"
)

const (
	sheetName   = "Employees"
	maxPDFCell  = 60
	timeFormat  = "2006-01-02 15:04"
	rosterTitle = "Employee Directory"
)

var rosterHeaders = []string{"ID", "Name", "Email", "Position", "Created", "Updated"}

func rosterRow(emp employee.Employee) []string {
	return []string{
		strconv.FormatInt(emp.ID, 10),
		emp.Name,
		emp.Email,
		emp.Position,
		emp.CreatedAt.UTC().Format(timeFormat),
		emp.UpdatedAt.UTC().Format(timeFormat),
	}
}

// RosterPDF writes a one-table landscape PDF of the directory.
func RosterPDF(w io.Writer, employees []employee.Employee, generated time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(rosterTitle, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, rosterTitle)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s UTC, %d employees", generated.UTC().Format(timeFormat), len(employees)))
	pdf.Ln(10)

	widths := []float64{15, 60, 75, 60, 32, 32}
	pdf.SetFont("Helvetica", "B", 10)
	for i, header := range rosterHeaders {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, emp := range employees {
		for i, value := range rosterRow(emp) {
			pdf.CellFormat(widths[i], 7, tr(truncate(value, maxPDFCell)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render roster pdf: %w", err)
	}
	return pdf.Output(w)
}

// RosterXLSX writes the directory to a single-sheet workbook.
func RosterXLSX(w io.Writer, employees []employee.Employee) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for col, header := range rosterHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("write header %s: %w", cell, err)
		}
	}
	for i, emp := range employees {
		row := i + 2
		values := []any{emp.ID, emp.Name, emp.Email, emp.Position, emp.CreatedAt.UTC(), emp.UpdatedAt.UTC()}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}
	if err := f.SetColWidth(sheetName, "B", "D", 30); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write roster xlsx: %w", err)
	}
	return nil
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
