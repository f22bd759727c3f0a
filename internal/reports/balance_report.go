package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"gasbalance-cloud/internal/backend"
	"gasbalance-cloud/internal/period"
)

// BalanceReport is the monthly balance history of one valve, ready to render.
type BalanceReport struct {
	GeneratedAt time.Time
	ValveID     string
	KPIs        backend.BalanceKPIs
	Rows        []BalanceRow
}

// BalanceRow is one month with its long-form period label.
type BalanceRow struct {
	Period   string
	Label    string
	Input    *float64
	Output   *float64
	Losses   *float64
	Index    *float64
	Forecast bool
}

// NewBalanceReport labels every row of a backend balance report.
func NewBalanceReport(src backend.BalanceReport, now time.Time) BalanceReport {
	rows := make([]BalanceRow, 0, len(src.Balances))
	for _, b := range src.Balances {
		rows = append(rows, BalanceRow{
			Period:   b.Period,
			Label:    period.Label(b.Period, period.Long),
			Input:    b.Input,
			Output:   b.Output,
			Losses:   b.Losses,
			Index:    b.Index,
			Forecast: b.Forecast,
		})
	}
	return BalanceReport{
		GeneratedAt: now.UTC(),
		ValveID:     src.ValveID,
		KPIs:        src.KPIs,
		Rows:        rows,
	}
}

func formatMeasure(value *float64, decimals int) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.*f", decimals, *value)
}

func originLabel(forecast bool) string {
	if forecast {
		return "Pronóstico"
	}
	return "Real"
}

// BuildBalanceReportPDF renders the balance report as PDF.
func BuildBalanceReportPDF(report BalanceReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, tr(fmt.Sprintf("Balance Virtual - %s", report.ValveID)))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Generado: %s", report.GeneratedAt.Format(time.RFC3339))))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Índice promedio (%%): %.2f", report.KPIs.AverageIndex)))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Pérdidas totales (m³): %.2f", report.KPIs.TotalLosses)))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Meses analizados: %d", report.KPIs.MonthsAnalyzed)))
	pdf.Ln(8)

	widths := []float64{36, 28, 28, 28, 26, 24}
	headers := []string{"Período", "Entrada (m³)", "Salida (m³)", "Pérdidas (m³)", "Índice (%)", "Origen"}
	pdf.SetFont("Arial", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 6, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range report.Rows {
		pdf.CellFormat(widths[0], 6, tr(row.Label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, formatMeasure(row.Input, 2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, formatMeasure(row.Output, 2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, formatMeasure(row.Losses, 2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, formatMeasure(row.Index, 2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, tr(originLabel(row.Forecast)), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildBalanceReportXLSX renders the balance report as a workbook. Missing
// measurements are left as empty cells.
func BuildBalanceReportXLSX(report BalanceReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "resumen"
	balancesSheet := "balances"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(balancesSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Balance Virtual")
	_ = f.SetCellValue(summarySheet, "A3", "Válvula")
	_ = f.SetCellValue(summarySheet, "B3", report.ValveID)
	_ = f.SetCellValue(summarySheet, "A4", "Generado")
	_ = f.SetCellValue(summarySheet, "B4", report.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A5", "Índice promedio (%)")
	_ = f.SetCellValue(summarySheet, "B5", report.KPIs.AverageIndex)
	_ = f.SetCellValue(summarySheet, "A6", "Pérdidas totales (m³)")
	_ = f.SetCellValue(summarySheet, "B6", report.KPIs.TotalLosses)
	_ = f.SetCellValue(summarySheet, "A7", "Meses analizados")
	_ = f.SetCellValue(summarySheet, "B7", report.KPIs.MonthsAnalyzed)

	headers := []string{"Código", "Período", "Entrada (m³)", "Salida (m³)", "Pérdidas (m³)", "Índice (%)", "Origen"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(balancesSheet, cell, header)
	}
	for i, row := range report.Rows {
		r := i + 2
		_ = f.SetCellValue(balancesSheet, fmt.Sprintf("A%d", r), row.Period)
		_ = f.SetCellValue(balancesSheet, fmt.Sprintf("B%d", r), row.Label)
		setMeasure(f, balancesSheet, fmt.Sprintf("C%d", r), row.Input)
		setMeasure(f, balancesSheet, fmt.Sprintf("D%d", r), row.Output)
		setMeasure(f, balancesSheet, fmt.Sprintf("E%d", r), row.Losses)
		setMeasure(f, balancesSheet, fmt.Sprintf("F%d", r), row.Index)
		_ = f.SetCellValue(balancesSheet, fmt.Sprintf("G%d", r), originLabel(row.Forecast))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setMeasure(f *excelize.File, sheet, cell string, value *float64) {
	if value == nil {
		return
	}
	_ = f.SetCellValue(sheet, cell, *value)
}
