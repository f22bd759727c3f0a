package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	alerts "gasbalance-cloud/internal/alerts/domain"
)

// AlertReport is a filtered alert listing with its statistics.
type AlertReport struct {
	GeneratedAt time.Time
	Filter      alerts.Filter
	Stats       alerts.Stats
	Alerts      []alerts.Alert
}

// NewAlertReport tallies list and stamps the report.
func NewAlertReport(filter alerts.Filter, list []alerts.Alert, now time.Time) AlertReport {
	return AlertReport{
		GeneratedAt: now.UTC(),
		Filter:      filter,
		Stats:       alerts.Aggregate(list),
		Alerts:      list,
	}
}

func filterValue(value string) string {
	if value == "" {
		return "todos"
	}
	return value
}

// BuildAlertReportPDF renders the alert report as PDF.
func BuildAlertReportPDF(report AlertReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, tr("Reporte de Alertas"))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Generado: %s", report.GeneratedAt.Format(time.RFC3339))))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Filtros: estado=%s severidad=%s tipo=%s válvula=%s",
		filterValue(report.Filter.State), filterValue(report.Filter.Severity),
		filterValue(report.Filter.Type), filterValue(report.Filter.Valve))))
	pdf.Ln(8)

	stats := report.Stats
	pdf.Cell(0, 6, tr(fmt.Sprintf("Total: %d   Pendientes: %d   Revisadas: %d   Resueltas: %d",
		stats.Total, stats.Pendientes, stats.Revisadas, stats.Resueltas)))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Críticas: %d   Altas: %d   Medias: %d   Bajas: %d",
		stats.Criticas, stats.Altas, stats.Medias, stats.Bajas)))
	pdf.Ln(8)

	widths := []float64{12, 32, 24, 40, 26, 22, 24, 97}
	headers := []string{"ID", "Fecha", "Válvula", "Ubicación", "Tipo", "Severidad", "Estado", "Descripción"}
	pdf.SetFont("Arial", "B", 9)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 6, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	for _, alert := range report.Alerts {
		cells := []string{
			fmt.Sprintf("%d", alert.ID),
			alert.Date,
			alert.Valve,
			alert.Location,
			string(alert.Type),
			alert.Severity.Label(),
			alert.State.Label(),
			truncate(alert.Description, 70),
		}
		for i, cell := range cells {
			align := "L"
			if i == 0 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildAlertReportXLSX renders the alert report as a workbook with a
// summary sheet and an alerts sheet.
func BuildAlertReportXLSX(report AlertReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "resumen"
	alertsSheet := "alertas"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(alertsSheet); err != nil {
		return nil, err
	}

	stats := report.Stats
	summary := [][2]any{
		{"Reporte de Alertas", nil},
		{"Generado", report.GeneratedAt.Format(time.RFC3339)},
		{"Estado", filterValue(report.Filter.State)},
		{"Severidad", filterValue(report.Filter.Severity)},
		{"Tipo", filterValue(report.Filter.Type)},
		{"Válvula", filterValue(report.Filter.Valve)},
		{"Total", stats.Total},
		{"Pendientes", stats.Pendientes},
		{"Revisadas", stats.Revisadas},
		{"Resueltas", stats.Resueltas},
		{"Críticas", stats.Criticas},
		{"Altas", stats.Altas},
		{"Medias", stats.Medias},
		{"Bajas", stats.Bajas},
	}
	for i, row := range summary {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), row[0])
		if row[1] != nil {
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), row[1])
		}
	}

	headers := []string{"ID", "Fecha", "Válvula", "Ubicación", "Tipo", "Severidad", "Estado", "Descripción"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(alertsSheet, cell, header)
	}
	for i, alert := range report.Alerts {
		row := i + 2
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("A%d", row), alert.ID)
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("B%d", row), alert.Date)
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("C%d", row), alert.Valve)
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("D%d", row), alert.Location)
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("E%d", row), string(alert.Type))
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("F%d", row), alert.Severity.Label())
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("G%d", row), alert.State.Label())
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("H%d", row), alert.Description)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}
