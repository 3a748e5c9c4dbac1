package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const (
	SheetWorkload  = "Workload"
	SheetAnalytics = "Analytics"
)

// WorkloadReporter renders the workload report and lawsuit analytics as a spreadsheet
type WorkloadReporter struct {
	lawyers  *LawyerService
	lawsuits *LawsuitService
	log      *slog.Logger
}

// NewWorkloadReporter builds a reporter over both services
func NewWorkloadReporter(lawyers *LawyerService, lawsuits *LawsuitService, log *slog.Logger) *WorkloadReporter {
	return &WorkloadReporter{lawyers: lawyers, lawsuits: lawsuits, log: log}
}

// BuildWorkbook returns an .xlsx with one row per lawyer and the analytics totals
func (r *WorkloadReporter) BuildWorkbook(ctx context.Context) (*bytes.Buffer, error) {
	r.log.InfoContext(ctx, "Building workload workbook")

	workload, err := r.lawyers.GetLawyerWorkload(ctx)
	if err != nil {
		return nil, err
	}
	analytics, err := r.lawsuits.GetLawsuitAnalytics(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SheetWorkload)
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	// --- Workload Sheet ---
	headers := []string{"Name", "Specialization", "Status", "Active Cases", "Resolved Cases", "Total Cases"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetWorkload, cell, header)
	}
	f.SetCellStyle(SheetWorkload, "A1", "F1", headerStyle)
	f.SetColWidth(SheetWorkload, "A", "C", 25)
	f.SetColWidth(SheetWorkload, "D", "F", 15)

	for i, l := range workload.Lawyers {
		row := i + 2
		values := []any{l.Name, l.Specialization, l.Status, l.ActiveCases, l.ResolvedCases, l.TotalCases}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SheetWorkload, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write workload row: %w", err)
			}
		}
	}

	summaryRow := len(workload.Lawyers) + 3
	f.SetCellValue(SheetWorkload, fmt.Sprintf("A%d", summaryRow), "Average active cases")
	f.SetCellValue(SheetWorkload, fmt.Sprintf("D%d", summaryRow), workload.Summary.AverageActiveCases)
	f.SetCellStyle(SheetWorkload, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("A%d", summaryRow), headerStyle)

	// --- Analytics Sheet ---
	if _, err := f.NewSheet(SheetAnalytics); err != nil {
		return nil, fmt.Errorf("failed to create analytics sheet: %w", err)
	}
	f.SetCellValue(SheetAnalytics, "A1", "Metric")
	f.SetCellValue(SheetAnalytics, "B1", "Value")
	f.SetCellStyle(SheetAnalytics, "A1", "B1", headerStyle)
	f.SetColWidth(SheetAnalytics, "A", "A", 30)

	rows := [][]any{
		{"Total lawsuits", analytics.Total},
		{"Pending", analytics.ByStatus["pending"]},
		{"Assigned", analytics.ByStatus["assigned"]},
		{"Resolved", analytics.ByStatus["resolved"]},
		{"Civil", analytics.ByType["civil"]},
		{"Criminal", analytics.ByType["criminal"]},
		{"Labor", analytics.ByType["labor"]},
		{"Commercial", analytics.ByType["commercial"]},
		{"Assignment rate (%)", analytics.Metrics.AssignmentRate},
		{"Resolution rate (%)", analytics.Metrics.ResolutionRate},
		{"Pending rate (%)", analytics.Metrics.PendingRate},
	}
	for i, row := range rows {
		f.SetCellValue(SheetAnalytics, fmt.Sprintf("A%d", i+2), row[0])
		f.SetCellValue(SheetAnalytics, fmt.Sprintf("B%d", i+2), row[1])
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}
