package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"lawsuit_tracker_go/models"

	"github.com/xuri/excelize/v2"
)

// SheetLawsuits is the sheet read by ImportLawsuits
const SheetLawsuits = "Lawsuits"

var lawsuitImportHeaders = []string{"Case Number*", "Plaintiff*", "Defendant*", "Case Type*"}

// ImportResult contains the summary of the import process
type ImportResult struct {
	TotalProcessed int      `json:"totalProcessed"`
	SuccessCount   int      `json:"successCount"`
	FailedCount    int      `json:"failedCount"`
	Errors         []string `json:"errors"`
}

// LawsuitImportTemplate generates the spreadsheet accepted by ImportLawsuits
func LawsuitImportTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SheetLawsuits)
	for i, header := range lawsuitImportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetLawsuits, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(SheetLawsuits, "A1", "D1", headerStyle)
	f.SetColWidth(SheetLawsuits, "A", "D", 25)

	// Example row
	f.SetCellValue(SheetLawsuits, "A2", "CIV-2025-001")
	f.SetCellValue(SheetLawsuits, "B2", "Juan Perez")
	f.SetCellValue(SheetLawsuits, "C2", "Constructora Andina S.A.")
	f.SetCellValue(SheetLawsuits, "D2", models.CaseTypeCivil)

	// Restrict case type to the known values
	dv := excelize.NewDataValidation(true)
	dv.Sqref = "D2:D1000"
	if err := dv.SetDropList(models.CaseTypes()); err == nil {
		f.AddDataValidation(SheetLawsuits, dv)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// ImportLawsuits creates one pending lawsuit per row. Every row goes through
// the same rules as Create; a failing row is reported and skipped.
func (s *LawsuitService) ImportLawsuits(ctx context.Context, file io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheet := SheetLawsuits
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetList()[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read lawsuits sheet: %w", err)
	}

	result := &ImportResult{Errors: []string{}}
	for i, row := range rows {
		if i == 0 {
			continue
		} // Header
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		result.TotalProcessed++

		if len(row) < len(lawsuitImportHeaders) {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: missing columns", i+1))
			continue
		}

		lawsuit := &models.Lawsuit{
			CaseNumber: strings.TrimSpace(row[0]),
			Plaintiff:  strings.TrimSpace(row[1]),
			Defendant:  strings.TrimSpace(row[2]),
			CaseType:   strings.ToLower(strings.TrimSpace(row[3])),
		}
		if _, err := s.Create(ctx, lawsuit); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d (%s): %v", i+1, lawsuit.CaseNumber, err))
			continue
		}
		result.SuccessCount++
	}

	s.log.InfoContext(ctx, "Lawsuit import finished",
		"processed", result.TotalProcessed,
		"created", result.SuccessCount,
		"failed", result.FailedCount)
	return result, nil
}
