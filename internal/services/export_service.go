package services

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/alimgiray/mailscope/internal/models"
)

// ExportService renders an analytics snapshot as an Excel workbook for
// download from the dashboard
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportSnapshot builds a workbook with summary, per-service and duplicate
// sheets from one analytics snapshot
func (s *ExportService) ExportSnapshot(snapshot *models.AnalyticsSnapshot) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeSummarySheet(f, snapshot); err != nil {
		return nil, err
	}
	if err := s.writeServicesSheet(f, snapshot); err != nil {
		return nil, err
	}
	if err := s.writeDuplicatesSheet(f, snapshot); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func (s *ExportService) writeSummarySheet(f *excelize.File, snapshot *models.AnalyticsSnapshot) error {
	sheet := "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Total Emails", snapshot.TotalEmails},
		{"Successful Extractions", snapshot.SuccessfulExtractions},
		{"Failed Extractions", snapshot.FailedExtractions},
		{"Average Body Length", snapshot.AverageBodyLength},
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	// Category distribution below the counters, sorted for stable output
	categories := make([]string, 0, len(snapshot.CategoryDistribution))
	for category := range snapshot.CategoryDistribution {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	header := []interface{}{"Category", "Count"}
	if err := f.SetSheetRow(sheet, "A6", &header); err != nil {
		return err
	}
	for i, category := range categories {
		row := []interface{}{category, snapshot.CategoryDistribution[category]}
		cell := fmt.Sprintf("A%d", i+7)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

func (s *ExportService) writeServicesSheet(f *excelize.File, snapshot *models.AnalyticsSnapshot) error {
	sheet := "Services"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Service", "Occurrences", "Average Amount", "Currency"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	names := make([]string, 0, len(snapshot.ServiceAnalytics))
	for name := range snapshot.ServiceAnalytics {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		sa := snapshot.ServiceAnalytics[name]
		currency := ""
		if sa.Currency != nil {
			currency = *sa.Currency
		}
		row := []interface{}{name, sa.Count, sa.AverageAmount, currency}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

func (s *ExportService) writeDuplicatesSheet(f *excelize.File, snapshot *models.AnalyticsSnapshot) error {
	sheet := "Duplicates"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Service", "Count", "Category"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	names := make([]string, 0, len(snapshot.DuplicateSubscriptionsDetails))
	for name := range snapshot.DuplicateSubscriptionsDetails {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		detail := snapshot.DuplicateSubscriptionsDetails[name]
		category := ""
		if detail.Category != nil {
			category = *detail.Category
		}
		row := []interface{}{name, detail.Count, category}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}
