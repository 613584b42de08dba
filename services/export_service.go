package services

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"stackedwins/logger"
	"stackedwins/repository"
)

const (
	CheckInSheet       = "Check-ins"
	checkInDateLayout  = "2006-01-02"
	checkInExportWidth = 18
)

var checkInHeaders = []interface{}{"Date", "Energy", "Stress", "Sleep Quality", "Reflection", "Wins"}

// ExportService renders a user's check-in history as a spreadsheet.
type ExportService interface {
	// WriteCheckIns writes an xlsx workbook with one row per check-in,
	// oldest first.
	WriteCheckIns(ctx context.Context, userID string, w io.Writer) error
}

type exportService struct {
	checkIns repository.CheckInRepository
	log      *logger.Logger
}

func NewExportService(checkIns repository.CheckInRepository, log *logger.Logger) ExportService {
	return &exportService{checkIns: checkIns, log: orNop(log)}
}

func (s *exportService) WriteCheckIns(ctx context.Context, userID string, w io.Writer) error {
	rows, err := s.checkIns.ListAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("load check-ins: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CheckInSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetColWidth(CheckInSheet, "A", "F", checkInExportWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetSheetRow(CheckInSheet, "A1", &checkInHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, c := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		var sleep, reflection interface{}
		if c.SleepQuality != nil {
			sleep = *c.SleepQuality
		}
		if c.Reflection != nil {
			reflection = *c.Reflection
		}
		row := []interface{}{c.Date.Format(checkInDateLayout), c.Energy, c.Stress, sleep, reflection, len(c.Completions)}
		if err := f.SetSheetRow(CheckInSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	scoped(ctx, s.log, "ExportService").Info("Check-ins exported", "user_id", userID, "rows", len(rows))
	return nil
}
