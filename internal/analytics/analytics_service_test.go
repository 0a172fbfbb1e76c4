package analytics

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fakeAnalyticsRepository struct {
	approvedBetweenFn func(ctx context.Context, start, end time.Time) ([]ReportRow, error)
}

func (f *fakeAnalyticsRepository) ApprovedBetween(ctx context.Context, start, end time.Time) ([]ReportRow, error) {
	if f.approvedBetweenFn != nil {
		return f.approvedBetweenFn(ctx, start, end)
	}
	return nil, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleRows() []ReportRow {
	return []ReportRow{
		{EmployeeName: "Mira Chen", LeaveTypeCode: "VAC", LeaveTypeName: "Vacation",
			StartDate: day(2026, 3, 2), EndDate: day(2026, 3, 6)},
		{EmployeeName: "Lee Park", LeaveTypeCode: "SICK", LeaveTypeName: "Sick Leave",
			StartDate: day(2026, 3, 30), EndDate: day(2026, 4, 1)},
		{EmployeeName: "Mira Chen", LeaveTypeCode: "VAC", LeaveTypeName: "Vacation",
			StartDate: day(2026, 7, 20), EndDate: day(2026, 7, 21)},
	}
}

func TestDerivePeriod(t *testing.T) {
	t.Run("whole year", func(t *testing.T) {
		start, end := derivePeriod(2026, 0)

		assert.Equal(t, day(2026, 1, 1), start)
		assert.Equal(t, day(2026, 12, 31), end)
	})

	t.Run("single month", func(t *testing.T) {
		start, end := derivePeriod(2026, 4)

		assert.Equal(t, day(2026, 4, 1), start)
		assert.Equal(t, day(2026, 4, 30), end)
	})

	t.Run("leap february", func(t *testing.T) {
		_, end := derivePeriod(2028, 2)

		assert.Equal(t, day(2028, 2, 29), end)
	})
}

func TestAnalyticsService_Summarize(t *testing.T) {
	ctx := context.Background()

	t.Run("success - aggregates by type, employee and month", func(t *testing.T) {
		repo := &fakeAnalyticsRepository{
			approvedBetweenFn: func(ctx context.Context, start, end time.Time) ([]ReportRow, error) {
				assert.Equal(t, day(2026, 1, 1), start)
				assert.Equal(t, day(2026, 12, 31), end)
				return sampleRows(), nil
			},
		}
		svc := NewService(repo, zap.NewNop())

		summary, err := svc.Summarize(ctx, 2026, 0)

		assert.NoError(t, err)
		assert.Equal(t, "2026-01-01", summary.PeriodStart)
		assert.Equal(t, "2026-12-31", summary.PeriodEnd)
		assert.Equal(t, 10, summary.TotalDays)

		assert.Equal(t, []Bucket{
			{Label: "Sick Leave", Days: 3},
			{Label: "Vacation", Days: 7},
		}, summary.ByType)
		assert.Equal(t, []Bucket{
			{Label: "Lee Park", Days: 3},
			{Label: "Mira Chen", Days: 7},
		}, summary.ByEmployee)
		// Requests spanning a month boundary are bucketed under the start month.
		assert.Equal(t, []Bucket{
			{Label: "2026-03", Days: 8},
			{Label: "2026-07", Days: 2},
		}, summary.ByMonth)

		if assert.Len(t, summary.Requests, 3) {
			assert.Equal(t, 5, summary.Requests[0].TotalDays)
			assert.Equal(t, "2026-03-02", summary.Requests[0].StartDate)
		}
	})

	t.Run("empty window", func(t *testing.T) {
		svc := NewService(&fakeAnalyticsRepository{}, zap.NewNop())

		summary, err := svc.Summarize(ctx, 2026, 4)

		assert.NoError(t, err)
		assert.Zero(t, summary.TotalDays)
		assert.Empty(t, summary.ByType)
		assert.Empty(t, summary.Requests)
	})

	t.Run("negative - repo failure propagates", func(t *testing.T) {
		repo := &fakeAnalyticsRepository{
			approvedBetweenFn: func(ctx context.Context, start, end time.Time) ([]ReportRow, error) {
				return nil, assert.AnError
			},
		}
		svc := NewService(repo, zap.NewNop())

		_, err := svc.Summarize(ctx, 2026, 0)

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestAnalyticsService_ExportCSV(t *testing.T) {
	repo := &fakeAnalyticsRepository{
		approvedBetweenFn: func(ctx context.Context, start, end time.Time) ([]ReportRow, error) {
			return sampleRows(), nil
		},
	}
	svc := NewService(repo, zap.NewNop())

	data, err := svc.ExportCSV(context.Background(), 2026, 0)
	assert.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	assert.NoError(t, err)

	assert.Equal(t, []string{"Leave Analytics Report"}, records[0])
	assert.Equal(t, []string{"Period: 2026-01-01 - 2026-12-31"}, records[1])
	assert.Contains(t, records, []string{"Breakdown by Leave Type"})
	assert.Contains(t, records, []string{"Vacation", "7"})
	assert.Contains(t, records, []string{"Breakdown by Employee"})
	assert.Contains(t, records, []string{"Lee Park", "3"})
	assert.Contains(t, records, []string{"Monthly Totals"})
	assert.Contains(t, records, []string{"2026-03", "8"})
	assert.Contains(t, records, []string{"Mira Chen", "Vacation", "2026-03-02", "2026-03-06", "5"})
}

func TestAnalyticsService_ExportXLSX(t *testing.T) {
	repo := &fakeAnalyticsRepository{
		approvedBetweenFn: func(ctx context.Context, start, end time.Time) ([]ReportRow, error) {
			return sampleRows(), nil
		},
	}
	svc := NewService(repo, zap.NewNop())

	data, err := svc.ExportXLSX(context.Background(), 2026, 0)
	assert.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	assert.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"Summary", "By Type", "By Employee", "Monthly", "Requests"},
		f.GetSheetList(),
	)

	total, err := f.GetCellValue("Summary", "B3")
	assert.NoError(t, err)
	assert.Equal(t, "10", total)

	label, err := f.GetCellValue("By Type", "A2")
	assert.NoError(t, err)
	assert.Equal(t, "Sick Leave", label)

	employee, err := f.GetCellValue("Requests", "A2")
	assert.NoError(t, err)
	assert.Equal(t, "Mira Chen", employee)
}
