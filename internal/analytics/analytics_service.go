package analytics

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Service interface {
	// Summarize aggregates approved leave intersecting the period. month 0
	// means the whole year; year 0 means the current year.
	Summarize(ctx context.Context, year, month int) (*SummaryResponse, error)
	ExportCSV(ctx context.Context, year, month int) ([]byte, error)
	ExportXLSX(ctx context.Context, year, month int) ([]byte, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("analytics.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &service{repo: repo, logger: l}
}

// derivePeriod resolves the reporting window: a single month when given,
// otherwise the full year.
func derivePeriod(year, month int) (time.Time, time.Time) {
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	if month >= 1 && month <= 12 {
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		return start, end
	}
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
}

func rowDays(row ReportRow) int {
	return int(row.EndDate.Sub(row.StartDate).Hours()/24) + 1
}

func (s *service) Summarize(ctx context.Context, year, month int) (*SummaryResponse, error) {
	start, end := derivePeriod(year, month)

	rows, err := s.repo.ApprovedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	typeTotals := map[string]int{}
	employeeTotals := map[string]int{}
	monthlyTotals := map[string]int{}
	totalDays := 0
	details := make([]DetailRow, 0, len(rows))

	for _, row := range rows {
		days := rowDays(row)
		typeTotals[row.LeaveTypeName] += days
		employeeTotals[row.EmployeeName] += days
		monthlyTotals[row.StartDate.Format("2006-01")] += days
		totalDays += days

		details = append(details, DetailRow{
			EmployeeName:  row.EmployeeName,
			LeaveTypeCode: row.LeaveTypeCode,
			LeaveTypeName: row.LeaveTypeName,
			StartDate:     row.StartDate.Format(dateLayout),
			EndDate:       row.EndDate.Format(dateLayout),
			TotalDays:     days,
		})
	}

	return &SummaryResponse{
		PeriodStart: start.Format(dateLayout),
		PeriodEnd:   end.Format(dateLayout),
		TotalDays:   totalDays,
		ByType:      sortedBuckets(typeTotals),
		ByEmployee:  sortedBuckets(employeeTotals),
		ByMonth:     sortedBuckets(monthlyTotals),
		Requests:    details,
	}, nil
}

func sortedBuckets(totals map[string]int) []Bucket {
	buckets := make([]Bucket, 0, len(totals))
	for label, days := range totals {
		buckets = append(buckets, Bucket{Label: label, Days: days})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Label < buckets[j].Label })
	return buckets
}

func (s *service) ExportCSV(ctx context.Context, year, month int) ([]byte, error) {
	summary, err := s.Summarize(ctx, year, month)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"Leave Analytics Report"},
		{fmt.Sprintf("Period: %s - %s", summary.PeriodStart, summary.PeriodEnd)},
		{},
		{"Breakdown by Leave Type"},
		{"Leave Type", "Total Days"},
	}
	for _, b := range summary.ByType {
		records = append(records, []string{b.Label, strconv.Itoa(b.Days)})
	}
	records = append(records,
		[]string{},
		[]string{"Breakdown by Employee"},
		[]string{"Employee", "Total Days"},
	)
	for _, b := range summary.ByEmployee {
		records = append(records, []string{b.Label, strconv.Itoa(b.Days)})
	}
	records = append(records,
		[]string{},
		[]string{"Monthly Totals"},
		[]string{"Month", "Total Days"},
	)
	for _, b := range summary.ByMonth {
		records = append(records, []string{b.Label, strconv.Itoa(b.Days)})
	}
	records = append(records,
		[]string{},
		[]string{"Detailed Requests"},
		[]string{"Employee", "Leave Type", "Start", "End", "Days"},
	)
	for _, row := range summary.Requests {
		records = append(records, []string{
			row.EmployeeName, row.LeaveTypeName, row.StartDate, row.EndDate, strconv.Itoa(row.TotalDays),
		})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *service) ExportXLSX(ctx context.Context, year, month int) ([]byte, error) {
	summary, err := s.Summarize(ctx, year, month)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close xlsx file failed", zap.Error(err))
		}
	}()

	if err := writeBucketSheet(f, "Summary", [][]any{
		{"Leave Analytics Report"},
		{"Period", fmt.Sprintf("%s - %s", summary.PeriodStart, summary.PeriodEnd)},
		{"Total Days", summary.TotalDays},
	}); err != nil {
		return nil, err
	}

	for _, section := range []struct {
		sheet   string
		header  string
		buckets []Bucket
	}{
		{"By Type", "Leave Type", summary.ByType},
		{"By Employee", "Employee", summary.ByEmployee},
		{"Monthly", "Month", summary.ByMonth},
	} {
		rows := [][]any{{section.header, "Total Days"}}
		for _, b := range section.buckets {
			rows = append(rows, []any{b.Label, b.Days})
		}
		if err := writeBucketSheet(f, section.sheet, rows); err != nil {
			return nil, err
		}
	}

	detailRows := [][]any{{"Employee", "Leave Type", "Start", "End", "Days"}}
	for _, row := range summary.Requests {
		detailRows = append(detailRows, []any{
			row.EmployeeName, row.LeaveTypeName, row.StartDate, row.EndDate, row.TotalDays,
		})
	}
	if err := writeBucketSheet(f, "Requests", detailRows); err != nil {
		return nil, err
	}

	// The default Sheet1 was renamed to Summary by the first write.
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBucketSheet(f *excelize.File, name string, rows [][]any) error {
	if name == "Summary" {
		f.SetSheetName("Sheet1", name)
	} else if _, err := f.NewSheet(name); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
