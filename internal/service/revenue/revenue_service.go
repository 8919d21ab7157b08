package revenue

import (
	"context"
	"time"

	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/shopspring/decimal"
)

type RevenueUseCase interface {
	Overview(ctx context.Context, year int, month time.Month, weekStart time.Time) (*Overview, error)
}

type MonthTotal struct {
	Month time.Month      `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type DayTotal struct {
	Day   string          `json:"day"`
	Total decimal.Decimal `json:"total"`
}

// Overview is the staff revenue report: totals for a year, a month and a
// week, plus per-month and per-day series for charting.
type Overview struct {
	Year         int             `json:"year"`
	YearlyTotal  decimal.Decimal `json:"yearly_total"`
	Month        string          `json:"month"`
	MonthlyTotal decimal.Decimal `json:"monthly_total"`
	WeekStart    string          `json:"week_start"`
	WeeklyTotal  decimal.Decimal `json:"weekly_total"`
	MonthlyChart []MonthTotal    `json:"monthly_chart"`
	WeeklyChart  []DayTotal      `json:"weekly_chart"`
}

type RevenueService struct {
	repo repository.RevenueRepository
}

func NewRevenueService(repo repository.RevenueRepository) *RevenueService {
	return &RevenueService{repo: repo}
}

func (s *RevenueService) Overview(ctx context.Context, year int, month time.Month, weekStart time.Time) (*Overview, error) {
	yearFrom := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearly, err := s.repo.TotalBetween(ctx, yearFrom, yearFrom.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	monthFrom := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthly, err := s.repo.TotalBetween(ctx, monthFrom, monthFrom.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	weekFrom := weekStart.Truncate(24 * time.Hour)
	weekTo := weekFrom.AddDate(0, 0, 7)
	weekly, err := s.repo.TotalBetween(ctx, weekFrom, weekTo)
	if err != nil {
		return nil, err
	}

	byMonth, err := s.repo.MonthlyTotals(ctx, year)
	if err != nil {
		return nil, err
	}
	monthlyChart := make([]MonthTotal, 0, 12)
	for m := time.January; m <= time.December; m++ {
		total, ok := byMonth[m]
		if !ok {
			total = decimal.Zero
		}
		monthlyChart = append(monthlyChart, MonthTotal{Month: m, Total: total})
	}

	byDay, err := s.repo.DailyTotals(ctx, weekFrom, weekTo)
	if err != nil {
		return nil, err
	}
	weeklyChart := make([]DayTotal, 0, 7)
	for i := 0; i < 7; i++ {
		day := weekFrom.AddDate(0, 0, i).Format("2006-01-02")
		total, ok := byDay[day]
		if !ok {
			total = decimal.Zero
		}
		weeklyChart = append(weeklyChart, DayTotal{Day: day, Total: total})
	}

	return &Overview{
		Year:         year,
		YearlyTotal:  yearly,
		Month:        monthFrom.Format("2006-01"),
		MonthlyTotal: monthly,
		WeekStart:    weekFrom.Format("2006-01-02"),
		WeeklyTotal:  weekly,
		MonthlyChart: monthlyChart,
		WeeklyChart:  weeklyChart,
	}, nil
}

var _ RevenueUseCase = (*RevenueService)(nil)
