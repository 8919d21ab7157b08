package revenue

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRevenueRepository struct {
	mock.Mock
}

func (m *MockRevenueRepository) TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRevenueRepository) MonthlyTotals(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error) {
	args := m.Called(ctx, year)
	return args.Get(0).(map[time.Month]decimal.Decimal), args.Error(1)
}

func (m *MockRevenueRepository) DailyTotals(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func TestRevenueService_Overview(t *testing.T) {
	mockRepo := &MockRevenueRepository{}
	service := NewRevenueService(mockRepo)

	ctx := context.Background()
	year := 2026
	month := time.March
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday

	yearFrom := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	monthFrom := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mockRepo.On("TotalBetween", ctx, yearFrom, yearFrom.AddDate(1, 0, 0)).
		Return(decimal.RequireFromString("120000.00"), nil).Once()
	mockRepo.On("TotalBetween", ctx, monthFrom, monthFrom.AddDate(0, 1, 0)).
		Return(decimal.RequireFromString("10500.00"), nil).Once()
	mockRepo.On("TotalBetween", ctx, weekStart, weekStart.AddDate(0, 0, 7)).
		Return(decimal.RequireFromString("2100.00"), nil).Once()
	mockRepo.On("MonthlyTotals", ctx, year).
		Return(map[time.Month]decimal.Decimal{
			time.January: decimal.RequireFromString("500.00"),
			time.March:   decimal.RequireFromString("10500.00"),
		}, nil).Once()
	mockRepo.On("DailyTotals", ctx, weekStart, weekStart.AddDate(0, 0, 7)).
		Return(map[string]decimal.Decimal{
			"2026-03-03": decimal.RequireFromString("2100.00"),
		}, nil).Once()

	overview, err := service.Overview(ctx, year, month, weekStart)

	require.NoError(t, err)
	assert.Equal(t, 2026, overview.Year)
	assert.Equal(t, "120000.00", overview.YearlyTotal.StringFixed(2))
	assert.Equal(t, "2026-03", overview.Month)
	assert.Equal(t, "10500.00", overview.MonthlyTotal.StringFixed(2))
	assert.Equal(t, "2026-03-02", overview.WeekStart)
	assert.Equal(t, "2100.00", overview.WeeklyTotal.StringFixed(2))

	// Every month appears once, with zeros filled in.
	require.Len(t, overview.MonthlyChart, 12)
	assert.Equal(t, "500.00", overview.MonthlyChart[0].Total.StringFixed(2))
	assert.Equal(t, "0.00", overview.MonthlyChart[1].Total.StringFixed(2))
	assert.Equal(t, "10500.00", overview.MonthlyChart[2].Total.StringFixed(2))

	require.Len(t, overview.WeeklyChart, 7)
	assert.Equal(t, "2026-03-02", overview.WeeklyChart[0].Day)
	assert.Equal(t, "0.00", overview.WeeklyChart[0].Total.StringFixed(2))
	assert.Equal(t, "2026-03-08", overview.WeeklyChart[6].Day)
	assert.Equal(t, "2100.00", overview.WeeklyChart[1].Total.StringFixed(2))

	mockRepo.AssertExpectations(t)
}

func TestRevenueService_Overview_EmptyLedger(t *testing.T) {
	mockRepo := &MockRevenueRepository{}
	service := NewRevenueService(mockRepo)

	ctx := context.Background()
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mockRepo.On("TotalBetween", ctx, mock.Anything, mock.Anything).
		Return(decimal.Zero, nil).Times(3)
	mockRepo.On("MonthlyTotals", ctx, 2026).
		Return(map[time.Month]decimal.Decimal{}, nil).Once()
	mockRepo.On("DailyTotals", ctx, mock.Anything, mock.Anything).
		Return(map[string]decimal.Decimal{}, nil).Once()

	overview, err := service.Overview(ctx, 2026, time.March, weekStart)

	require.NoError(t, err)
	assert.True(t, overview.YearlyTotal.IsZero())
	for _, m := range overview.MonthlyChart {
		assert.True(t, m.Total.IsZero())
	}
	for _, d := range overview.WeeklyChart {
		assert.True(t, d.Total.IsZero())
	}
}
