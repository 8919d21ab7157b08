package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightService struct {
	mock.Mock
}

func (m *MockFlightService) Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightService) GetWithCabins(ctx context.Context, id int64) (*domain.Flight, []domain.CabinInventory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Flight), args.Get(1).([]domain.CabinInventory), args.Error(2)
}

func (m *MockFlightService) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightService) Save(ctx context.Context, input flights.SaveFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlightService) FinishDeparted(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func newFlightRouter(service *MockFlightService) *gin.Engine {
	router := gin.New()
	NewFlightHandler(service).Register(router.Group("/flights"))
	return router
}

func TestFlightHandler_Search(t *testing.T) {
	mockService := &MockFlightService{}
	router := newFlightRouter(mockService)

	expected := domain.FlightSearch{
		DepartCity: "Moscow",
		ArriveCity: "Sochi",
		DepartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		SortBy:     "depart_time",
	}
	mockService.On("Search", mock.Anything, expected).
		Return([]domain.Flight{{ID: 1, FlightNo: "SU1404", MinPrice: decimal.RequireFromString("1050.00")}}, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/flights/search?date=2026-03-10&depart_city=Moscow&arrive_city=Sochi&sort=depart_time", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body []domain.Flight
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "SU1404", body[0].FlightNo)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_Search_BadRequest(t *testing.T) {
	testCases := []struct {
		name string
		url  string
	}{
		{"missing date", "/flights/search?arrive_city=Sochi"},
		{"malformed date", "/flights/search?date=10-03-2026&arrive_city=Sochi"},
		{"missing arrive city", "/flights/search?date=2026-03-10"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockFlightService{}
			router := newFlightRouter(mockService)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			mockService.AssertNotCalled(t, "Search")
		})
	}
}

func TestFlightHandler_Get(t *testing.T) {
	mockService := &MockFlightService{}
	router := newFlightRouter(mockService)

	flight := &domain.Flight{ID: 4, FlightNo: "SU1404"}
	cabins := []domain.CabinInventory{{ID: 41, CabinClass: domain.CabinEconomy, AvailableSeats: 12}}

	mockService.On("GetWithCabins", mock.Anything, int64(4)).Return(flight, cabins, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/flights/4", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Flight domain.Flight           `json:"flight"`
		Cabins []domain.CabinInventory `json:"cabins"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SU1404", body.Flight.FlightNo)
	require.Len(t, body.Cabins, 1)
	assert.Equal(t, 12, body.Cabins[0].AvailableSeats)
}

func TestFlightHandler_Get_NotFound(t *testing.T) {
	mockService := &MockFlightService{}
	router := newFlightRouter(mockService)

	mockService.On("GetWithCabins", mock.Anything, int64(99)).
		Return(nil, nil, domain.ErrNotFound).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/flights/99", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIdentity(t *testing.T) {
	mockUsers := &MockUserRepository{}
	mockUsers.On("GetByID", mock.Anything, int64(7)).Return(testPassenger(), nil)

	router := gin.New()
	router.GET("/whoami", Identity(mockUsers), func(c *gin.Context) {
		c.JSON(http.StatusOK, currentUser(c))
	})

	t.Run("valid header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-User-ID", "7")
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockUsers.On("GetByID", mock.Anything, int64(404)).Return(nil, domain.ErrNotFound)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-User-ID", "404")
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireStaff(t *testing.T) {
	newRouter := func(user *domain.User) *gin.Engine {
		router := gin.New()
		router.GET("/admin", withUser(user), RequireStaff(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	t.Run("passenger blocked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		newRouter(testPassenger()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("staff allowed", func(t *testing.T) {
		staff := &domain.User{ID: 1, Role: domain.RoleStaff}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		newRouter(staff).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
