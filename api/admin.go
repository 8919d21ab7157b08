package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/service/flights"
	"github.com/Domenick1991/skyticket/internal/service/revenue"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdminHandler exposes flight management and the revenue report. All
// routes are registered behind the staff guard.
type AdminHandler struct {
	flights flights.FlightUseCase
	revenue revenue.RevenueUseCase
}

type saveFlightRequest struct {
	FlightNo        string    `json:"flight_no" binding:"required"`
	Airline         string    `json:"airline" binding:"required"`
	PlaneType       string    `json:"plane_type"`
	DepartAirportID int64     `json:"depart_airport_id" binding:"required"`
	ArriveAirportID int64     `json:"arrive_airport_id" binding:"required"`
	DepartTime      time.Time `json:"depart_time" binding:"required"`
	ArriveTime      time.Time `json:"arrive_time" binding:"required"`
	BasePrice       string    `json:"base_price" binding:"required"`
	Status          string    `json:"status"`
	EconomySeats    int       `json:"economy_seats"`
	BusinessSeats   int       `json:"business_seats"`
	FirstSeats      int       `json:"first_seats"`
}

func NewAdminHandler(flights flights.FlightUseCase, revenue revenue.RevenueUseCase) *AdminHandler {
	return &AdminHandler{flights: flights, revenue: revenue}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.listFlights)
	router.POST("/flights", h.createFlight)
	router.PUT("/flights/:id", h.updateFlight)
	router.DELETE("/flights/:id", h.deleteFlight)
	router.GET("/revenue", h.revenueOverview)
}

func (h *AdminHandler) listFlights(c *gin.Context) {
	result, err := h.flights.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) createFlight(c *gin.Context) {
	input, ok := h.bindSaveInput(c, 0)
	if !ok {
		return
	}
	flight, err := h.flights.Save(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *AdminHandler) updateFlight(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	input, ok := h.bindSaveInput(c, id)
	if !ok {
		return
	}
	flight, err := h.flights.Save(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *AdminHandler) deleteFlight(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.flights.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) bindSaveInput(c *gin.Context, id int64) (flights.SaveFlightInput, bool) {
	var req saveFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return flights.SaveFlightInput{}, false
	}
	basePrice, err := decimal.NewFromString(req.BasePrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid base_price"})
		return flights.SaveFlightInput{}, false
	}
	return flights.SaveFlightInput{
		ID:              id,
		FlightNo:        req.FlightNo,
		Airline:         req.Airline,
		PlaneType:       req.PlaneType,
		DepartAirportID: req.DepartAirportID,
		ArriveAirportID: req.ArriveAirportID,
		DepartTime:      req.DepartTime,
		ArriveTime:      req.ArriveTime,
		BasePrice:       basePrice,
		Status:          domain.FlightStatus(req.Status),
		EconomySeats:    req.EconomySeats,
		BusinessSeats:   req.BusinessSeats,
		FirstSeats:      req.FirstSeats,
	}, true
}

// revenueOverview defaults to the current year, month and week (Monday
// start), each overridable by query parameter.
func (h *AdminHandler) revenueOverview(c *gin.Context) {
	now := time.Now()

	year := now.Year()
	if raw := c.Query("year"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			year = parsed
		}
	}

	month := now.Month()
	if raw := c.Query("month"); raw != "" {
		if parsed, err := time.Parse("2006-01", raw); err == nil {
			year, month = parsed.Year(), parsed.Month()
		}
	}

	weekday := (int(now.Weekday()) + 6) % 7 // Monday = 0
	weekStart := now.AddDate(0, 0, -weekday).Truncate(24 * time.Hour)
	if raw := c.Query("week_start"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			weekStart = parsed
		}
	}

	overview, err := h.revenue.Overview(c.Request.Context(), year, month, weekStart)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
