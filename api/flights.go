package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) search(c *gin.Context) {
	departDate, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing date, expected YYYY-MM-DD"})
		return
	}
	arriveCity := c.Query("arrive_city")
	if arriveCity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "arrive_city is required"})
		return
	}

	result, err := h.service.Search(c.Request.Context(), domain.FlightSearch{
		DepartCity: c.Query("depart_city"),
		ArriveCity: arriveCity,
		DepartDate: departDate,
		SortBy:     c.Query("sort"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	flight, cabins, err := h.service.GetWithCabins(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight": flight, "cabins": cabins})
}
