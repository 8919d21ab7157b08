package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service booking.BookingUseCase
}

type createOrderRequest struct {
	FlightID int64 `json:"flight_id" binding:"required"`
	CabinID  int64 `json:"cabin_id" binding:"required"`
}

type refundRequest struct {
	Reason string `json:"reason"`
}

type orderResponse struct {
	OrderNo     string `json:"order_no"`
	FlightID    int64  `json:"flight_id"`
	CabinID     int64  `json:"cabin_id"`
	Status      string `json:"status"`
	TicketPrice string `json:"ticket_price"`
	Tax         string `json:"tax"`
	Fee         string `json:"fee"`
	TotalAmount string `json:"total_amount"`
	CreatedAt   string `json:"created_at"`
	PaidAt      string `json:"paid_at,omitempty"`
	CancelledAt string `json:"cancelled_at,omitempty"`
	RefundedAt  string `json:"refunded_at,omitempty"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	format := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(time.RFC3339)
	}
	return orderResponse{
		OrderNo:     o.OrderNo,
		FlightID:    o.FlightID,
		CabinID:     o.CabinID,
		Status:      string(o.Status),
		TicketPrice: o.TicketPrice.StringFixed(2),
		Tax:         o.Tax.StringFixed(2),
		Fee:         o.Fee.StringFixed(2),
		TotalAmount: o.TotalAmount.StringFixed(2),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		PaidAt:      format(o.PaidAt),
		CancelledAt: format(o.CancelledAt),
		RefundedAt:  format(o.RefundedAt),
	}
}

func NewOrderHandler(service booking.BookingUseCase) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:orderNo", h.get)
	router.POST("/:orderNo/pay", h.pay)
	router.POST("/:orderNo/refund", h.refund)
}

func (h *OrderHandler) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), currentUser(c), req.FlightID, req.CabinID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) list(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]orderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) get(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), currentUser(c), c.Param("orderNo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) pay(c *gin.Context) {
	order, err := h.service.PayOrder(c.Request.Context(), currentUser(c), c.Param("orderNo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.service.RequestRefund(c.Request.Context(), currentUser(c), c.Param("orderNo"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_no":      c.Param("orderNo"),
		"status":        record.Status,
		"refund_fee":    record.RefundFee.StringFixed(2),
		"refund_amount": record.RefundAmount.StringFixed(2),
		"reason":        record.Reason,
	})
}
