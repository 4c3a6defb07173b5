package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// GetOrders returns all orders
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	orders, err := ctrl.orderService.ListOrders(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, newOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": resp,
		"count":  len(resp),
	})
}

// GetOrderByID returns an order with its lines
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": newOrderResponse(order),
	})
}

// CreateOrder places an order. A repeated Idempotency-Key returns the
// order the first request produced.
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.orderService.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		Items:          req.toLineItems(),
		IdempotencyKey: strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)),
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   newOrderResponse(order),
	})
}

// CancelOrder restores stock and removes the order
// DELETE /api/v1/orders/:id
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.orderService.CancelOrder(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
	})
}
