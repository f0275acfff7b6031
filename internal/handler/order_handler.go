package handler

import (
	"net/http"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/create-order", h.create)
	e.POST("/api/verify-payment", h.verifyPayment)
	e.GET("/api/order-status/:order_id", h.status)
}

type createOrderResponse struct {
	Status         string `json:"status"`
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"razorpay_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

func (h *OrderHandler) create(c echo.Context) error {
	var req usecase.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, createOrderResponse{
		Status:         "success",
		OrderID:        out.OrderID,
		GatewayOrderID: out.GatewayOrderID,
		Amount:         out.Amount,
		Currency:       out.Currency,
		KeyID:          out.KeyID,
	})
}

type verifyPaymentResponse struct {
	Status               string `json:"status"`
	PaymentVerified      bool   `json:"payment_verified"`
	OrderID              string `json:"order_id"`
	FulfillmentSubmitted bool   `json:"fulfillment_submitted"`
	FulfillmentOrderID   string `json:"fulfillment_order_id,omitempty"`
}

func (h *OrderHandler) verifyPayment(c echo.Context) error {
	var req usecase.VerifyPaymentInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.uc.VerifyPayment(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, verifyPaymentResponse{
		Status:               "success",
		PaymentVerified:      out.PaymentVerified,
		OrderID:              out.OrderID,
		FulfillmentSubmitted: out.FulfillmentSubmitted,
		FulfillmentOrderID:   out.FulfillmentOrderID,
	})
}

type orderStatusResponse struct {
	Status string      `json:"status"`
	Order  model.Order `json:"order"`
}

func (h *OrderHandler) status(c echo.Context) error {
	orderID := c.Param("order_id")

	order, err := h.uc.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, orderStatusResponse{Status: "success", Order: order})
}
