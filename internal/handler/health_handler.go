package handler

import (
	"context"
	"net/http"
	"time"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	gateway usecase.PaymentGateway
	client  usecase.FulfillmentClient
	pingDB  func(ctx context.Context) error
}

func NewHealthHandler(gateway usecase.PaymentGateway, client usecase.FulfillmentClient, pingDB func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{gateway: gateway, client: client, pingDB: pingDB}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api", h.info)
	e.GET("/api/health", h.health)
}

func (h *HealthHandler) info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"service": "storefront mediator API",
		"features": map[string]bool{
			"gateway":     h.gateway.Configured(),
			"fulfillment": h.client.Configured(),
		},
	})
}

func (h *HealthHandler) health(c echo.Context) error {
	gatewayStatus := "not_configured"
	if h.gateway.Configured() {
		gatewayStatus = "configured"
	}

	fulfillmentStatus := "not_configured"
	if h.client.Configured() {
		fulfillmentStatus = "connected"
		if err := h.client.TestConnection(c.Request().Context()); err != nil {
			fulfillmentStatus = "error"
		}
	}

	storeStatus := "connected"
	if err := h.pingDB(c.Request().Context()); err != nil {
		storeStatus = "error"
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "success",
		"timestamp": time.Now().Format(time.RFC3339),
		"dependencies": map[string]string{
			"gateway":     gatewayStatus,
			"fulfillment": fulfillmentStatus,
			"store":       storeStatus,
		},
	})
}
