package handler

import (
	"io"
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type WebhookHandler struct {
	uc      *usecase.WebhookUsecase
	gateway usecase.PaymentGateway
}

func NewWebhookHandler(uc *usecase.WebhookUsecase, gateway usecase.PaymentGateway) *WebhookHandler {
	return &WebhookHandler{uc: uc, gateway: gateway}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/webhooks/razorpay", h.razorpay)
}

func (h *WebhookHandler) razorpay(c echo.Context) error {
	signature := c.Request().Header.Get("X-Razorpay-Signature")
	if signature == "" || !h.gateway.Configured() {
		return c.JSON(http.StatusServiceUnavailable, errorJSON("webhook not available"))
	}

	//署名検証は生のbodyに対して行う
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	result := h.uc.Process(c.Request().Context(), body, signature)

	//duplicateは成功として返す。プロバイダに再送させない。
	switch result.Outcome {
	case usecase.WebhookOutcomeSuccess, usecase.WebhookOutcomeDuplicate, usecase.WebhookOutcomeIgnored:
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	default:
		return c.JSON(http.StatusBadRequest, errorJSON(result.Message))
	}
}
