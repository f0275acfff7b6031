package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	admin   *usecase.AdminUsecase
	fulfill *usecase.FulfillmentUsecase
	gateway usecase.PaymentGateway
	client  usecase.FulfillmentClient
}

func NewAdminHandler(
	admin *usecase.AdminUsecase,
	fulfill *usecase.FulfillmentUsecase,
	gateway usecase.PaymentGateway,
	client usecase.FulfillmentClient,
) *AdminHandler {
	return &AdminHandler{admin: admin, fulfill: fulfill, gateway: gateway, client: client}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/sync-products", h.syncProducts)
	g.GET("/dashboard", h.dashboard)
	g.GET("/orders", h.listOrders)
	g.POST("/retry-order/:order_id", h.retryOrder)
	g.GET("/test-connectivity", h.testConnectivity)
}

type syncProductsResponse struct {
	Status  string `json:"status"`
	Fetched int    `json:"fetched"`
	Synced  int    `json:"synced"`
}

func (h *AdminHandler) syncProducts(c echo.Context) error {
	out, err := h.fulfill.SyncProducts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, syncProductsResponse{
		Status:  "success",
		Fetched: out.Fetched,
		Synced:  out.Synced,
	})
}

type dashboardResponse struct {
	Status string              `json:"status"`
	Stats  repo.DashboardStats `json:"stats"`
}

func (h *AdminHandler) dashboard(c echo.Context) error {
	stats, err := h.admin.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, dashboardResponse{Status: "success", Stats: stats})
}

type adminOrdersResponse struct {
	Status string        `json:"status"`
	Orders []model.Order `json:"orders"`
}

func (h *AdminHandler) listOrders(c echo.Context) error {
	status := c.QueryParam("status")

	orders, err := h.admin.ListOrders(c.Request().Context(), status)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, adminOrdersResponse{Status: "success", Orders: orders})
}

type retryOrderResponse struct {
	Status             string `json:"status"`
	FulfillmentOrderID string `json:"fulfillment_order_id,omitempty"`
	Message            string `json:"message,omitempty"`
}

// 手動リトライ。提出が失敗したら500で返す（ジョブには記録済み）。
func (h *AdminHandler) retryOrder(c echo.Context) error {
	orderID := c.Param("order_id")

	res, err := h.fulfill.SubmitOrder(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}

	if !res.Submitted {
		return c.JSON(http.StatusInternalServerError, retryOrderResponse{
			Status:  "error",
			Message: res.Message,
		})
	}

	return c.JSON(http.StatusOK, retryOrderResponse{
		Status:             "success",
		FulfillmentOrderID: res.FulfillmentOrderID,
	})
}

type connectivityResponse struct {
	Status      string `json:"status"`
	Gateway     string `json:"gateway"`
	Fulfillment string `json:"fulfillment"`
}

func (h *AdminHandler) testConnectivity(c echo.Context) error {
	gatewayStatus := "not_configured"
	if h.gateway.Configured() {
		gatewayStatus = "configured"
	}

	fulfillmentStatus := "not_configured"
	if h.client.Configured() {
		if err := h.client.TestConnection(c.Request().Context()); err != nil {
			fulfillmentStatus = "error"
		} else {
			fulfillmentStatus = "connected"
		}
	}

	return c.JSON(http.StatusOK, connectivityResponse{
		Status:      "success",
		Gateway:     gatewayStatus,
		Fulfillment: fulfillmentStatus,
	})
}
