package handler

import (
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/products", h.list)
}

type productsResponse struct {
	Status   string          `json:"status"`
	Count    int             `json:"count"`
	Products []model.Product `json:"products"`
}

func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), repo.ProductFilter{
		Category:   c.QueryParam("category"),
		Collection: c.QueryParam("collection"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, productsResponse{
		Status:   "success",
		Count:    len(out),
		Products: out,
	})
}
