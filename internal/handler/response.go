package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 全レスポンス共通の封筒。statusは success か error。
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorJSON(msg string) ErrorResponse {
	return ErrorResponse{Status: "error", Message: msg}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, errorJSON(he.Message))
	}

	//500
	return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
}
