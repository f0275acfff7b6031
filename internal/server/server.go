package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Order   *handler.OrderHandler
	Webhook *handler.WebhookHandler
	Admin   *handler.AdminHandler
	Product *handler.ProductHandler
	Health  *handler.HealthHandler
}

// New はechoを組み立ててルートを登録する
func New(cfg config.Config, hs Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	//想定外のエラーも封筒の形で返す
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		_ = c.JSON(code, map[string]string{"status": "error", "message": msg})
	}

	hs.Health.RegisterRoutes(e)
	hs.Auth.RegisterRoutes(e)
	hs.Product.RegisterRoutes(e)
	hs.Order.RegisterRoutes(e)
	hs.Webhook.RegisterRoutes(e)
	hs.Admin.RegisterRoutes(e, cfg)

	return e
}

func Start(addr string, cfg config.Config, hs Handlers) error {
	e := New(cfg, hs)
	return e.Start(addr)
}
