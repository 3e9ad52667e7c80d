package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"consolidation/internal/generated/servers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

var registerDocOnce sync.Once

type openAPIDoc struct {
	json string
}

func (d openAPIDoc) ReadDoc() string {
	return d.json
}

// NewRouter builds the echo instance: API routes under BasePath, plus
// /health, /metrics and /swagger/*.
func NewRouter(server servers.ServerInterface, logger *slog.Logger) (*echo.Echo, error) {
	if err := registerDoc(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(logger.With("component", "HTTPServer"))

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig(logger.With("component", "HTTPAccess"))))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	servers.RegisterHandlersWithBaseURL(e, server, BasePath)

	return e, nil
}

func registerDoc() error {
	var err error
	registerDocOnce.Do(func() {
		swagger, loadErr := servers.GetSwagger()
		if loadErr != nil {
			err = loadErr
			return
		}
		raw, marshalErr := json.Marshal(swagger)
		if marshalErr != nil {
			err = fmt.Errorf("marshal openapi document: %w", marshalErr)
			return
		}
		swag.Register(swag.Name, openAPIDoc{json: string(raw)})
	})
	return err
}

func requestLoggerConfig(logger *slog.Logger) middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if office := c.Request().Header.Get("X-Office-ID"); office != "" {
				attrs = append(attrs, "office", office)
			}
			if v.Error != nil {
				logger.Warn("request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Debug("request", attrs...)
			return nil
		},
	}
}
