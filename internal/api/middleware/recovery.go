package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
)

// problem mirrors the RFC 9457 body the Huma API returns for errors, so a
// recovered panic looks like any other server error to clients.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// Recovery returns Echo middleware that recovers from panics, logs the stack
// trace, and returns a 500 Internal Server Error to the client.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					buf := make([]byte, 4096)
					n := runtime.Stack(buf, false)

					reqID, _ := c.Get("request_id").(string)
					log.Error("panic recovered",
						"error", fmt.Sprint(r),
						"method", c.Request().Method,
						"path", c.Request().URL.Path,
						"request_id", reqID,
						"stack", string(buf[:n]),
					)

					c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
					err = c.JSON(http.StatusInternalServerError, problem{
						Title:  http.StatusText(http.StatusInternalServerError),
						Status: http.StatusInternalServerError,
						Detail: "internal server error",
					})
				}
			}()
			return next(c)
		}
	}
}
