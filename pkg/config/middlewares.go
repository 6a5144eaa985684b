package config

import (
	"strconv"

	appmw "github.com/anonto42/odin-book/backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// SetupMiddleware configures global Echo middleware. Request bodies may carry
// one upload plus a little form overhead.
func SetupMiddleware(e *echo.Echo, logger *logrus.Logger, maxUploadBytes int64) {
	e.Use(middleware.RequestID())
	e.Use(appmw.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(strconv.FormatInt((maxUploadBytes+(1<<20))/1024, 10) + "K"))
}
