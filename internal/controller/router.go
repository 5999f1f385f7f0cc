package controller

import (
	"sourcing-negotiation-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
)

func SetupRoutesHandlers(handler *echo.Echo, services *service.Services) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	handler.Use(middleware.CORS())

	api := handler.Group("/api")
	newDiagnosticRoutesHandler(api, services)
	newAnalysisRoutesHandler(api, services, validate)
	newNegotiationRoutesHandler(api, services, validate)
}
