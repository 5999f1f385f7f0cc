package controller

import (
	"errors"
	"net/http"
	"sourcing-negotiation-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type analysisRoutesHandler struct {
	analysisService service.Analysis
	validate        *validator.Validate
}

func newAnalysisRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *analysisRoutesHandler {
	h := &analysisRoutesHandler{analysisService: services.Analysis, validate: v}

	outer.POST("/solicitations/analyze", h.AnalyzeSolicitations)

	return h
}

type analyzeSolicitationsInput struct {
	Urls []string `json:"urls" validate:"required,min=1,dive,url"`
}

type analysisParseErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details"`
	RawOutput string `json:"raw_output"`
}

// /solicitations/analyze
func (h *analysisRoutesHandler) AnalyzeSolicitations(c echo.Context) error {
	var input analyzeSolicitationsInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Missing or invalid 'urls' array."}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	result, err := h.analysisService.AnalyzeSolicitations(c.Request().Context(), input.Urls)
	if err == nil {
		if e := c.JSON(http.StatusOK, result); e != nil {
			return e
		}

		return nil
	}

	// Parse failures carry the raw model output for operator diagnosis.
	var parseErr *service.AnalysisParseError
	if errors.As(err, &parseErr) {
		if e := c.JSON(http.StatusBadGateway, analysisParseErrorResponse{
			Error:     "Failed to parse JSON",
			Details:   parseErr.Err.Error(),
			RawOutput: parseErr.RawOutput,
		}); e != nil {
			return e
		}

		return err
	}

	if e := c.JSON(http.StatusInternalServerError, errorResponse{err.Error()}); e != nil {
		return e
	}

	return err
}
