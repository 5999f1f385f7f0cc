package controller

import (
	"net/http"
	"sourcing-negotiation-api/internal/entity"
	"sourcing-negotiation-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type negotiationRoutesHandler struct {
	negotiationService service.Negotiation
	validate           *validator.Validate
}

func newNegotiationRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *negotiationRoutesHandler {
	h := &negotiationRoutesHandler{negotiationService: services.Negotiation, validate: v}

	outer.POST("/negotiations/new", h.PostNegotiation)
	outer.GET("/negotiations/:sessionId", h.GetNegotiationStatus)
	outer.POST("/negotiations/:sessionId/respond/:supplierId", h.RespondToSupplier)
	outer.POST("/negotiations/:sessionId/accept/:supplierId", h.AcceptQuote)

	return h
}

type postNegotiationInput struct {
	Opportunity            map[string]interface{} `json:"opportunity" validate:"required"`
	TargetPrice            float64                `json:"targetPrice" validate:"required,gt=0"`
	AdditionalRequirements string                 `json:"additionalRequirements"`
	NumSuppliers           int                    `json:"numSuppliers" validate:"gte=0,lte=10"`
}

// /negotiations/new
func (h *negotiationRoutesHandler) PostNegotiation(c echo.Context) error {
	var input postNegotiationInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
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

	if input.NumSuppliers == 0 {
		input.NumSuppliers = defaultNumSuppliers
	}

	model := &entity.StartNegotiationInput{
		Opportunity: input.Opportunity, TargetPrice: input.TargetPrice,
		AdditionalRequirements: input.AdditionalRequirements, NumSuppliers: input.NumSuppliers,
	}

	session, err := h.negotiationService.StartNegotiation(c.Request().Context(), model)
	if err == nil {
		if e := c.JSON(http.StatusOK, session); e != nil {
			return e
		}

		return nil
	}

	if e := c.JSON(http.StatusInternalServerError, errorResponse{err.Error()}); e != nil {
		return e
	}

	return err
}

type getNegotiationStatusInput struct {
	SessionId string `param:"sessionId" validate:"required,max=100"`
}

// /negotiations/:sessionId
func (h *negotiationRoutesHandler) GetNegotiationStatus(c echo.Context) error {
	input := getNegotiationStatusInput{SessionId: c.Param("sessionId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	session, err := h.negotiationService.GetSessionById(c.Request().Context(), input.SessionId)
	if err == nil {
		if e := c.JSON(http.StatusOK, session); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrSessionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no negotiation session with given id"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusInternalServerError, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type supplierActionInput struct {
	SessionId  string `param:"sessionId" validate:"required,max=100"`
	SupplierId string `param:"supplierId" validate:"required,max=100"`
}

// /negotiations/:sessionId/respond/:supplierId
func (h *negotiationRoutesHandler) RespondToSupplier(c echo.Context) error {
	input := supplierActionInput{SessionId: c.Param("sessionId"), SupplierId: c.Param("supplierId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	err := h.negotiationService.RespondToSupplier(c.Request().Context(), input.SessionId, input.SupplierId)
	if err == nil {
		if e := c.JSON(http.StatusOK, successResponse{true}); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrSessionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no negotiation session with given id"}); e != nil {
			return e
		}
	case service.ErrSupplierNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no supplier with given id in this session"}); e != nil {
			return e
		}
	case service.ErrConcurrentAdvance:
		if e := c.JSON(http.StatusConflict, errorResponse{"Supplier is being advanced by another request"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusInternalServerError, errorResponse{err.Error()}); e != nil {
			return e
		}
	}

	return err
}

// /negotiations/:sessionId/accept/:supplierId
func (h *negotiationRoutesHandler) AcceptQuote(c echo.Context) error {
	input := supplierActionInput{SessionId: c.Param("sessionId"), SupplierId: c.Param("supplierId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	err := h.negotiationService.AcceptQuote(c.Request().Context(), input.SessionId, input.SupplierId)
	if err == nil {
		if e := c.JSON(http.StatusOK, successResponse{true}); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrSessionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no negotiation session with given id"}); e != nil {
			return e
		}
	case service.ErrSupplierNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no supplier with given id in this session"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusInternalServerError, errorResponse{err.Error()}); e != nil {
			return e
		}
	}

	return err
}
