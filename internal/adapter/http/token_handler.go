package http

import (
	"net/http"

	"agrifi-backend/internal/usecase/token"

	"github.com/labstack/echo/v4"
)

type TokenHandler struct{ uc *token.Usecase }

func NewTokenHandler(uc *token.Usecase) *TokenHandler { return &TokenHandler{uc: uc} }

type mintTokenReq struct {
	URI string `json:"uri" validate:"required"`
}

func (h *TokenHandler) Mint(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req mintTokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Mint(c.Request().Context(), caller, req.URI)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type approveTokenReq struct {
	Spender string `json:"spender" validate:"required,hex32"`
}

func (h *TokenHandler) Approve(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	tid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token id"})
	}
	var req approveTokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.uc.Approve(c.Request().Context(), caller, tid, req.Spender); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type transferTokenReq struct {
	To string `json:"to" validate:"required,hex32"`
}

func (h *TokenHandler) Transfer(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	tid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token id"})
	}
	var req transferTokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.uc.Transfer(c.Request().Context(), caller, tid, req.To); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TokenHandler) Burn(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	tid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token id"})
	}
	if err := h.uc.Burn(c.Request().Context(), caller, tid); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TokenHandler) List(c echo.Context) error {
	owner := c.QueryParam("owner_id")
	if !reHex32.MatchString(owner) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid owner_id"})
	}
	dtos, err := h.uc.ListByOwner(c.Request().Context(), owner)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *TokenHandler) Get(c echo.Context) error {
	tid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid token id"})
	}
	dto, err := h.uc.Get(c.Request().Context(), tid)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
