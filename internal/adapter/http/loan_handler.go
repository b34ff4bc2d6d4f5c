package http

import (
	"net/http"

	"agrifi-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type requestLoanReq struct {
	TokenID   uint64 `json:"token_id" validate:"required"`
	Principal int64  `json:"principal" validate:"required,gt=0"`
}

func (h *LoanHandler) Request(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req requestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Request(c.Request().Context(), caller, req.TokenID, req.Principal)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type amountReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *LoanHandler) Fund(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	lid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	var req amountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Fund(c.Request().Context(), caller, lid, req.Amount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	lid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	var req amountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Repay(c.Request().Context(), caller, lid, req.Amount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Liquidate(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	lid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	dto, err := h.uc.Liquidate(c.Request().Context(), caller, lid)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Get(c echo.Context) error {
	lid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	dto, err := h.uc.Get(c.Request().Context(), lid)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) List(c echo.Context) error {
	borrower := c.QueryParam("borrower_id")
	if !reHex32.MatchString(borrower) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid borrower_id"})
	}
	dtos, err := h.uc.ListByBorrower(c.Request().Context(), borrower)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *LoanHandler) Events(c echo.Context) error {
	lid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	evs, err := h.uc.Events(c.Request().Context(), lid)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, evs)
}
