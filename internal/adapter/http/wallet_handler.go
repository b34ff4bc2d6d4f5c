package http

import (
	"net/http"

	"agrifi-backend/internal/usecase/wallet"

	"github.com/labstack/echo/v4"
)

type WalletHandler struct{ uc *wallet.Usecase }

func NewWalletHandler(uc *wallet.Usecase) *WalletHandler { return &WalletHandler{uc: uc} }

type depositReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *WalletHandler) Deposit(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req depositReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Deposit(c.Request().Context(), caller, req.Amount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *WalletHandler) Get(c echo.Context) error {
	accountID := c.Param("account_id")
	if !reHex32.MatchString(accountID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid account id"})
	}
	dto, err := h.uc.Balance(c.Request().Context(), accountID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
