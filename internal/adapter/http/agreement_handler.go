package http

import (
	"net/http"
	"time"

	agreementDomain "agrifi-backend/internal/domain/agreement"
	"agrifi-backend/internal/usecase/agreement"

	"github.com/labstack/echo/v4"
)

type AgreementHandler struct{ uc *agreement.Usecase }

func NewAgreementHandler(uc *agreement.Usecase) *AgreementHandler {
	return &AgreementHandler{uc: uc}
}

type proposeReq struct {
	TokenID          uint64 `json:"token_id" validate:"required"`
	InvestAmount     int64  `json:"invest_amount" validate:"required,gt=0"`
	InvestorShareBps uint32 `json:"investor_share_bps" validate:"lte=10000"`
	ExpectedQuantity uint64 `json:"expected_quantity" validate:"required,gt=0"`
	// deadlines travel as unix seconds
	HarvestDeadline  int64 `json:"harvest_deadline" validate:"required,gt=0"`
	DeliveryDeadline int64 `json:"delivery_deadline" validate:"required,gt=0"`
}

func (h *AgreementHandler) Propose(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req proposeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Propose(c.Request().Context(), caller, agreement.ProposeInput{
		TokenID:          req.TokenID,
		InvestAmount:     req.InvestAmount,
		InvestorShareBps: req.InvestorShareBps,
		ExpectedQuantity: req.ExpectedQuantity,
		HarvestDeadline:  time.Unix(req.HarvestDeadline, 0).UTC(),
		DeliveryDeadline: time.Unix(req.DeliveryDeadline, 0).UTC(),
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type fundAgreementReq struct {
	Option string `json:"option" validate:"required,oneof=deliver_produce share_profits"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

func (h *AgreementHandler) Fund(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	aid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid agreement id"})
	}
	var req fundAgreementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	// option validity is re-checked in the usecase so ledger semantics do not
	// depend on the transport; here it only shapes the 422 payload
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Fund(c.Request().Context(), caller, aid, agreementDomain.Option(req.Option), req.Amount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AgreementHandler) MarkHarvestReady(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	aid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid agreement id"})
	}
	dto, err := h.uc.MarkHarvestReady(c.Request().Context(), caller, aid)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AgreementHandler) ConfirmDelivery(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	aid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid agreement id"})
	}
	dto, err := h.uc.ConfirmDelivery(c.Request().Context(), caller, aid)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type reportSaleReq struct {
	SaleAmount int64 `json:"sale_amount" validate:"required,gt=0"`
}

func (h *AgreementHandler) ReportSale(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	aid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid agreement id"})
	}
	var req reportSaleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.ReportSale(c.Request().Context(), caller, aid, req.SaleAmount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AgreementHandler) ClaimCollateral(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	aid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid agreement id"})
	}
	dto, err := h.uc.ClaimCollateral(c.Request().Context(), caller, aid)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type setOracleReq struct {
	Oracle string `json:"oracle" validate:"required,hex32"`
}

func (h *AgreementHandler) SetOracle(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req setOracleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.uc.SetOracle(c.Request().Context(), caller, req.Oracle); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AgreementHandler) Get(c echo.Context) error {
	aid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid agreement id"})
	}
	dto, err := h.uc.Get(c.Request().Context(), aid)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AgreementHandler) List(c echo.Context) error {
	farmer := c.QueryParam("farmer_id")
	if !reHex32.MatchString(farmer) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid farmer_id"})
	}
	dtos, err := h.uc.ListByFarmer(c.Request().Context(), farmer)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *AgreementHandler) Events(c echo.Context) error {
	aid, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid agreement id"})
	}
	evs, err := h.uc.Events(c.Request().Context(), aid)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, evs)
}
