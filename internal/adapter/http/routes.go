package http

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the full API surface on e.
func RegisterRoutes(e *echo.Echo, h *Handler, th *TokenHandler, lh *LoanHandler, ah *AgreementHandler, wh *WalletHandler) {
	e.GET("/health", h.Health)

	e.POST("/tokens", th.Mint)
	e.GET("/tokens", th.List)
	e.GET("/tokens/:id", th.Get)
	e.POST("/tokens/:id/approve", th.Approve)
	e.POST("/tokens/:id/transfer", th.Transfer)
	e.DELETE("/tokens/:id", th.Burn)

	e.POST("/loans", lh.Request)
	e.GET("/loans", lh.List)
	e.GET("/loans/:id", lh.Get)
	e.GET("/loans/:id/events", lh.Events)
	e.POST("/loans/:id/fund", lh.Fund)
	e.POST("/loans/:id/repay", lh.Repay)
	e.POST("/loans/:id/liquidate", lh.Liquidate)

	e.POST("/agreements", ah.Propose)
	e.GET("/agreements", ah.List)
	e.GET("/agreements/:id", ah.Get)
	e.GET("/agreements/:id/events", ah.Events)
	e.POST("/agreements/:id/fund", ah.Fund)
	e.POST("/agreements/:id/harvest-ready", ah.MarkHarvestReady)
	e.POST("/agreements/:id/confirm-delivery", ah.ConfirmDelivery)
	e.POST("/agreements/:id/report-sale", ah.ReportSale)
	e.POST("/agreements/:id/claim", ah.ClaimCollateral)
	e.POST("/agreements/oracle", ah.SetOracle)

	e.POST("/wallets/deposit", wh.Deposit)
	e.GET("/wallets/:account_id", wh.Get)
}
