package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "agrifi-backend/internal/adapter/http"
	mw "agrifi-backend/internal/adapter/middleware"
	"agrifi-backend/internal/adapter/repository/mysql"
	"agrifi-backend/internal/config"
	"agrifi-backend/internal/infrastructure/cache"
	"agrifi-backend/internal/infrastructure/db"
	agreementuc "agrifi-backend/internal/usecase/agreement"
	loanuc "agrifi-backend/internal/usecase/loan"
	tokenuc "agrifi-backend/internal/usecase/token"
	walletuc "agrifi-backend/internal/usecase/wallet"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}
	pub := cache.NewPublisher(rdb)

	tokenRepo := mysql.NewTokenRepository(gdb)
	loanRepo := mysql.NewLoanRepository(gdb)
	agreementRepo := mysql.NewAgreementRepository(gdb)
	walletRepo := mysql.NewWalletRepository(gdb)
	eventRepo := mysql.NewEventRepository(gdb)
	uow := mysql.NewGormUoW(gdb)

	if _, err := agreementRepo.EnsureSettings(context.Background(), cfg.OwnerID, cfg.OracleID); err != nil {
		log.Fatal(err)
	}

	tokenUC := tokenuc.NewUsecase(tokenRepo, uow, pub)
	loanUC := loanuc.NewUsecase(loanRepo, eventRepo, uow, pub, cfg.LoanCustodyID)
	agreementUC := agreementuc.NewUsecase(agreementRepo, eventRepo, uow, pub, cfg.AgreementCustodyID)
	walletUC := walletuc.NewUsecase(walletRepo, uow)

	h := httpadp.NewHandler()
	th := httpadp.NewTokenHandler(tokenUC)
	lh := httpadp.NewLoanHandler(loanUC)
	ah := httpadp.NewAgreementHandler(agreementUC)
	wh := httpadp.NewWalletHandler(walletUC)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())
	e.Validator = httpadp.NewValidator()
	e.Use(mw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	httpadp.RegisterRoutes(e, h, th, lh, ah, wh)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
