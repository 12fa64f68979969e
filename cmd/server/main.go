package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	account "github.com/ondo-app/account"
	"github.com/ondo-app/account/social"
	"github.com/ondo-app/account/social/providers/kakao"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := account.LoadConfig()
	if err != nil {
		return err
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx := context.Background()
	if err := account.CreateSchema(ctx, db); err != nil {
		return err
	}

	repo := account.NewRepositoryManager(db)
	codec := account.NewTokenCodecFromConfig(cfg)
	sessions := account.NewSessionAuthority(codec, repo.Users()).
		WithAccessTokenTTL(cfg.GetAccessTokenTTL())
	resets := account.NewResetTokenAuthority(repo).
		WithPasswordAuthenticator(account.NewPasswordAuthenticator())
	svc := account.NewAccountService(repo, codec, resets).
		WithPasswordAuthenticator(account.NewPasswordAuthenticator()).
		WithTokenTTLs(cfg.GetAccessTokenTTL(), cfg.GetRefreshTokenTTL())

	var provider social.Provider
	if cfg.KakaoEnabled() {
		provider = kakao.New(kakao.Config{
			ClientID:     cfg.KakaoClientID,
			ClientSecret: cfg.KakaoClientSecret,
			RedirectURI:  cfg.KakaoRedirectURI,
		})
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: account.ErrorHandler(nil),
	})

	controller := account.NewController(
		account.WithControllerService(svc),
		account.WithControllerSessions(sessions),
		account.WithControllerProvider(provider),
	)
	controller.RegisterRoutes(app)

	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(cfg.HTTPAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case <-quit:
		log.Println("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
