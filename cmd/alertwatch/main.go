// cmd/alertwatch polls the API for open sales close to their due date and
// logs one line per alert with the WhatsApp link of the seller.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floreria/internal/client"
	"floreria/internal/config"
	"floreria/internal/contact"
	"floreria/internal/dto"
	"floreria/internal/infra"
	"floreria/internal/sales"
	"floreria/internal/session"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := credentialStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("credential store")
	}

	api := client.New(cfg.APIBaseURL, cfg.APITimeout)
	sess := session.Open(ctx, store, api.Auth)
	api.SetTokenSource(sess)
	api.SetUnauthorizedHandler(func() {
		log.Warn().Msg("sesión expirada, se volverá a iniciar")
		_ = sess.Expire(context.Background())
	})

	desk := sales.NewDesk(api.Sales, dto.SaleFilter{Page: dto.Page{Limit: dto.MaxPageLimit}})
	directory := contact.NewDirectory(cfg.Phones())

	scan := func(ctx context.Context) ([]dto.DueAlertResponse, error) {
		if !sess.IsAuthenticated() {
			if _, err := sess.Login(ctx, cfg.AlertUsername, cfg.AlertPassword); err != nil {
				return nil, err
			}
		}
		return desk.ScanAlerts(ctx, cfg.AlertThresholdDays)
	}
	deliver := func(alerts []dto.DueAlertResponse) {
		links := sellerLinks(ctx, api, directory)
		for _, a := range alerts {
			log.Warn().
				Uint("sale_id", a.Sale.ID).
				Str("product", a.Sale.ProductName).
				Str("seller", a.Sale.SellerName).
				Str("remaining", a.Sale.AmountRemaining.StringFixed(2)).
				Int("days_until_due", a.DaysUntilDue).
				Str("urgency", a.Urgency).
				Str("contact", links[a.Sale.SellerID]).
				Msg("venta por vencer")
		}
	}

	scheduler := sales.NewAlertScheduler(scan, cfg.AlertInterval, deliver)
	scheduler.OnError(func(err error) {
		log.Error().Err(err).Msg("alert scan failed")
	})
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("scheduler")
	}
	log.Info().Dur("interval", cfg.AlertInterval).Int("days", cfg.AlertThresholdDays).Msg("alertwatch started")

	<-ctx.Done()
	scheduler.Stop()
	log.Info().Msg("alertwatch exited")
}

func credentialStore(cfg *config.ClientConfig) (session.CredentialStore, error) {
	switch cfg.CredentialsStore {
	case "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return session.NewRedisStore(rdb, "", 0), nil
	default:
		return session.NewFileStore(cfg.CredentialsFile), nil
	}
}

// sellerLinks maps seller id to wa.me link. A failed fetch only loses links.
func sellerLinks(ctx context.Context, api *client.Client, dir *contact.Directory) map[uint]string {
	out := map[uint]string{}
	sellers, err := api.Sellers.List(ctx, dto.Page{Limit: 100})
	if err != nil {
		log.Warn().Err(err).Msg("no se pudieron cargar los vendedores")
		return out
	}
	for _, e := range dir.Entries(sellers) {
		out[e.Seller.ID] = e.Link
	}
	return out
}
