package worker

// due_cron.go
// Background goroutine that scans open sales with a close due date and mails
// a digest to the admin. Each sale is announced at most once per day; the
// dedupe key lives in Redis.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"floreria/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dueKeyTTL = 48 * time.Hour

// AlertSource is satisfied by service.SaleService.
type AlertSource interface {
	Alerts(ctx context.Context, days int) ([]dto.DueAlertResponse, error)
}

// EmailQueue is satisfied by *Dispatcher.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, job EmailJob) error
}

type DueCronConfig struct {
	Source   AlertSource
	Queue    EmailQueue
	RDB      *redis.Client
	To       string
	Days     int
	Interval time.Duration
	Now      func() time.Time
}

// StartDueCron ticks every cfg.Interval until ctx is cancelled. Without a
// recipient the cron does not start.
func StartDueCron(ctx context.Context, cfg DueCronConfig) {
	if cfg.To == "" {
		log.Info().Msg("due_cron: ALERT_EMAIL_TO empty, not started")
		return
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("due_cron: started")
		if _, err := RunDueScan(ctx, cfg); err != nil {
			log.Error().Err(err).Msg("due_cron: scan failed")
		}
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("due_cron: shutting down")
				return
			case <-ticker.C:
				if _, err := RunDueScan(ctx, cfg); err != nil {
					log.Error().Err(err).Msg("due_cron: scan failed")
				}
			}
		}
	}()
}

// RunDueScan performs one scan and returns how many sales were announced.
func RunDueScan(ctx context.Context, cfg DueCronConfig) (int, error) {
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	alerts, err := cfg.Source.Alerts(ctx, cfg.Days)
	if err != nil {
		return 0, fmt.Errorf("due_cron: alerts: %w", err)
	}
	today := now().UTC().Format(dto.DateLayout)

	fresh := make([]dto.DueAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		key := fmt.Sprintf("due_alert:%d:%s", a.Sale.ID, today)
		ok, err := cfg.RDB.SetNX(ctx, key, 1, dueKeyTTL).Result()
		if err != nil {
			return 0, fmt.Errorf("due_cron: dedupe: %w", err)
		}
		if ok {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	job := EmailJob{
		To:      []string{cfg.To},
		Subject: fmt.Sprintf("Ventas por vencer: %d", len(fresh)),
		Body:    DueDigest(fresh),
	}
	if err := cfg.Queue.EnqueueEmail(ctx, job); err != nil {
		// release the keys so the next tick tries again
		for _, a := range fresh {
			cfg.RDB.Del(ctx, fmt.Sprintf("due_alert:%d:%s", a.Sale.ID, today))
		}
		return 0, fmt.Errorf("due_cron: enqueue: %w", err)
	}
	log.Info().Int("count", len(fresh)).Msg("due_cron: digest queued")
	return len(fresh), nil
}

// DueDigest renders the plain-text body of the digest.
func DueDigest(alerts []dto.DueAlertResponse) string {
	var b strings.Builder
	b.WriteString("Las siguientes ventas tienen saldo pendiente próximo a vencer:\n\n")
	for _, a := range alerts {
		s := a.Sale
		name := s.ProductName
		if name == "" {
			name = fmt.Sprintf("producto #%d", s.ProductID)
		}
		due := ""
		if s.DueDate != nil {
			due = *s.DueDate
		}
		fmt.Fprintf(&b, "- Venta #%d, %s: saldo $%s, vence %s (%s)\n",
			s.ID, name, s.AmountRemaining.StringFixed(2), due, whenLabel(a.DaysUntilDue))
	}
	return b.String()
}

func whenLabel(days int) string {
	switch days {
	case 0:
		return "hoy"
	case 1:
		return "mañana"
	}
	return fmt.Sprintf("en %d días", days)
}

