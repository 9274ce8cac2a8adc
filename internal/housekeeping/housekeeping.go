// Package housekeeping maintains the consumed-token ledger. Rows only
// matter while their token could still verify, so anything past expiry
// is swept out on a schedule.
package housekeeping

import (
	"context"
	"log/slog"
	"time"

	"github.com/emeeran/prompt-saver-web-app/internal/metrics"
	"github.com/emeeran/prompt-saver-web-app/internal/repository"
	"github.com/robfig/cron/v3"
)

const purgeSchedule = "@hourly"

type Housekeeper struct {
	tokens repository.ConsumedTokenRepository
	logger *slog.Logger
	cron   *cron.Cron
}

func New(tokens repository.ConsumedTokenRepository, logger *slog.Logger) *Housekeeper {
	return &Housekeeper{
		tokens: tokens,
		logger: logger.With("component", "housekeeping"),
		cron:   cron.New(),
	}
}

func (h *Housekeeper) Start() error {
	if _, err := h.cron.AddFunc(purgeSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		h.Purge(ctx)
	}); err != nil {
		return err
	}
	h.cron.Start()
	h.logger.Info("housekeeping started", "schedule", purgeSchedule)
	return nil
}

// Stop halts the schedule and waits for a running purge to finish.
func (h *Housekeeper) Stop() {
	<-h.cron.Stop().Done()
	h.logger.Info("housekeeping stopped")
}

func (h *Housekeeper) Purge(ctx context.Context) {
	n, err := h.tokens.PurgeExpired(ctx, time.Now())
	if err != nil {
		h.logger.Error("purge consumed tokens", "error", err)
		return
	}
	if n > 0 {
		metrics.ConsumedTokensPurgedTotal.Add(float64(n))
		h.logger.Info("purged consumed tokens", "count", n)
	}
}
