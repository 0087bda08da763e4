package ecb

// refresher.go keeps the stored rate table current in the background.
//
// The refresher is long-running and context-aware for graceful shutdown. It
// logs progress and errors per currency but never fails the application when
// an individual fetch or upsert fails; enrichment falls back to the last
// stored observation in the meantime.

import (
	"context"
	"log/slog"
	"time"

	"github.com/qhuube/vatreport/internal/core"
)

// RateStore is the catalog surface the refresher writes through.
type RateStore interface {
	UpsertRates(ctx context.Context, observations []core.RateObservation) (int, error)
	LatestRateDate(ctx context.Context) (map[string]string, error)
}

// Config holds refresher settings. Zero values get sensible defaults.
type Config struct {
	Currencies    []string      // currencies to track (default: USD, GBP, CHF, SEK, DKK, PLN)
	Interval      time.Duration // how often to refresh (default: 12h)
	BackfillStart time.Time     // earliest date fetched for a currency with no stored rows
}

// Refresher periodically pulls new observations into the store.
type Refresher struct {
	client *Client
	store  RateStore
	cfg    Config
	now    func() time.Time
}

// NewRefresher creates a refresher. Defaults are applied here so Run can
// assume a complete config.
func NewRefresher(client *Client, store RateStore, cfg Config) *Refresher {
	if len(cfg.Currencies) == 0 {
		cfg.Currencies = []string{"USD", "GBP", "CHF", "SEK", "DKK", "PLN"}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 12 * time.Hour
	}
	if cfg.BackfillStart.IsZero() {
		cfg.BackfillStart = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Refresher{client: client, store: store, cfg: cfg, now: time.Now}
}

// Run refreshes immediately, then on every tick until the context is
// cancelled.
func (r *Refresher) Run(ctx context.Context) {
	slog.Info("rate refresher started",
		"currencies", r.cfg.Currencies,
		"interval", r.cfg.Interval.String(),
	)

	r.refresh(ctx)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh performs one fetch + upsert cycle across all tracked currencies.
func (r *Refresher) refresh(ctx context.Context) {
	start := time.Now()

	latest, err := r.store.LatestRateDate(ctx)
	if err != nil {
		slog.Error("rate refresh aborted, cannot read stored state", "error", err)
		return
	}

	end := r.now().UTC()
	for _, currency := range r.cfg.Currencies {
		if ctx.Err() != nil {
			return
		}

		from := r.cfg.BackfillStart
		if last, ok := latest[currency]; ok {
			if parsed, err := time.Parse("2006-01-02", last); err == nil {
				from = parsed.AddDate(0, 0, 1)
			}
		}
		if from.After(end) {
			continue
		}

		observations, err := r.client.FetchRates(ctx, currency, from, end)
		if err != nil {
			slog.Error("rate fetch failed", "currency", currency, "error", err)
			continue
		}
		if len(observations) == 0 {
			slog.Debug("no new rates", "currency", currency, "from", from.Format("2006-01-02"))
			continue
		}

		stored, err := r.store.UpsertRates(ctx, observations)
		if err != nil {
			slog.Error("rate upsert failed", "currency", currency, "error", err)
			continue
		}
		slog.Info("rates refreshed",
			"currency", currency,
			"observations", stored,
			"through", observations[len(observations)-1].Date,
		)
	}

	slog.Info("rate refresh completed", "duration_ms", time.Since(start).Milliseconds())
}
