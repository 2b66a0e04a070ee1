package server

import (
	"context"
	"math"
	"time"

	"calculator-api/internal/history"
	"calculator-api/internal/observability"
	"calculator-api/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const historyScrapeTimeout = 2 * time.Second

// stateCollectors exposes the live session and history state at scrape time.
func stateCollectors(store *session.Store, hist history.Store) []prometheus.Collector {
	sessionActive := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "calculator",
		Name:      "session_active",
		Help:      "1 while a user is logged in, 0 otherwise.",
	}, func() float64 {
		if _, ok := store.Current(context.Background()); ok {
			return 1
		}
		return 0
	})

	historyEntries := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "calculator",
		Name:      "history_entries",
		Help:      "Number of calculations currently in the history log.",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), historyScrapeTimeout)
		defer cancel()

		entries, err := hist.All(ctx)
		if err != nil {
			observability.Logger.Warn("reading history for metrics", zap.Error(err))
			return math.NaN()
		}
		return float64(len(entries))
	})

	return []prometheus.Collector{sessionActive, historyEntries}
}
