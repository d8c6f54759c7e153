package metrics

import (
	"context"
	"net/http"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/build"
)

var log = logging.Logger("metrics")

// Distributions
var finalityMillisecondsDistribution = view.Distribution(
	1000, 2000, 4000, 6000, 8000, 10_000, 12_000, 15_000, 18_000, 24_000, 30_000, // a few blocks
	36_000, 45_000, 60_000, 75_000, 90_000, 120_000, 180_000, 300_000, // up to and past the watch timeout
)

var itemsDistribution = view.Distribution(0, 1, 8, 64, 256, 512, 1024, 2048, 4096, 8192, 16384, 65536)

// Tags
var (
	Version, _ = tag.NewKey("version")
	Commit, _  = tag.NewKey("commit")

	// Kind is the error kind of a failed attempt.
	Kind, _   = tag.NewKey("kind")
	Status, _ = tag.NewKey("status")
)

// Measures
var (
	Info = stats.Int64("info", "Arbitrary counter to tag migrate bot info to", stats.UnitDimensionless)

	Attempts         = stats.Int64("migrate/attempts", "Migration attempts started", stats.UnitDimensionless)
	Successes        = stats.Int64("migrate/successes", "Migration attempts finalized with unchanged balance", stats.UnitDimensionless)
	Failures         = stats.Int64("migrate/failures", "Failed migration attempts", stats.UnitDimensionless)
	ConsecutiveFails = stats.Int64("migrate/consecutive_failures", "Current run of consecutive failed attempts", stats.UnitDimensionless)
	FinalityLatency  = stats.Float64("migrate/finality_ms", "Time from submission to finalization", stats.UnitMilliseconds)
	TopItems         = stats.Int64("migrate/top_items", "Cumulative top trie items migrated", stats.UnitDimensionless)
	ChildItems       = stats.Int64("migrate/child_items", "Cumulative child trie items migrated", stats.UnitDimensionless)
	MigratedSize     = stats.Int64("migrate/size", "Cumulative bytes migrated", stats.UnitBytes)
	ItemsPerTx       = stats.Int64("migrate/items_per_tx", "Top and child items migrated by one extrinsic", stats.UnitDimensionless)
	TxStatuses       = stats.Int64("migrate/tx_status", "Status updates received for watched extrinsics", stats.UnitDimensionless)
)

var (
	InfoView = &view.View{
		Name:        "info",
		Description: "Migrate bot information",
		Measure:     Info,
		Aggregation: view.LastValue(),
		TagKeys:     []tag.Key{Version, Commit},
	}
	AttemptsView = &view.View{
		Measure:     Attempts,
		Aggregation: view.Count(),
	}
	SuccessesView = &view.View{
		Measure:     Successes,
		Aggregation: view.Count(),
	}
	FailuresView = &view.View{
		Measure:     Failures,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Kind},
	}
	ConsecutiveFailsView = &view.View{
		Measure:     ConsecutiveFails,
		Aggregation: view.LastValue(),
	}
	FinalityLatencyView = &view.View{
		Measure:     FinalityLatency,
		Aggregation: finalityMillisecondsDistribution,
	}
	TopItemsView = &view.View{
		Measure:     TopItems,
		Aggregation: view.LastValue(),
	}
	ChildItemsView = &view.View{
		Measure:     ChildItems,
		Aggregation: view.LastValue(),
	}
	MigratedSizeView = &view.View{
		Measure:     MigratedSize,
		Aggregation: view.LastValue(),
	}
	ItemsPerTxView = &view.View{
		Measure:     ItemsPerTx,
		Aggregation: itemsDistribution,
	}
	TxStatusesView = &view.View{
		Measure:     TxStatuses,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Status},
	}
)

// DefaultViews is an array of OpenCensus views for metric gathering purposes
var DefaultViews = []*view.View{
	InfoView,
	AttemptsView,
	SuccessesView,
	FailuresView,
	ConsecutiveFailsView,
	FinalityLatencyView,
	TopItemsView,
	ChildItemsView,
	MigratedSizeView,
	ItemsPerTxView,
	TxStatusesView,
}

// SinceInMilliseconds returns the duration of time since the provide time as a float64.
func SinceInMilliseconds(startTime time.Time) float64 {
	return float64(build.Clock.Since(startTime).Milliseconds())
}

// RecordWithTags records m under the given tag mutators, logging tag errors.
func RecordWithTags(ctx context.Context, mutators []tag.Mutator, ms ...stats.Measurement) {
	if err := stats.RecordWithTags(ctx, mutators, ms...); err != nil {
		log.Debugw("recording metric", "error", err)
	}
}

// Serve registers DefaultViews and serves them in the prometheus format on
// addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string) error {
	if err := view.Register(DefaultViews...); err != nil {
		return xerrors.Errorf("registering views: %w", err)
	}
	RecordWithTags(ctx, []tag.Mutator{
		tag.Upsert(Version, build.BuildVersion),
		tag.Upsert(Commit, build.CurrentCommit),
	}, Info.M(1))

	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: "westend_migrate",
	})
	if err != nil {
		return xerrors.Errorf("creating the Prometheus stats exporter: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", pe)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	log.Infow("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return xerrors.Errorf("metrics endpoint: %w", err)
	}
	return nil
}
