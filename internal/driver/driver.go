// Package driver implements the process-level result consumer described in
// the matching core's design: it pulls handles in submission order, enforces
// a per-pair timeout, applies a score threshold, and routes accepted
// matches into a batching sink. None of this lives in the engine itself —
// the engine only needs to expose handles and a Stop method to support it.
package driver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/entity-resolver/internal/matchengine"
	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// Config holds the driver-level knobs that sit above the matching core:
// the acceptance threshold, the per-pair await timeout, and the sink flush
// batch size.
type Config struct {
	Threshold       float64
	ReviewThreshold float64
	TimeoutSeconds  float64
	FlushEvery      int
}

// DefaultConfig returns the documented production defaults: threshold 0.7,
// 60 second timeout, flush every 500 accepted matches.
func DefaultConfig() Config {
	return Config{Threshold: 0.7, TimeoutSeconds: 60, FlushEvery: 500}
}

// Stats summarizes one run for logging and callers that want a final
// count without parsing logs.
type Stats struct {
	RunID          string
	Evaluated      int
	Accepted       int
	Skipped        int
	BelowThreshold int
	ReviewQueued   int
	TimedOut       int
	Failed         int
}

// Driver consumes a SourcesMatcher's handle stream and writes accepted
// matches to a Sink.
type Driver struct {
	matcher    *matchengine.SourcesMatcher
	sink       matchengine.Sink
	reviewSink matchengine.Sink
	cfg        Config
}

// New builds a Driver. A zero Config is not valid; use DefaultConfig and
// override individual fields.
func New(matcher *matchengine.SourcesMatcher, sink matchengine.Sink, cfg Config) *Driver {
	return &Driver{matcher: matcher, sink: sink, cfg: cfg}
}

// WithReviewSink attaches a second sink that receives matches scoring at
// or above cfg.ReviewThreshold but below the accept threshold — scores
// that cleared a "needs human review" band without meeting the bar for
// automatic acceptance. A nil or never-called reviewSink simply disables
// the behavior: those matches count as BelowThreshold only, as before.
func (d *Driver) WithReviewSink(reviewSink matchengine.Sink) *Driver {
	d.reviewSink = reviewSink
	return d
}

// Run drives one full pairing pass to completion: threshold filtering,
// timeout handling, batched sink writes, and a final flush. It returns once
// the handle stream is exhausted and the sink has been flushed.
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("component", "driver"), zap.String("run_id", runID))
	timeout := time.Duration(d.cfg.TimeoutSeconds * float64(time.Second))

	stats := Stats{RunID: runID}
	var pending []matchmodel.CompanyMatch

	handleCh, errCh := d.matcher.Compare(ctx)

	for handle := range handleCh {
		stats.Evaluated++

		awaitCtx, cancel := context.WithTimeout(ctx, timeout)
		match, matched, err := handle.Await(awaitCtx)
		cancel()

		switch {
		case eris.Is(err, matchengine.ErrTimedOut):
			stats.TimedOut++
			log.Warn("driver: timed out awaiting comparison", zap.Duration("timeout", timeout))
			continue
		case err != nil:
			stats.Failed++
			log.Error("driver: worker error", zap.Error(err))
			continue
		case !matched:
			stats.Skipped++
			continue
		}

		if match.Score < d.cfg.Threshold {
			stats.BelowThreshold++
			if d.reviewSink != nil && match.Score >= d.cfg.ReviewThreshold {
				stats.ReviewQueued++
				if err := d.reviewSink.Add(ctx, match); err != nil {
					log.Error("driver: review sink add", zap.Error(err))
				}
			}
			continue
		}

		stats.Accepted++
		log.Info("driver: match accepted",
			zap.String("company_a", match.CompanyA.Name),
			zap.String("company_b", match.CompanyB.Name),
			zap.Float64("score", match.Score),
		)

		pending = append(pending, match)
		if len(pending) >= d.cfg.FlushEvery {
			if err := d.sink.AddAll(ctx, pending); err != nil {
				return stats, eris.Wrap(err, "driver: sink add_all")
			}
			pending = pending[:0]
		}
	}

	if err := <-errCh; err != nil {
		return stats, eris.Wrap(err, "driver: source")
	}

	if len(pending) > 0 {
		if err := d.sink.AddAll(ctx, pending); err != nil {
			return stats, eris.Wrap(err, "driver: sink add_all final")
		}
	}

	if err := d.sink.Flush(ctx); err != nil {
		return stats, eris.Wrap(err, "driver: sink flush")
	}

	if d.reviewSink != nil {
		if err := d.reviewSink.Flush(ctx); err != nil {
			return stats, eris.Wrap(err, "driver: review sink flush")
		}
	}

	if err := d.matcher.Stop(); err != nil {
		return stats, eris.Wrap(err, "driver: stop matcher")
	}

	log.Info("driver: run complete",
		zap.Int("evaluated", stats.Evaluated),
		zap.Int("accepted", stats.Accepted),
		zap.Int("skipped", stats.Skipped),
		zap.Int("review_queued", stats.ReviewQueued),
		zap.Int("timed_out", stats.TimedOut),
	)
	return stats, nil
}
