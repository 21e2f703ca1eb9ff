package driver

import (
	"context"
	"sync"
	"testing"

	"github.com/sells-group/entity-resolver/internal/matchengine"
	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// sliceSource is a fixed in-memory Source, mirroring the one used by
// matchengine's own tests.
type sliceSource struct {
	companies []matchmodel.Company
}

func (s sliceSource) Load(ctx context.Context) (<-chan matchmodel.Company, <-chan error) {
	outCh := make(chan matchmodel.Company, len(s.companies))
	errCh := make(chan error, 1)
	go func() {
		defer close(outCh)
		defer close(errCh)
		for _, c := range s.companies {
			select {
			case outCh <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return outCh, errCh
}

// memSink records every match it's given, in insertion order.
type memSink struct {
	mu      sync.Mutex
	matches []matchmodel.CompanyMatch
	flushes int
}

func (s *memSink) Add(_ context.Context, match matchmodel.CompanyMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, match)
	return nil
}

func (s *memSink) AddAll(_ context.Context, matches []matchmodel.CompanyMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, matches...)
	return nil
}

func (s *memSink) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func (s *memSink) snapshot() ([]matchmodel.CompanyMatch, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]matchmodel.CompanyMatch, len(s.matches))
	copy(out, s.matches)
	return out, s.flushes
}

func TestDriver_AcceptsMatchesAboveThreshold(t *testing.T) {
	sourceA := sliceSource{companies: []matchmodel.Company{{SourceID: "a1", Name: "Acme", Website: "acme.com"}}}
	sourceB := sliceSource{companies: []matchmodel.Company{
		{SourceID: "b1", Name: "Acme", Website: "acme.com"},
		{SourceID: "b2", Name: "Globex", Website: "globex.com"},
	}}

	matcher := matchengine.NewCompanyMatcher(nil, true)
	sm := matchengine.NewSourcesMatcher(sourceA, sourceB, matcher, 2)
	sink := &memSink{}

	d := New(sm, sink, Config{Threshold: 0.5, TimeoutSeconds: 5, FlushEvery: 500})
	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.RunID == "" {
		t.Error("expected a non-empty RunID")
	}
	if stats.Evaluated != 2 {
		t.Errorf("got Evaluated=%d, want 2", stats.Evaluated)
	}
	if stats.Accepted != 1 {
		t.Errorf("got Accepted=%d, want 1", stats.Accepted)
	}
	if stats.BelowThreshold != 1 {
		t.Errorf("got BelowThreshold=%d, want 1", stats.BelowThreshold)
	}

	matches, flushes := sink.snapshot()
	if len(matches) != 1 {
		t.Fatalf("got %d matches in sink, want 1", len(matches))
	}
	if matches[0].CompanyA.SourceID != "a1" || matches[0].CompanyB.SourceID != "b1" {
		t.Errorf("unexpected match pair: %+v", matches[0])
	}
	if flushes != 1 {
		t.Errorf("got %d flushes, want 1 (final flush only, FlushEvery never hit)", flushes)
	}
}

func TestDriver_FlushesInBatches(t *testing.T) {
	var bs []matchmodel.Company
	for i := 0; i < 3; i++ {
		bs = append(bs, matchmodel.Company{SourceID: string(rune('a' + i)), Name: "Acme", Website: "acme.com"})
	}
	sourceA := sliceSource{companies: []matchmodel.Company{{SourceID: "a1", Name: "Acme", Website: "acme.com"}}}
	sourceB := sliceSource{companies: bs}

	matcher := matchengine.NewCompanyMatcher(nil, true)
	sm := matchengine.NewSourcesMatcher(sourceA, sourceB, matcher, 2)
	sink := &memSink{}

	d := New(sm, sink, Config{Threshold: 0.5, TimeoutSeconds: 5, FlushEvery: 1})
	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Accepted != 3 {
		t.Fatalf("got Accepted=%d, want 3", stats.Accepted)
	}

	matches, _ := sink.snapshot()
	if len(matches) != 3 {
		t.Errorf("got %d matches in sink, want 3", len(matches))
	}
}

func TestDriver_RoutesBelowThresholdAboveReviewBandToReviewSink(t *testing.T) {
	// Name and name-contained agree (weight 3+1) but the domain disagrees
	// (weight 5), so under non-strict scoring the pair lands at 4/9 ≈
	// 0.444 -- below a 0.9 accept threshold but above a 0.1 review band.
	sourceA := sliceSource{companies: []matchmodel.Company{{SourceID: "a1", Name: "Acme", Website: "http://acme.com"}}}
	sourceB := sliceSource{companies: []matchmodel.Company{
		{SourceID: "b1", Name: "Acme", Website: "http://other.com"},
	}}

	matcher := matchengine.NewCompanyMatcher(nil, false)
	sm := matchengine.NewSourcesMatcher(sourceA, sourceB, matcher, 2)
	mainSink := &memSink{}
	reviewSink := &memSink{}

	d := New(sm, mainSink, Config{Threshold: 0.9, ReviewThreshold: 0.1, TimeoutSeconds: 5, FlushEvery: 500})
	d.WithReviewSink(reviewSink)

	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Accepted != 0 {
		t.Errorf("got Accepted=%d, want 0", stats.Accepted)
	}
	if stats.ReviewQueued != 1 {
		t.Errorf("got ReviewQueued=%d, want 1", stats.ReviewQueued)
	}

	mainMatches, _ := mainSink.snapshot()
	if len(mainMatches) != 0 {
		t.Errorf("got %d matches in the main sink, want 0", len(mainMatches))
	}
	reviewMatches, reviewFlushes := reviewSink.snapshot()
	if len(reviewMatches) != 1 {
		t.Fatalf("got %d matches in the review sink, want 1", len(reviewMatches))
	}
	if reviewMatches[0].CompanyA.SourceID != "a1" || reviewMatches[0].CompanyB.SourceID != "b1" {
		t.Errorf("unexpected review match pair: %+v", reviewMatches[0])
	}
	if reviewFlushes != 1 {
		t.Errorf("got %d review sink flushes, want 1", reviewFlushes)
	}
}

func TestDriver_SkipsZeroDenominatorPairs(t *testing.T) {
	// Both companies carry no comparable fields at all under the default
	// criteria set, so every criterion is undetermined and non-strict
	// scoring has nothing to divide by; the pair must be skipped rather
	// than counted as accepted or rejected.
	sourceA := sliceSource{companies: []matchmodel.Company{{SourceID: "a1"}}}
	sourceB := sliceSource{companies: []matchmodel.Company{{SourceID: "b1"}}}

	matcher := matchengine.NewCompanyMatcher(nil, false)
	sm := matchengine.NewSourcesMatcher(sourceA, sourceB, matcher, 2)
	sink := &memSink{}

	d := New(sm, sink, DefaultConfig())
	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Skipped != 1 {
		t.Errorf("got Skipped=%d, want 1", stats.Skipped)
	}
	if stats.Accepted != 0 {
		t.Errorf("got Accepted=%d, want 0", stats.Accepted)
	}

	matches, flushes := sink.snapshot()
	if len(matches) != 0 {
		t.Errorf("got %d matches in sink, want 0", len(matches))
	}
	if flushes != 1 {
		t.Errorf("got %d flushes, want 1 (Flush always runs even with nothing pending)", flushes)
	}
}
