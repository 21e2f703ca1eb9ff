package matchengine

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// SourcesMatcher iterates the cartesian product of two sources and
// dispatches each pair into a bounded worker pool, yielding handles in
// submission order. Source A is streamed lazily, one record at a time;
// source B is materialized once up front, since it must be re-iterated for
// every element of A and may not otherwise support more than one pass.
type SourcesMatcher struct {
	sourceA, sourceB Source
	matcher          *CompanyMatcher
	workerAmount     int

	mu     sync.Mutex
	pool   *Pool
	cancel context.CancelFunc
}

// NewSourcesMatcher builds a SourcesMatcher. matcher defaults to a strict
// CompanyMatcher over criteria.DefaultSet when nil; workerAmount defaults
// to 20 when <= 0.
func NewSourcesMatcher(sourceA, sourceB Source, matcher *CompanyMatcher, workerAmount int) *SourcesMatcher {
	if matcher == nil {
		matcher = NewCompanyMatcher(nil, true)
	}
	if workerAmount <= 0 {
		workerAmount = 20
	}
	return &SourcesMatcher{
		sourceA:      sourceA,
		sourceB:      sourceB,
		matcher:      matcher,
		workerAmount: workerAmount,
	}
}

// Compare starts the pairing pipeline and returns a channel of handles (one
// per pair, |A|·|B| total) plus an error channel for source I/O failures.
// Handles are sent in lexicographic (source_a, source_b) order; a caller
// that wants deterministic results must range over handleCh in order and
// Await each handle rather than racing them.
func (m *SourcesMatcher) Compare(ctx context.Context) (<-chan *Handle, <-chan error) {
	runCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.cancel = cancel
	m.pool = NewPool(context.Background(), m.workerAmount)
	pool := m.pool
	m.mu.Unlock()

	handleCh := make(chan *Handle, m.workerAmount)
	errCh := make(chan error, 1)

	go func() {
		defer close(handleCh)
		defer close(errCh)

		companiesB, err := materialize(runCtx, m.sourceB)
		if err != nil {
			errCh <- eris.Wrap(err, "matchengine: materialize source b")
			return
		}

		companyCh, aErrCh := m.sourceA.Load(runCtx)
		for companyA := range companyCh {
			for _, companyB := range companiesB {
				if runCtx.Err() != nil {
					return
				}

				a, b := companyA, companyB
				handle := pool.Submit(func() (matchmodel.CompanyMatch, bool) {
					return m.matcher.Match(a, b)
				})

				select {
				case handleCh <- handle:
				case <-runCtx.Done():
					return
				}
			}
		}

		if err := <-aErrCh; err != nil {
			errCh <- eris.Wrap(err, "matchengine: source a")
		}
	}()

	return handleCh, errCh
}

// Stop drains the pool: no handle yielded after Stop is called will be
// submitted, and workers already running finish their in-flight
// comparisons naturally rather than being forced to cancel. Calling Stop
// before the handle stream is exhausted aborts any remaining comparisons
// that had not yet been submitted.
func (m *SourcesMatcher) Stop() error {
	m.mu.Lock()
	cancel := m.cancel
	pool := m.pool
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if pool != nil {
		return pool.Stop()
	}
	return nil
}

func materialize(ctx context.Context, s Source) ([]matchmodel.Company, error) {
	companyCh, errCh := s.Load(ctx)

	var companies []matchmodel.Company
	for c := range companyCh {
		companies = append(companies, c)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return companies, nil
}
