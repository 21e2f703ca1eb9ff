package matchengine

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// ErrTimedOut is returned by Handle.Await when the given context expires
// before a result arrives. The underlying comparison is not cancelled: it
// keeps running and its result, if any, is simply never read.
var ErrTimedOut = eris.New("matchengine: timed out awaiting result")

// Task is the unit of work submitted to the pool: compute a CompanyMatch
// for one pair, or report (via the bool) that the pair had no determinable
// criteria to score.
type Task func() (matchmodel.CompanyMatch, bool)

type handleResult struct {
	match   matchmodel.CompanyMatch
	matched bool
	err     error
}

// Handle is a future for one submitted Task. Submission order across a run
// is the order Pool.Submit was called; completion order is unspecified.
type Handle struct {
	resultCh chan handleResult
}

// Await blocks until the task completes or ctx is done, whichever comes
// first. A context deadline models the driver's per-pair timeout: the
// comparison is not forced to stop, only the wait is abandoned.
func (h *Handle) Await(ctx context.Context) (matchmodel.CompanyMatch, bool, error) {
	select {
	case r := <-h.resultCh:
		return r.match, r.matched, r.err
	case <-ctx.Done():
		return matchmodel.CompanyMatch{}, false, ErrTimedOut
	}
}

// Pool is a bounded worker pool built on errgroup.Group with a concurrency
// limit: Submit blocks the caller once `workerAmount` tasks are in flight,
// which is the producer-side backpressure point described for the pairing
// pipeline. It never cancels in-flight tasks on a single task's failure —
// each task recovers its own panics and reports them through its own
// Handle instead of propagating to the group.
type Pool struct {
	group *errgroup.Group
}

// NewPool creates a pool with the given worker count. ctx governs the
// group's own bookkeeping only; it is not used to cancel individual tasks.
func NewPool(ctx context.Context, workerAmount int) *Pool {
	if workerAmount <= 0 {
		workerAmount = 20
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workerAmount)
	return &Pool{group: g}
}

// Submit schedules a task and returns its Handle immediately. It blocks
// the calling goroutine if the pool is already running workerAmount tasks.
func (p *Pool) Submit(task Task) *Handle {
	h := &Handle{resultCh: make(chan handleResult, 1)}
	p.group.Go(func() error {
		h.resultCh <- runSafely(task)
		return nil
	})
	return h
}

// Stop waits for all submitted tasks to finish and releases the pool's
// workers. It does not cancel work in flight.
func (p *Pool) Stop() error {
	return p.group.Wait()
}

// runSafely isolates a criterion panic into the task's own Handle so one
// misbehaving comparison can't take down the pool or any other pair.
func runSafely(task Task) (result handleResult) {
	defer func() {
		if r := recover(); r != nil {
			result = handleResult{err: eris.Errorf("matchengine: worker panic: %v", r)}
		}
	}()
	match, matched := task()
	return handleResult{match: match, matched: matched}
}
