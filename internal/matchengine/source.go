package matchengine

import (
	"context"

	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// Source is a lazy, finite provider of companies from one dataset. Load
// follows the channel-streaming pattern this codebase uses for every other
// record source (CSV, XLSX, ...): a goroutine produces records onto the
// returned channel and reports at most one error on the error channel
// before both close. A Source need only support a single pass; callers
// that must re-iterate it (SourcesMatcher's inner source) materialize the
// result themselves rather than requiring Source to buffer internally.
type Source interface {
	Load(ctx context.Context) (<-chan matchmodel.Company, <-chan error)
}

// Sink is an external consumer of accepted matches. Ordering within a sink
// is insertion order; AddAll is a convenience for writing a batch at once
// and is not required to be atomic. Sinks are permitted but not required
// to buffer and batch internally — Flush is always safe to call and must
// make any buffered matches durable.
type Sink interface {
	Add(ctx context.Context, match matchmodel.CompanyMatch) error
	AddAll(ctx context.Context, matches []matchmodel.CompanyMatch) error
	Flush(ctx context.Context) error
}
