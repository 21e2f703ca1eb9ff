//go:build !integration

package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/matchengine"
	"github.com/sells-group/entity-resolver/internal/runtimecfg"
)

// buildPostgresSink requires the integration build tag (the same one
// gating store.PostgresStore) since pgxpool needs a live database to
// dial against in CI's default build.
func buildPostgresSink(_ context.Context, _ *runtimecfg.Config) (matchengine.Sink, func(), error) {
	return nil, func() {}, eris.New("match: postgres sink requires building with -tags integration")
}
