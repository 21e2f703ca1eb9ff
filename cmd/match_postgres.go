//go:build integration

package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/matchengine"
	"github.com/sells-group/entity-resolver/internal/runtimecfg"
	"github.com/sells-group/entity-resolver/internal/sink"
)

func buildPostgresSink(ctx context.Context, c *runtimecfg.Config) (matchengine.Sink, func(), error) {
	pool, err := pgxpool.New(ctx, c.Store.DatabaseURL)
	if err != nil {
		return nil, func() {}, eris.Wrap(err, "match: connect postgres sink")
	}
	return sink.NewPostgresSink(pool), func() { pool.Close() }, nil
}
