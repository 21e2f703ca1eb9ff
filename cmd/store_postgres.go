//go:build integration

package main

import (
	"context"

	"github.com/sells-group/entity-resolver/internal/runtimecfg"
	"github.com/sells-group/entity-resolver/internal/store"
)

func buildPostgresStore(ctx context.Context, c *runtimecfg.Config) (store.Store, error) {
	return store.NewPostgres(ctx, c.Store.DatabaseURL)
}
