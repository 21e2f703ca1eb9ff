//go:build !integration

package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/runtimecfg"
	"github.com/sells-group/entity-resolver/internal/store"
)

func buildPostgresStore(_ context.Context, _ *runtimecfg.Config) (store.Store, error) {
	return nil, eris.New("serve: postgres store requires building with -tags integration")
}
