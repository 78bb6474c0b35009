package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/qbdaten/qbsync/internal/store"
)

// openStore connects to the configured store and ensures schema and tables
// exist. Any failure here is fatal to the invocation; nothing has been
// written yet at this point.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "connect store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
