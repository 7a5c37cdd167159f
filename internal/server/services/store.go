// Package services contains server-side business logic: the per-session
// activity synchronizer, authentication, the streak reclaimer and the
// read/write paths behind the HTTP API.
package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/server/repositories/repomanager"
)

// store pairs a connection pool with the repository factory.
type store struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

// asUser runs fn in a transaction scoped to userID by row-level security.
func (s store) asUser(ctx context.Context, userID string, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithUserTx(ctx, s.db, userID, fn)
}
