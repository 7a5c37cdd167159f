package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/signify/internal/dbx"
	"github.com/dmitrijs2005/signify/internal/server/repositories/chats"
	"github.com/dmitrijs2005/signify/internal/server/repositories/lessons"
	"github.com/dmitrijs2005/signify/internal/server/repositories/practice"
	"github.com/dmitrijs2005/signify/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/signify/internal/server/repositories/settings"
	"github.com/dmitrijs2005/signify/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path works on a pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Settings(db dbx.DBTX) settings.Repository
	Lessons(db dbx.DBTX) lessons.Repository
	Practice(db dbx.DBTX) practice.Repository
	Chats(db dbx.DBTX) chats.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
