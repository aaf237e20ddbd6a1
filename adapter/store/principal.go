package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Hmv123/ragbot/pkg/authz"
)

func (a *Adapter) SavePrincipal(ctx context.Context, principal authz.Principal) error {
	return a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := execQuery(ctx, tx, insertPrincipalQuery{principal: principal}); err != nil {
			return fmt.Errorf("exec insert principal query failed: %w", err)
		}
		return nil
	})
}

type insertPrincipalQuery struct {
	principal authz.Principal
}

func (q insertPrincipalQuery) SQL() (string, []any) {
	query := `
		insert into "principal" ("id", "name", "created")
		values (?, ?, ?)
		on conflict("id") do update set
			"name"=excluded."name"
	`
	return query, []any{q.principal.ID(), q.principal.Name(), time.Now().UTC()}
}
