package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/platform/database"
)

// synchronousCommit maps a write level onto how many servers must have the
// commit before it returns: the primary alone, one synchronous standby, or
// every synchronous standby having applied it.
func synchronousCommit(c domain.Consistency) string {
	switch c {
	case domain.ConsistencyOne:
		return "local"
	case domain.ConsistencyAll:
		return "remote_apply"
	default:
		return "on"
	}
}

// reader picks the handle for a read at the level carried by ctx. Only ONE
// reads may be served by a replica; stronger reads go to the primary.
func reader(ctx context.Context, cluster *database.Cluster) *sql.DB {
	if domain.ConsistencyFrom(ctx) == domain.ConsistencyOne {
		return cluster.Replica()
	}
	return cluster.Primary()
}

// write runs fn in a primary transaction whose commit durability follows the
// level carried by ctx.
func write(ctx context.Context, cluster *database.Cluster, op string, fn func(tx *sql.Tx) error) error {
	tx, err := cluster.Primary().BeginTx(ctx, nil)
	if err != nil {
		return storageErr(op, err)
	}
	defer tx.Rollback()

	level := synchronousCommit(domain.ConsistencyFrom(ctx))
	if _, err := tx.ExecContext(ctx, `SELECT set_config('synchronous_commit', $1, true)`, level); err != nil {
		return storageErr(op, err)
	}
	if err := fn(tx); err != nil {
		return storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr(op, err)
	}
	return nil
}

// storageErr tags driver failures, keeping the Postgres error code in the
// message when there is one.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		err = fmt.Errorf("%s (SQLSTATE %s): %w", pqErr.Code.Name(), pqErr.Code, err)
	}
	return domain.StorageError(op, err)
}
