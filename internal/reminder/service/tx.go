package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "idmonitor/pkg/domain-errors"
	"idmonitor/pkg/platform/tx"
)

// defaultTxTimeout bounds a plan rewrite transaction.
const defaultTxTimeout = 5 * time.Second

// PostgresTxRunner wraps a plan rewrite in a SQL transaction. The
// transaction rides the context so the stores pick it up transparently.
type PostgresTxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresTxRunner(db *sql.DB) *PostgresTxRunner {
	return &PostgresTxRunner{db: db}
}

func (t *PostgresTxRunner) RunInTx(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// numTxShards spreads per-document locks across shards so unrelated
// documents don't contend.
const numTxShards = 128

// ShardedTxRunner provides the in-memory transactional boundary: a coarse
// lock per document-ID shard. It serializes concurrent rewrites of the same
// document, which is all the memory stores need since their operations are
// infallible.
type ShardedTxRunner struct {
	shards [numTxShards]sync.Mutex
}

func NewShardedTxRunner() *ShardedTxRunner {
	return &ShardedTxRunner{}
}

func (t *ShardedTxRunner) RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	shard := hashString(key) % numTxShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// hashString uses FNV-1a for shard distribution.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
