package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"reorgScope/internal/model"
)

const defaultBatchSize = 500

const schema = `
CREATE TABLE IF NOT EXISTS reorg_runs (
	run_id      uuid PRIMARY KEY,
	chain       text NOT NULL,
	source      text NOT NULL,
	reorgs      integer NOT NULL DEFAULT 0,
	validators  integer NOT NULL DEFAULT 0,
	created_at  timestamptz NOT NULL DEFAULT now(),
	updated_at  timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reorg_attributions (
	run_id                uuid NOT NULL REFERENCES reorg_runs (run_id) ON DELETE CASCADE,
	seq                   integer NOT NULL,
	reorg_number          bigint NOT NULL,
	reorg_hash            text NOT NULL,
	drop_count            bigint NOT NULL,
	add_count             bigint NOT NULL,
	dropped_hash          text NOT NULL,
	dropped_miner         text NOT NULL,
	added_hash            text NOT NULL,
	added_miner           text NOT NULL,
	responsible_validator text NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS validator_reorgs (
	run_id        uuid NOT NULL REFERENCES reorg_runs (run_id) ON DELETE CASCADE,
	rank          integer NOT NULL,
	validator     text NOT NULL,
	reorg_count   integer NOT NULL,
	block_numbers bigint[] NOT NULL,
	PRIMARY KEY (run_id, validator)
);
`

// Store provides Postgres persistence for analysis runs.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables used by the store when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ErrOutOfRange reports a value that does not fit a bigint column.
var ErrOutOfRange = errors.New("value exceeds bigint range")

// runTx is the subset of pgx.Tx used to write a run.
type runTx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Run writes the output of one analysis inside a single transaction. It
// satisfies storage.Storage. Nothing is visible to readers until Commit.
type Run struct {
	tx        runTx
	id        uuid.UUID
	batchSize int
	seq       int
}

// BeginRun opens a transaction and registers a new run in it.
func (s *Store) BeginRun(ctx context.Context, chain, source string, batchSize int) (*Run, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}

	run := newRun(tx, uuid.New(), batchSize)
	_, err = tx.Exec(ctx, `
		INSERT INTO reorg_runs (run_id, chain, source, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
	`, run.id, chain, source)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

func newRun(tx runTx, id uuid.UUID, batchSize int) *Run {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Run{tx: tx, id: id, batchSize: batchSize}
}

// ID returns the run identifier.
func (r *Run) ID() uuid.UUID {
	return r.id
}

// Commit records the final totals and commits the run.
func (r *Run) Commit(ctx context.Context, reorgs, validators int) error {
	_, err := r.tx.Exec(ctx, `
		UPDATE reorg_runs
		SET reorgs = $2, validators = $3, updated_at = now()
		WHERE run_id = $1
	`, r.id, reorgs, validators)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if err := r.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// Rollback discards the run. After Commit it does nothing.
func (r *Run) Rollback(ctx context.Context) {
	_ = r.tx.Rollback(ctx)
}

// PutResults inserts attribution results, numbering them in arrival order.
func (r *Run) PutResults(ctx context.Context, results []model.AttributionResult) error {
	for start := 0; start < len(results); start += r.batchSize {
		end := min(start+r.batchSize, len(results))

		batch := &pgx.Batch{}
		for _, res := range results[start:end] {
			number, err := toBigint("reorg number", res.Reorg.Number)
			if err != nil {
				return err
			}
			dropCount, err := toBigint("drop count", res.Reorg.DropCount)
			if err != nil {
				return err
			}
			addCount, err := toBigint("add count", res.Reorg.AddCount)
			if err != nil {
				return err
			}

			r.seq++
			batch.Queue(`
				INSERT INTO reorg_attributions (
					run_id, seq, reorg_number, reorg_hash, drop_count, add_count,
					dropped_hash, dropped_miner, added_hash, added_miner, responsible_validator
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
				ON CONFLICT (run_id, seq) DO NOTHING
			`,
				r.id,
				r.seq,
				number,
				res.Reorg.Hash,
				dropCount,
				addCount,
				res.DroppedHash(),
				res.DroppedMiner,
				res.AddedHash(),
				res.AddedMiner,
				res.ResponsibleValidator,
			)
		}

		if err := r.sendBatch(ctx, batch); err != nil {
			return fmt.Errorf("insert attributions: %w", err)
		}
	}
	return nil
}

// PutSummaries upserts validator summaries. rank follows slice order.
func (r *Run) PutSummaries(ctx context.Context, summaries []model.ValidatorSummary) error {
	for start := 0; start < len(summaries); start += r.batchSize {
		end := min(start+r.batchSize, len(summaries))

		batch := &pgx.Batch{}
		for i, sum := range summaries[start:end] {
			blocks := make([]int64, 0, len(sum.BlockNumbers))
			for _, n := range sum.BlockNumbers {
				v, err := toBigint("block number", n)
				if err != nil {
					return err
				}
				blocks = append(blocks, v)
			}
			batch.Queue(`
				INSERT INTO validator_reorgs (run_id, rank, validator, reorg_count, block_numbers)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (run_id, validator)
				DO UPDATE SET
					rank = EXCLUDED.rank,
					reorg_count = EXCLUDED.reorg_count,
					block_numbers = EXCLUDED.block_numbers
			`,
				r.id,
				start+i+1,
				sum.Validator,
				sum.Count,
				blocks,
			)
		}

		if err := r.sendBatch(ctx, batch); err != nil {
			return fmt.Errorf("upsert summaries: %w", err)
		}
	}
	return nil
}

func (r *Run) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	br := r.tx.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func toBigint(field string, v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%s %d: %w", field, v, ErrOutOfRange)
	}
	return int64(v), nil
}
