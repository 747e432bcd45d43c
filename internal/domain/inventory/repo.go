package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the durable, append-only journal of movements.
// The in-memory Ledger stays the source of truth while the process runs.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Append(ctx context.Context, tx Transaction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO movements (id, seq, created_at, type, product, qty, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, tx.ID, int64(tx.Seq), tx.At, string(tx.Kind), tx.Product, tx.Quantity, tx.Note)
	return err
}

// Load returns every journaled movement in sequence order.
func (r *Repo) Load(ctx context.Context) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, seq, created_at, type, product, qty, note
		FROM movements
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Transaction, error) {
		var (
			tx   Transaction
			id   uuid.UUID
			seq  int64
			kind string
		)
		if err := row.Scan(&id, &seq, &tx.At, &kind, &tx.Product, &tx.Quantity, &tx.Note); err != nil {
			return Transaction{}, err
		}
		tx.ID, tx.Seq, tx.Kind = id, uint64(seq), Kind(kind)
		return tx, nil
	})
}
