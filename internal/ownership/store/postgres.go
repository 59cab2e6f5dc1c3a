package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	alloc "mintgate/internal/allocation/models"
	"mintgate/internal/ownership/ports"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/events"
)

// PostgresRegistry persists token possession in the tokens table.
type PostgresRegistry struct {
	db     *sql.DB
	gate   ports.TransferGate
	logger *slog.Logger
	sink   events.Sink
}

type PostgresOption func(*PostgresRegistry)

func WithPostgresLogger(logger *slog.Logger) PostgresOption {
	return func(r *PostgresRegistry) { r.logger = logger }
}

func WithPostgresEventSink(sink events.Sink) PostgresOption {
	return func(r *PostgresRegistry) { r.sink = sink }
}

func NewPostgres(db *sql.DB, gate ports.TransferGate, opts ...PostgresOption) (*PostgresRegistry, error) {
	if gate == nil {
		return nil, fmt.Errorf("transfer gate is required")
	}
	r := &PostgresRegistry{db: db, gate: gate}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *PostgresRegistry) Assign(ctx context.Context, id domain.TokenID, owner domain.Address, handle string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (id, owner, handle, minted_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)`,
		int64(id), owner.String(), handle, now,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ports.ErrAlreadyAssigned
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) OwnerOf(ctx context.Context, id domain.TokenID) (domain.Address, error) {
	var owner string
	err := r.db.QueryRowContext(ctx,
		`SELECT owner FROM tokens WHERE id = $1`, int64(id),
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ports.ErrNotAssigned
	}
	if err != nil {
		return "", fmt.Errorf("select owner: %w", err)
	}
	return domain.Address(owner), nil
}

func (r *PostgresRegistry) BalanceOf(ctx context.Context, address domain.Address) (uint64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tokens WHERE owner = $1`, address.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return uint64(n), nil
}

func (r *PostgresRegistry) IsAssigned(ctx context.Context, id domain.TokenID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tokens WHERE id = $1)`, int64(id),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return exists, nil
}

func (r *PostgresRegistry) Transfer(ctx context.Context, id domain.TokenID, from, to domain.Address) error {
	if !r.gate.TransfersAllowed() {
		return alloc.ErrTransfersNotAllowed
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var owner string
	err = tx.QueryRowContext(ctx,
		`SELECT owner FROM tokens WHERE id = $1 FOR UPDATE`, int64(id),
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotAssigned
	}
	if err != nil {
		return fmt.Errorf("select owner: %w", err)
	}
	if domain.Address(owner) != from {
		return ports.ErrNotTokenOwner
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE tokens SET owner = $2, updated_at = $3 WHERE id = $1`,
		int64(id), to.String(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update owner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	events.Emit(ctx, r.logger, r.sink, events.New(events.Transfer,
		fmt.Sprintf("token %d transferred from %s to %s", id, from, to), to, id))
	return nil
}

func (r *PostgresRegistry) SetHandle(ctx context.Context, id domain.TokenID, caller domain.Address, handle string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var owner string
	err = tx.QueryRowContext(ctx,
		`SELECT owner FROM tokens WHERE id = $1 FOR UPDATE`, int64(id),
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotAssigned
	}
	if err != nil {
		return fmt.Errorf("select owner: %w", err)
	}
	if domain.Address(owner) != caller {
		return ports.ErrNotTokenOwner
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE tokens SET handle = $2, updated_at = $3 WHERE id = $1`,
		int64(id), handle, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update handle: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	events.Emit(ctx, r.logger, r.sink, events.New(events.UpdatedURI,
		fmt.Sprintf("token %d content handle updated", id), caller, id))
	return nil
}

func (r *PostgresRegistry) Handle(ctx context.Context, id domain.TokenID) (string, error) {
	var handle string
	err := r.db.QueryRowContext(ctx,
		`SELECT handle FROM tokens WHERE id = $1`, int64(id),
	).Scan(&handle)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ports.ErrNotAssigned
	}
	if err != nil {
		return "", fmt.Errorf("select handle: %w", err)
	}
	return handle, nil
}
