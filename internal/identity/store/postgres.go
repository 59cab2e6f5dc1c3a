package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"mintgate/internal/identity/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
	txcontext "mintgate/pkg/platform/tx"
)

// PostgresStore persists participants in the participants table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) querier(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Participant) error {
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO participants (address, role, global_limit, verified, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.Address.String(), p.Role.String(), int64(p.GlobalLimit), p.Verified, p.RegisteredAt, p.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, address domain.Address) (*models.Participant, error) {
	row := s.querier(ctx).QueryRowContext(ctx, `
		SELECT address, role, global_limit, verified, registered_at, updated_at
		FROM participants WHERE address = $1`,
		address.String(),
	)
	return scanParticipant(row)
}

// Execute runs validate-then-mutate inside one transaction with the row locked
// FOR UPDATE, mirroring the in-memory store's atomicity.
func (s *PostgresStore) Execute(
	ctx context.Context,
	address domain.Address,
	validate func(*models.Participant) error,
	apply func(*models.Participant),
) (*models.Participant, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT address, role, global_limit, verified, registered_at, updated_at
		FROM participants WHERE address = $1 FOR UPDATE`,
		address.String(),
	)
	p, err := scanParticipant(row)
	if err != nil {
		return nil, err
	}

	if err := validate(p); err != nil {
		return nil, err
	}
	apply(p)

	_, err = tx.ExecContext(ctx, `
		UPDATE participants SET global_limit = $2, verified = $3, updated_at = $4
		WHERE address = $1`,
		p.Address.String(), int64(p.GlobalLimit), p.Verified, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update participant: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Participant, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT address, role, global_limit, verified, registered_at, updated_at
		FROM participants ORDER BY registered_at`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanParticipant(row scannable) (*models.Participant, error) {
	var (
		p           models.Participant
		address     string
		role        string
		globalLimit int64
	)
	err := row.Scan(&address, &role, &globalLimit, &p.Verified, &p.RegisteredAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan participant: %w", err)
	}
	p.Address = domain.Address(address)
	p.Role = domain.Role(role)
	p.GlobalLimit = uint64(globalLimit)
	return &p, nil
}
