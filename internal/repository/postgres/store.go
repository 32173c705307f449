package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/product_catalog/internal/domain"
)

// Store implements domain.Store over a PostgreSQL connection pool.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a PostgreSQL-backed store.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Products returns a repository for reads outside any unit of work.
func (s *Store) Products() domain.ProductRepository {
	return NewProductRepository(s.db)
}

// Begin opens a transactional unit of work.
func (s *Store) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &unitOfWork{
		tx:   tx,
		repo: &ProductRepository{ext: tx, affected: new(int64)},
	}, nil
}

// unitOfWork scopes repository mutations to one transaction.
type unitOfWork struct {
	tx   *sqlx.Tx
	repo *ProductRepository
}

func (u *unitOfWork) Products() domain.ProductRepository {
	return u.repo
}

// Commit commits the transaction and reports whether any change was persisted.
func (u *unitOfWork) Commit(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if err := u.tx.Commit(); err != nil {
		return false, err
	}

	return *u.repo.affected > 0, nil
}

// Rollback discards uncommitted changes; a no-op after Commit.
func (u *unitOfWork) Rollback() error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
