package userrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emmanueldavidson96/altbucks-server/model"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	// Create inserts the user and an empty wallet in one transaction.
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type repo struct{ pool *pgxpool.Pool }

func New(pool *pgxpool.Pool) Repo { return &repo{pool} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO users (first_name, last_name, email, password_hash, is_task_creator, is_task_earner)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at`
	if err := tx.QueryRow(ctx, q,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.IsTaskCreator, u.IsTaskEarner,
	).Scan(&u.ID, &u.CreatedAt); err != nil {
		return err
	}

	const qw = `INSERT INTO wallets (user_id) VALUES ($1)`
	if _, err := tx.Exec(ctx, qw, u.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.one(ctx, `
SELECT id, first_name, last_name, email, password_hash, is_task_creator, is_task_earner, created_at
FROM users WHERE email=$1`, email)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return r.one(ctx, `
SELECT id, first_name, last_name, email, password_hash, is_task_creator, is_task_earner, created_at
FROM users WHERE id=$1`, id)
}

func (r *repo) one(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, q, arg).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.IsTaskCreator, &u.IsTaskEarner, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
