// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package postgres implements account persistence on PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/gatewarden/gatewarden/internal/account"
)

// querier abstracts query execution so the repository works with
// *pgxpool.Pool, pgx.Tx, and pgxmock pools alike.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements account.Repository using PostgreSQL.
type Repository struct {
	pool querier
}

// NewRepository creates a new PostgreSQL account repository.
func NewRepository(pool querier) *Repository {
	return &Repository{pool: pool}
}

// Load retrieves an account by its case-insensitive name.
func (r *Repository) Load(ctx context.Context, name string) (*account.Account, error) {
	key := account.NormalizeKey(name)

	row := r.pool.QueryRow(ctx, `
		SELECT name, password_hash, last_ip, last_uuid, last_secret, last_skin_hash,
		       register_time, last_login, options
		FROM accounts
		WHERE name = $1
	`, key)

	var acct account.Account
	var optionsJSON []byte
	err := row.Scan(
		&acct.Name,
		&acct.PasswordHash,
		&acct.LastIP,
		&acct.LastUUID,
		&acct.LastSecret,
		&acct.LastSkinHash,
		&acct.RegisterTime,
		&acct.LastLogin,
		&optionsJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("name", key).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_LOAD_FAILED").
			With("operation", "scan account row").
			With("name", key).
			Wrap(err)
	}

	if err := json.Unmarshal(optionsJSON, &acct.Options); err != nil {
		return nil, oops.Code("ACCOUNT_LOAD_FAILED").
			With("operation", "unmarshal options").
			With("name", key).
			Wrap(err)
	}

	return &acct, nil
}

// Save stores an account, creating or replacing it.
func (r *Repository) Save(ctx context.Context, acct *account.Account) error {
	key := account.NormalizeKey(acct.Name)

	optionsJSON, err := json.Marshal(acct.Options)
	if err != nil {
		return oops.Code("ACCOUNT_SAVE_FAILED").
			With("operation", "marshal options").
			With("name", key).
			Wrap(err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO accounts (
			name, password_hash, last_ip, last_uuid, last_secret, last_skin_hash,
			register_time, last_login, options
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			password_hash = $2, last_ip = $3, last_uuid = $4, last_secret = $5,
			last_skin_hash = $6, register_time = $7, last_login = $8, options = $9
	`,
		key,
		acct.PasswordHash,
		acct.LastIP,
		acct.LastUUID,
		acct.LastSecret,
		acct.LastSkinHash,
		acct.RegisterTime,
		acct.LastLogin,
		optionsJSON,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			// The upsert handles name conflicts; a unique violation here
			// means a constraint other than the primary key fired.
			return oops.Code("ACCOUNT_CONFLICT").
				With("name", key).
				With("constraint", pgErr.ConstraintName).
				Wrap(err)
		}
		return oops.Code("ACCOUNT_SAVE_FAILED").
			With("operation", "upsert account").
			With("name", key).
			Wrap(err)
	}
	return nil
}

// Delete removes an account.
func (r *Repository) Delete(ctx context.Context, name string) error {
	key := account.NormalizeKey(name)

	_, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE name = $1`, key)
	if err != nil {
		return oops.Code("ACCOUNT_DELETE_FAILED").
			With("operation", "delete account").
			With("name", key).
			Wrap(err)
	}
	return nil
}

var _ account.Repository = (*Repository)(nil)
