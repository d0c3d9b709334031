package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/justloook-provider-portal/internal/model"
	"github.com/iliyamo/justloook-provider-portal/internal/utils"
)

var errEmailExists = errors.New("email already exists")

// userRepo reads and writes the users and password_resets tables.
type userRepo struct{ db *sql.DB }

// create inserts a user and returns the stored row.
func (r *userRepo) create(ctx context.Context, uid, email, password string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO users (uid, email, password_hash) VALUES (?,?,?)",
		uid, email, hash)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, errEmailExists
		}
		return model.User{}, wrap("insert user", err)
	}
	return model.User{UID: uid, Email: email, PasswordHash: hash}, nil
}

// byEmail fetches a user by normalized email; sql.ErrNoRows when absent.
func (r *userRepo) byEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT uid,email,password_hash,display_name,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.UID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *userRepo) setDisplayName(ctx context.Context, uid, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET display_name=? WHERE uid=?", name, uid)
	if err != nil {
		return false, wrap("update display name", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// MySQL reports 0 affected rows when the value is unchanged, so a
	// miss is confirmed with a lookup.
	if n > 0 {
		return true, nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE uid=?", uid).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// storeReset keeps only the hash of a reset token.
func (r *userRepo) storeReset(ctx context.Context, uid, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO password_resets (token_hash, uid, expires_at) VALUES (?,?,?)",
		tokenHash, uid, exp)
	return wrap("insert password reset", err)
}
