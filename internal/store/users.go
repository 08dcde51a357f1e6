package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardhaus/cardhaus/internal/model"
)

// CreateUser creates a new user with optional store attachments.
func CreateUser(ctx context.Context, db *sql.DB, username, passwordHash, role string, storeIDs []string) (*model.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username required", ErrInvalidInput)
	}
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	id := uuid.NewString()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role) VALUES (?, ?, ?, ?)`,
		id, username, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	for _, storeID := range storeIDs {
		if _, err := getActiveStore(ctx, tx, storeID); err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_stores (user_id, store_id) VALUES (?, ?)`,
			id, storeID,
		)
		if err != nil {
			return nil, fmt.Errorf("attaching user to store: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing user creation: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, with store attachments loaded.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at, deleted_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	if err := loadUserStores(ctx, db, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByUsername returns a user by username (including soft-deleted for
// auth checks), with store attachments loaded.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at, deleted_at
		 FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}

	if err := loadUserStores(ctx, db, u); err != nil {
		return nil, err
	}
	return u, nil
}

func loadUserStores(ctx context.Context, db *sql.DB, u *model.User) error {
	rows, err := db.QueryContext(ctx,
		`SELECT store_id FROM user_stores WHERE user_id = ? ORDER BY store_id`, u.ID,
	)
	if err != nil {
		return fmt.Errorf("loading user stores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var storeID string
		if err := rows.Scan(&storeID); err != nil {
			return fmt.Errorf("scanning user store: %w", err)
		}
		u.StoreIDs = append(u.StoreIDs, storeID)
	}
	return rows.Err()
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, username, password_hash, role, created_at, deleted_at
		 FROM users WHERE deleted_at IS NULL ORDER BY username`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		if err := loadUserStores(ctx, db, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// UpdateUser updates a user's role and store attachments.
func UpdateUser(ctx context.Context, db *sql.DB, id, role string, storeIDs []string) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	u, err := GetUser(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if u.DeletedAt != nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_stores WHERE user_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clearing user stores: %w", err)
	}
	for _, storeID := range storeIDs {
		if _, err := getActiveStore(ctx, tx, storeID); err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_stores (user_id, store_id) VALUES (?, ?)`, id, storeID,
		)
		if err != nil {
			return nil, fmt.Errorf("attaching user to store: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing user update: %w", err)
	}

	return GetUser(ctx, db, id)
}

// SetUserPassword replaces a user's password hash.
func SetUserPassword(ctx context.Context, db *sql.DB, id, passwordHash string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("setting user password: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteUser soft-deletes a user.
func DeleteUser(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}
