package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Vadied/party-manager/internal/models"
)

// ErrUserExists is returned when an email is already registered.
var ErrUserExists = errors.New("user already exists")

const userColumns = "id, name, email, password_hash, provisioned, created_at"

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser hashes the password and inserts a new self-registered user.
// The UNIQUE constraint on email decides between concurrent registrations.
func CreateUser(ctx context.Context, db *sql.DB, name, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	res, err := db.ExecContext(ctx,
		"INSERT INTO users(name, email, password_hash, provisioned, created_at) VALUES(?, ?, ?, 0, ?)",
		strings.TrimSpace(name), NormalizeEmail(email), string(hashedPassword), formatTime(time.Now()))
	if isUniqueViolation(err) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return GetUserByID(ctx, db, id)
}

// ProvisionUser creates or overwrites an operator-managed account from an
// existing bcrypt hash. An account already registered under email is taken
// over: its password is replaced and it becomes provisioned.
func ProvisionUser(ctx context.Context, db *sql.DB, name, email, passwordHash string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("provision user: empty email")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("provision user %s: %w", email, err)
	}
	if name = strings.TrimSpace(name); name == "" {
		name = email
	}

	_, err := db.ExecContext(ctx, `INSERT INTO users(name, email, password_hash, provisioned, created_at)
		VALUES(?, ?, ?, 1, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			password_hash = excluded.password_hash,
			provisioned = 1`,
		name, email, passwordHash, formatTime(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("provision user %s: %w", email, err)
	}
	return GetUserByEmail(ctx, db, email)
}

// GetUserByEmail retrieves a user by email address. It returns sql.ErrNoRows
// when no user matches.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*models.User, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", NormalizeEmail(email))
	return scanUser(row)
}

// GetUserByID retrieves a user by id. It returns sql.ErrNoRows when no user matches.
func GetUserByID(ctx context.Context, db *sql.DB, id int64) (*models.User, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var createdAt string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Provisioned, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = t
	return user, nil
}

// VerifyPassword compares a stored hash with a plaintext password.
func VerifyPassword(hashedPassword string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
