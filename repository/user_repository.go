package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"masta/model"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByID(id int64) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	UpdatePreferences(userID int64, preferences string) error
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	DB *sql.DB
}

// NewMySQLUserRepository creates a new instance of mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{DB: db}
}

// CreateUser adds a new user to the database.
func (r *mysqlUserRepository) CreateUser(user *model.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, preferences, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	res, err := r.DB.Exec(query, user.Username, user.Email, user.PasswordHash, user.Preferences, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to execute CreateUser: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateUser: %w", err)
	}
	return id, nil
}

func (r *mysqlUserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var preferences sql.NullString
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&preferences, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if preferences.Valid {
		user.Preferences = preferences.String
	}
	return user, nil
}

const userColumns = `id, username, email, password_hash, preferences, created_at, updated_at`

// GetUserByID retrieves a user by ID.
func (r *mysqlUserRepository) GetUserByID(id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(r.DB.QueryRow(query, id))
}

// GetUserByUsername retrieves a user by username.
func (r *mysqlUserRepository) GetUserByUsername(username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return r.scanUser(r.DB.QueryRow(query, username))
}

// GetUserByEmail retrieves a user by email.
func (r *mysqlUserRepository) GetUserByEmail(email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanUser(r.DB.QueryRow(query, email))
}

// UpdatePreferences replaces the user's preferences blob.
func (r *mysqlUserRepository) UpdatePreferences(userID int64, preferences string) error {
	query := `UPDATE users SET preferences = ?, updated_at = ? WHERE id = ?`
	if _, err := r.DB.Exec(query, preferences, time.Now(), userID); err != nil {
		return fmt.Errorf("failed to update preferences for user %d: %w", userID, err)
	}
	return nil
}
