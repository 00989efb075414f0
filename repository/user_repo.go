package repository

import (
	"database/sql"

	"github.com/prepforge/prepforge_backend/models"
)

// UserRepository handles the user rows the quota ledger and auth layer read.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(name, email, hashedPassword string) (int, error) {
	var id int
	err := r.db.QueryRow(`
		INSERT INTO users (name, email, password) VALUES ($1, $2, $3)
		RETURNING id
	`, name, email, hashedPassword).Scan(&id)
	return id, err
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.scanUser(r.db.QueryRow(`
		SELECT id, name, email, password, role, subscription_tier, daily_quota_used,
		       last_quota_reset, password_changed_at, created_at, updated_at
		FROM users WHERE email = $1 AND deleted = false
	`, email))
}

func (r *UserRepository) GetByID(id int) (*models.User, error) {
	return r.scanUser(r.db.QueryRow(`
		SELECT id, name, email, password, role, subscription_tier, daily_quota_used,
		       last_quota_reset, password_changed_at, created_at, updated_at
		FROM users WHERE id = $1 AND deleted = false
	`, id))
}

// List returns users for the admin screen, newest first.
func (r *UserRepository) List(limit, offset int) ([]models.User, error) {
	rows, err := r.db.Query(`
		SELECT id, name, email, password, role, subscription_tier, daily_quota_used,
		       last_quota_reset, password_changed_at, created_at, updated_at
		FROM users WHERE deleted = false
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := r.scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateTier sets the user's subscription tier. Returns sql.ErrNoRows for an
// unknown user.
func (r *UserRepository) UpdateTier(userID int, tier string) error {
	res, err := r.db.Exec(`
		UPDATE users SET subscription_tier = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted = false
	`, userID, tier)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateRole sets the user's role. Returns sql.ErrNoRows for an unknown user.
func (r *UserRepository) UpdateRole(userID int, role string) error {
	res, err := r.db.Exec(`
		UPDATE users SET role = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted = false
	`, userID, role)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var lastReset sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.SubscriptionTier,
		&u.DailyQuotaUsed, &lastReset, &u.PasswordChangedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastReset.Valid {
		t := lastReset.Time
		u.LastQuotaReset = &t
	}
	return &u, nil
}

func (r *UserRepository) scanUserRows(rows *sql.Rows) (*models.User, error) {
	var u models.User
	var lastReset sql.NullTime
	err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.SubscriptionTier,
		&u.DailyQuotaUsed, &lastReset, &u.PasswordChangedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastReset.Valid {
		t := lastReset.Time
		u.LastQuotaReset = &t
	}
	return &u, nil
}
