package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// User maps to the users table. PasswordHash is hidden from JSON responses.
type User struct {
	ID            string    `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password"`
	FreezeCredits int       `json:"freeze_credits" db:"freeze_credits"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

const userColumns = "id, username, email, password, freeze_credits, created_at"

// Users holds the account queries. Authentication itself happens at the
// HTTP layer; the nutrition core only ever sees the user id.
type Users struct{ c conn }

func (u Users) ByUsername(ctx context.Context, username string) (User, error) {
	return queryOne[User](ctx, u.c, "users.by_username",
		"SELECT "+userColumns+" FROM users WHERE username = @username",
		pgx.NamedArgs{"username": username})
}

func (u Users) ByID(ctx context.Context, id string) (User, error) {
	return queryOne[User](ctx, u.c, "users.by_id",
		"SELECT "+userColumns+" FROM users WHERE id = @id",
		pgx.NamedArgs{"id": id})
}

// Create inserts a user. A taken username or email surfaces as
// nutrition.ErrConflict.
func (u Users) Create(ctx context.Context, usr User) (User, error) {
	return queryOne[User](ctx, u.c, "users.create",
		`INSERT INTO users (id, username, email, password, freeze_credits, created_at)
		 VALUES (@id, @username, @email, @password, @freezeCredits, @createdAt)
		 RETURNING `+userColumns,
		pgx.NamedArgs{
			"id": usr.ID, "username": usr.Username, "email": usr.Email,
			"password": usr.PasswordHash, "freezeCredits": usr.FreezeCredits,
			"createdAt": usr.CreatedAt,
		})
}
