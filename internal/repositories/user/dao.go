package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/kirill-oleynik/signup-service/pkg/database"
	"github.com/kirill-oleynik/signup-service/pkg/models"
)

type UserRow struct {
	ID           sql.NullString `db:"id"`
	FirstName    sql.NullString `db:"first_name"`
	LastName     sql.NullString `db:"last_name"`
	Email        sql.NullString `db:"email"`
	PasswordHash sql.NullString `db:"password_hash"`
	CreatedTS    sql.NullTime   `db:"created_at"`
	UpdatedTS    sql.NullTime   `db:"updated_at"`
}

const (
	userTable = "users"

	// Name of the unique index guarding email, used to recognize conflicts.
	emailUniqueConstraint = "users_email_key"
)

var userStruct = database.NewStruct(new(UserRow))

func FromUser(user models.User) *UserRow {
	return &UserRow{
		ID:           sql.NullString{String: user.ID.String(), Valid: user.ID != uuid.Nil},
		FirstName:    sql.NullString{String: user.FirstName, Valid: user.FirstName != ""},
		LastName:     sql.NullString{String: user.LastName, Valid: user.LastName != ""},
		Email:        sql.NullString{String: user.Email, Valid: user.Email != ""},
		PasswordHash: sql.NullString{String: user.PasswordHash, Valid: user.PasswordHash != ""},
		CreatedTS:    sql.NullTime{Time: user.CreatedTS, Valid: user.CreatedTS != time.Time{}},
		UpdatedTS:    sql.NullTime{Time: user.UpdatedTS, Valid: user.UpdatedTS != time.Time{}},
	}
}

func ToUser(row *UserRow) models.User {
	id, _ := uuid.Parse(row.ID.String)
	return models.User{
		ID:           id,
		FirstName:    row.FirstName.String,
		LastName:     row.LastName.String,
		Email:        row.Email.String,
		PasswordHash: row.PasswordHash.String,
		CreatedTS:    row.CreatedTS.Time,
		UpdatedTS:    row.UpdatedTS.Time,
	}
}
