package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kirill-oleynik/signup-service/pkg/database"
	"github.com/kirill-oleynik/signup-service/pkg/models"
	"github.com/kirill-oleynik/signup-service/pkg/outcome"
	"github.com/kirill-oleynik/signup-service/pkg/tracing"
)

const pqUniqueViolation = pq.ErrorCode("23505")

// ErrEmailTakenMessage is the per-field message rendered when the email
// unique constraint rejects an insert.
const ErrEmailTakenMessage = "has already been taken"

// UserRepository persists user records. Create reports anticipated domain
// conflicts (duplicate email) as a failure outcome; only unexpected storage
// faults surface as errors.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (outcome.Outcome[models.User], error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new user repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Create(ctx context.Context, user models.User) (outcome.Outcome[models.User], error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.Create")
	defer span.End()

	now := time.Now().UTC()
	user.CreatedTS = now
	user.UpdatedTS = now

	row := FromUser(user)
	ib := userStruct.InsertInto(userTable, row)
	sql, args := ib.Build()

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return outcome.Outcome[models.User]{}, err
	}
	// Rollback with the outer context so the defer actually rolls back when
	// Create owns the transaction; it is a no-op once Commit has run.
	defer tx.Rollback(ctx)

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":    user.ID,
		"email": user.Email,
	}).Info("Creating user")

	_, err = tx.ExecContext(txCtx, sql, args...)
	if err != nil {
		// A duplicate email is an anticipated domain failure: translate it
		// instead of letting the storage fault escape.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && pqErr.Constraint == emailUniqueConstraint {
			r.logger.WithContext(ctx).WithFields(map[string]any{
				"email": user.Email,
			}).Warn("Email already taken")
			return outcome.Failure[models.User](outcome.TagInvalid, outcome.FieldErrors{
				"email": {ErrEmailTakenMessage},
			}), nil
		}

		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":    user.ID,
			"email": user.Email,
		}).Error("error creating user")
		return outcome.Outcome[models.User]{}, httperror.NewHTTPError(http.StatusInternalServerError, "error creating user")
	}

	err = tx.Commit(txCtx)
	if err != nil {
		return outcome.Outcome[models.User]{}, err
	}

	return outcome.Success(user), nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.GetByID")
	defer span.End()

	sb := userStruct.SelectFrom(userTable)
	sb.Where(sb.Equal("id", id.String()))
	sb.Limit(1)

	sql, args := sb.Build()

	var row UserRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			r.logger.WithContext(ctx).WithFields(map[string]any{
				"id": id,
			}).Warn("User not found")
			return models.User{}, httperror.NewHTTPError(http.StatusNotFound, "user not found")
		}

		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id": id,
		}).Error("error getting user")
		return models.User{}, httperror.NewHTTPError(http.StatusInternalServerError, "error getting user")
	}

	return ToUser(&row), nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.GetByEmail")
	defer span.End()

	sb := userStruct.SelectFrom(userTable)
	sb.Where(sb.Equal("email", email))
	sb.Limit(1)

	sql, args := sb.Build()

	var row UserRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return models.User{}, httperror.NewHTTPError(http.StatusNotFound, "user not found")
		}

		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"email": email,
		}).Error("error getting user by email")
		return models.User{}, httperror.NewHTTPError(http.StatusInternalServerError, "error getting user by email")
	}

	return ToUser(&row), nil
}
