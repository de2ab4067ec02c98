package signup

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kirill-oleynik/signup-service/internal/repositories/user"
	"github.com/kirill-oleynik/signup-service/pkg/hash"
	"github.com/kirill-oleynik/signup-service/pkg/kafka"
	"github.com/kirill-oleynik/signup-service/pkg/models"
	"github.com/kirill-oleynik/signup-service/pkg/outcome"
)

type memoryUserRepository struct {
	createCalls int
	byEmail     map[string]models.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{byEmail: map[string]models.User{}}
}

func (r *memoryUserRepository) Create(ctx context.Context, u models.User) (outcome.Outcome[models.User], error) {
	r.createCalls++
	if _, taken := r.byEmail[u.Email]; taken {
		return outcome.Failure[models.User](outcome.TagInvalid, outcome.FieldErrors{
			"email": {user.ErrEmailTakenMessage},
		}), nil
	}
	r.byEmail[u.Email] = u
	return outcome.Success(u), nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, errors.New("user not found")
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return models.User{}, errors.New("user not found")
	}
	return u, nil
}

type countingHasher struct {
	calls  int
	hasher hash.Hasher
}

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.calls++
	return h.hasher.Hash(plaintext)
}

type capturingPublisher struct {
	messages []*kafka.UserRegisteredMessage
}

func (p *capturingPublisher) PublishUserRegistered(ctx context.Context, msg *kafka.UserRegisteredMessage) error {
	p.messages = append(p.messages, msg)
	return nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func validRequest() models.SignUpRequest {
	return models.SignUpRequest{
		FirstName:            "A",
		LastName:             "B",
		Email:                "a@b.com",
		Password:             "secret",
		PasswordConfirmation: "secret",
	}
}

func TestSignUpHappyPath(t *testing.T) {
	repo := newMemoryUserRepository()
	hasher := &countingHasher{hasher: hash.NewBcryptHasher(bcrypt.MinCost)}
	publisher := &capturingPublisher{}
	service := NewService(repo, hasher, publisher, testLogger())

	result, err := service.SignUp(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	created := result.Value()
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "a@b.com", created.Email)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "secret", created.PasswordHash)

	assert.Equal(t, 1, hasher.calls)
	assert.Equal(t, 1, repo.createCalls)

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, kafka.EventUserRegistered, publisher.messages[0].Event)
	assert.Equal(t, created.ID, publisher.messages[0].UserID)
}

func TestSignUpMissingEmailHaltsBeforeHashAndPersist(t *testing.T) {
	repo := newMemoryUserRepository()
	hasher := &countingHasher{hasher: hash.NewBcryptHasher(bcrypt.MinCost)}
	publisher := &capturingPublisher{}
	service := NewService(repo, hasher, publisher, testLogger())

	req := validRequest()
	req.Email = ""

	result, err := service.SignUp(context.Background(), req)
	require.NoError(t, err)
	require.True(t, result.IsFailure())

	assert.Equal(t, outcome.TagInvalid, result.FailureTag())
	fieldErrors, ok := result.FieldErrors()
	require.True(t, ok)
	assert.NotEmpty(t, fieldErrors["email"])

	assert.Equal(t, 0, hasher.calls, "hash step must not run after a validation failure")
	assert.Equal(t, 0, repo.createCalls, "persist step must not run after a validation failure")
	assert.Empty(t, publisher.messages)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	repo := newMemoryUserRepository()
	hasher := &countingHasher{hasher: hash.NewBcryptHasher(bcrypt.MinCost)}
	publisher := &capturingPublisher{}
	service := NewService(repo, hasher, publisher, testLogger())

	first, err := service.SignUp(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, first.IsSuccess())

	second, err := service.SignUp(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, second.IsFailure())

	assert.Equal(t, outcome.TagInvalid, second.FailureTag())
	fieldErrors, ok := second.FieldErrors()
	require.True(t, ok)
	assert.Equal(t, []string{user.ErrEmailTakenMessage}, fieldErrors["email"])

	// The conflicting record must not replace the original.
	assert.Len(t, repo.byEmail, 1)
	assert.Len(t, publisher.messages, 1)
}

func TestSignUpWithoutPublisher(t *testing.T) {
	repo := newMemoryUserRepository()
	service := NewService(repo, hash.NewBcryptHasher(bcrypt.MinCost), nil, testLogger())

	result, err := service.SignUp(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
}
