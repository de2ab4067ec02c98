package signup

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/kirill-oleynik/signup-service/internal/repositories/user"
	"github.com/kirill-oleynik/signup-service/pkg/hash"
	"github.com/kirill-oleynik/signup-service/pkg/kafka"
	"github.com/kirill-oleynik/signup-service/pkg/models"
	"github.com/kirill-oleynik/signup-service/pkg/outcome"
	"github.com/kirill-oleynik/signup-service/pkg/pipeline"
	"github.com/kirill-oleynik/signup-service/pkg/tracing"
	"github.com/kirill-oleynik/signup-service/pkg/utils"
)

// EventPublisher publishes the post-sign-up event. Satisfied by
// *kafka.Producer.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, msg *kafka.UserRegisteredMessage) error
}

// Service runs the sign-up flow: validate the request, hash the password,
// persist the user, publish the registration event. All collaborators are
// injected at construction.
type Service struct {
	repo      user.UserRepository
	hasher    hash.Hasher
	publisher EventPublisher
	logger    ectologger.Logger
}

// NewService creates a new sign-up service. publisher may be nil when event
// publishing is disabled.
func NewService(repo user.UserRepository, hasher hash.Hasher, publisher EventPublisher, logger ectologger.Logger) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		publisher: publisher,
		logger:    logger,
	}
}

// SignUp executes the sign-up pipeline for req. Validation problems and
// duplicate emails come back as a failure outcome tagged 'invalid' carrying a
// field error map; anything else is a fault.
func (s *Service) SignUp(ctx context.Context, req models.SignUpRequest) (outcome.Outcome[models.User], error) {
	ctx, span := tracing.StartSpan(ctx, "SignupService.SignUp")
	defer span.End()

	pipe := pipeline.New("signup", s.logger,
		pipeline.Step{Name: "validate", Run: s.validateStep},
		pipeline.Step{Name: "hash", Run: s.hashStep},
		pipeline.Step{Name: "persist", Run: s.persistStep},
	)

	result, err := pipe.Run(ctx, req)
	if err != nil {
		return outcome.Outcome[models.User]{}, err
	}

	if result.IsFailure() {
		return outcome.Failure[models.User](result.FailureTag(), result.FailureDetail()), nil
	}

	created, ok := result.Value().(models.User)
	if !ok {
		return outcome.Outcome[models.User]{}, fmt.Errorf("signup pipeline produced %T, expected models.User", result.Value())
	}

	s.publishRegistered(ctx, created)

	return outcome.Success(created), nil
}

func (s *Service) validateStep(ctx context.Context, payload any) (outcome.Outcome[any], error) {
	req, ok := payload.(models.SignUpRequest)
	if !ok {
		return outcome.Outcome[any]{}, fmt.Errorf("validate step received %T, expected models.SignUpRequest", payload)
	}

	if fieldErrors := utils.ValidateFields(req); fieldErrors != nil {
		return outcome.Failure[any](outcome.TagInvalid, fieldErrors), nil
	}

	return outcome.Success[any](req), nil
}

func (s *Service) hashStep(ctx context.Context, payload any) (outcome.Outcome[any], error) {
	req, ok := payload.(models.SignUpRequest)
	if !ok {
		return outcome.Outcome[any]{}, fmt.Errorf("hash step received %T, expected models.SignUpRequest", payload)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		// Hashing has no domain failure path; an error here is fatal.
		return outcome.Outcome[any]{}, err
	}

	return outcome.Success[any](models.User{
		ID:           uuid.New(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}), nil
}

func (s *Service) persistStep(ctx context.Context, payload any) (outcome.Outcome[any], error) {
	u, ok := payload.(models.User)
	if !ok {
		return outcome.Outcome[any]{}, fmt.Errorf("persist step received %T, expected models.User", payload)
	}

	result, err := s.repo.Create(ctx, u)
	if err != nil {
		return outcome.Outcome[any]{}, err
	}

	if result.IsFailure() {
		return outcome.Failure[any](result.FailureTag(), result.FailureDetail()), nil
	}

	return outcome.Success[any](result.Value()), nil
}

// publishRegistered emits the user.registered event. Publishing is best
// effort: a broker problem must not fail a request that already created the
// user.
func (s *Service) publishRegistered(ctx context.Context, created models.User) {
	if s.publisher == nil {
		return
	}

	msg := kafka.NewUserRegisteredMessage(created)
	if err := s.publisher.PublishUserRegistered(ctx, msg); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": created.ID,
			"event":   msg.Event,
		}).Error("failed to publish user.registered event")
	}
}
