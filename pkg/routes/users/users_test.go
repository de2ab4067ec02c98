package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kirill-oleynik/signup-service/internal/repositories/user"
	"github.com/kirill-oleynik/signup-service/internal/services/signup"
	"github.com/kirill-oleynik/signup-service/pkg/hash"
	"github.com/kirill-oleynik/signup-service/pkg/middleware"
	"github.com/kirill-oleynik/signup-service/pkg/models"
	"github.com/kirill-oleynik/signup-service/pkg/outcome"
)

type memoryUserRepository struct {
	byEmail map[string]models.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{byEmail: map[string]models.User{}}
}

func (r *memoryUserRepository) Create(ctx context.Context, u models.User) (outcome.Outcome[models.User], error) {
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
	return models.User{}, httperror.NewHTTPError(http.StatusNotFound, "user not found")
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return models.User{}, httperror.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return u, nil
}

type testServer struct {
	t    *testing.T
	e    *echo.Echo
	repo *memoryUserRepository
}

func newTestServer(t *testing.T) *testServer {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	repo := newMemoryUserRepository()
	service := signup.NewService(repo, hash.NewBcryptHasher(bcrypt.MinCost), nil, logger)

	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logger)
	NewHandler(service, repo).RegisterRoutes(e.Group("/api/v1"))

	return &testServer{t: t, e: e, repo: repo}
}

func (s *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func signUpBody() map[string]any {
	return map[string]any{
		"first_name":            "A",
		"last_name":             "B",
		"email":                 "a@b.com",
		"password":              "secret",
		"password_confirmation": "secret",
	}
}

func TestSignUpEndpoint(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.request(http.MethodPost, "/api/v1/users", signUpBody())
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Equal(t, "a@b.com", resp.Data["email"])
		assert.NotEmpty(t, resp.Data["id"])
		assert.NotContains(t, resp.Data, "password_hash", "hash must never be serialized")
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		s := newTestServer(t)

		body := signUpBody()
		delete(body, "email")

		rec := s.request(http.MethodPost, "/api/v1/users", body)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Errors["email"])
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.request(http.MethodPost, "/api/v1/users", signUpBody())
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = s.request(http.MethodPost, "/api/v1/users", signUpBody())
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []string{user.ErrEmailTakenMessage}, resp.Errors["email"])

		assert.Len(t, s.repo.byEmail, 1, "no duplicate record may be created")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		s := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetUserEndpoint(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.request(http.MethodPost, "/api/v1/users", signUpBody())
		require.Equal(t, http.StatusCreated, rec.Code)

		var created struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

		rec = s.request(http.MethodGet, "/api/v1/users/"+created.Data.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, created.Data.ID, resp.Data["id"])
	})

	t.Run("NotFound", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.request(http.MethodGet, "/api/v1/users/"+uuid.New().String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.request(http.MethodGet, "/api/v1/users/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
