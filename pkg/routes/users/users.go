package users

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kirill-oleynik/signup-service/internal/repositories/user"
	"github.com/kirill-oleynik/signup-service/internal/services/signup"
	"github.com/kirill-oleynik/signup-service/pkg/models"
	"github.com/kirill-oleynik/signup-service/pkg/outcome"
	"github.com/kirill-oleynik/signup-service/pkg/respond"
	"github.com/kirill-oleynik/signup-service/pkg/tracing"
	"github.com/kirill-oleynik/signup-service/pkg/utils"
)

// Handler serves the user endpoints.
type Handler struct {
	service *signup.Service
	repo    user.UserRepository
}

// NewHandler creates a new user handler
func NewHandler(service *signup.Service, repo user.UserRepository) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
	}
}

// RegisterRoutes registers user routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	users := g.Group("/users")
	users.POST("", h.SignUp)
	users.GET("/:id", h.GetByID)
}

// SignUp handles POST /users. A success renders 201 with the created user; a
// failure tagged 'invalid' renders 422 with per-field messages. Any other
// failure tag is a wiring bug and escapes to the error handler as a 500.
func (h *Handler) SignUp(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "users.SignUp")
	defer span.End()

	req, err := utils.BindRequest[models.SignUpRequest](c)
	if err != nil {
		return err
	}

	result, err := h.service.SignUp(ctx, req)
	if err != nil {
		return err
	}

	matcher := outcome.NewMatcher[models.User, error](func(created models.User) error {
		return respond.Created(c, created)
	}).OnFailure(func(_ outcome.Tag, detail any) error {
		return respond.UnprocessableEntity(c, detail)
	}, outcome.TagInvalid)

	rendered, err := matcher.Dispatch(result)
	if err != nil {
		return err
	}
	return rendered
}

// GetByID handles GET /users/:id
func (h *Handler) GetByID(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "users.GetByID")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	found, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return respond.OK(c, found)
}
