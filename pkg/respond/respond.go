package respond

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kirill-oleynik/signup-service/pkg/outcome"
)

// DataResponse is the success envelope: the entity under a data root key.
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorsResponse is the failure envelope: field name to message list.
type ErrorsResponse struct {
	Errors outcome.FieldErrors `json:"errors"`
}

func OK(c echo.Context, value any) error {
	return c.JSON(http.StatusOK, DataResponse{Data: value})
}

func Created(c echo.Context, value any) error {
	return c.JSON(http.StatusCreated, DataResponse{Data: value})
}

// UnprocessableEntity renders a 422 with the failure detail. Detail that is
// not a field error map is wrapped under a base key so the envelope shape
// stays stable.
func UnprocessableEntity(c echo.Context, detail any) error {
	fieldErrors, ok := detail.(outcome.FieldErrors)
	if !ok {
		fieldErrors = outcome.FieldErrors{"base": {"is invalid"}}
	}
	return c.JSON(http.StatusUnprocessableEntity, ErrorsResponse{Errors: fieldErrors})
}
