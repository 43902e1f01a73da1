package validate

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/docstore"
)

// ErrBadRequest matches every error built by BadRequest.
var ErrBadRequest = errors.New("bad request")

type inputError struct{ msg string }

func (e *inputError) Error() string        { return e.msg }
func (e *inputError) Is(target error) bool { return target == ErrBadRequest }

// BadRequest returns an input error that is not tied to a single field. Its
// message is sent to the client verbatim.
func BadRequest(msg string) error {
	return &inputError{msg: msg}
}

// HTTPError converts a service error into an echo error carrying an
// {"error": ...} body. Validation failures and BadRequest errors become 400,
// ErrNotFound becomes 404 naming the resource, anything else is a 500 whose
// cause stays internal.
func HTTPError(err error, resource string) *echo.HTTPError {
	var (
		verr *Errors
		ierr *inputError
	)
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, Body(verr.Fields))
	case errors.Is(err, docstore.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, Body(resource+" not found"))
	case errors.As(err, &ierr):
		return echo.NewHTTPError(http.StatusBadRequest, Body(ierr.msg))
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, Body("internal server error")).SetInternal(err)
	}
}

// Body wraps v as {"error": v}.
func Body(v any) map[string]any {
	return map[string]any{"error": v}
}

// ParamID parses the named path parameter as a document id.
func ParamID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, Body("invalid "+name))
	}
	return id, nil
}
