package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHTTPForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errTokenSigningFailed   = errors.New("failed to sign token")
)

func (s *server) httpErrorHandler(err error, c echo.Context) {
	var code int
	var message interface{}

	switch terr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if terr == middleware.ErrJWTMissing {
			code = http.StatusUnauthorized
			message = terr.Message
			break
		}
		if terr.Internal != nil {
			if herr, ok := terr.Internal.(*echo.HTTPError); ok {
				terr = herr
			}
		}
		code = terr.Code
		message = terr.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string)
		for _, vErr := range terr {
			fldErrs[vErr.Field()] = vErr.Translate(s.deps.Translator)
		}
		code = http.StatusBadRequest
		message = fldErrs
	case *core.ValidationError:
		if terr.Fields != nil {
			fldErrs := make(map[string]string)
			for _, fErr := range terr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			message = fldErrs
		} else {
			message = terr.Error()
		}
		code = http.StatusBadRequest
	case *core.NotFoundError:
		code = http.StatusNotFound
		message = terr.Error()
	case *core.ForbiddenError:
		code = http.StatusForbidden
		message = terr.Error()
	default: // any other error is a server error
		code = http.StatusInternalServerError
		message = http.StatusText(http.StatusInternalServerError)
		s.deps.Logger.Error(err.Error(), err)

		if core.IsShutdown(err) {
			s.shutdown <- shutdownSignal{}
		}
	}

	if c.Echo().Debug {
		message = err.Error()
	} else if m, ok := message.(string); ok {
		message = echo.Map{"error": m}
	}

	// Send response
	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead { // Issue #608
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, message)
		}
		if err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}

// shutdownSignal lets the error handler ask main to stop the server the same
// way an OS signal would.
type shutdownSignal struct{}

func (shutdownSignal) String() string { return "integrity shutdown" }
func (shutdownSignal) Signal()        {}
