package http

import (
	"errors"
	"fmt"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/generated/servers"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// StatusFor maps an application error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, job.ErrIllegalTransition),
		errors.Is(err, errs.ErrConcurrentModification),
		errors.Is(err, courier.ErrCourierIsBusy),
		errors.Is(err, courier.ErrCourierIsOffline),
		errors.Is(err, courier.ErrCourierIsNotApproved),
		errors.Is(err, job.ErrSecurityCodeAlreadyIssued):
		return http.StatusConflict
	case errors.Is(err, job.ErrSecurityCodeMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, commands.ErrSecurityCodesExhausted):
		return http.StatusServiceUnavailable
	case errors.Is(err, job.ErrMissingRequiredOption),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, commands.ErrGeocoderUnavailable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx echo.Context, err error) error {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		ctx.Logger().Error(err)
		message = http.StatusText(status)
	}
	return ctx.JSON(status, servers.Error{Code: status, Message: message})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, servers.Error{Code: http.StatusBadRequest, Message: message})
}

// ErrorHandler renders errors escaping the handlers, including echo's own
// routing errors, with the API error body.
func ErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = fmt.Sprint(he.Message)
	} else {
		ctx.Logger().Error(err)
	}

	if ctx.Request().Method == http.MethodHead {
		err = ctx.NoContent(status)
	} else {
		err = ctx.JSON(status, servers.Error{Code: status, Message: message})
	}
	if err != nil {
		ctx.Logger().Error(err)
	}
}
