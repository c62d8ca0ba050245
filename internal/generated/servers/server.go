package servers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// List jobs that are not paid or cancelled
	// (GET /api/v1/jobs)
	ListActiveJobs(ctx echo.Context, params ListActiveJobsParams) error
	// Create a delivery job
	// (POST /api/v1/jobs)
	CreateJob(ctx echo.Context) error
	// Get a job with its timeline and allowed transitions
	// (GET /api/v1/jobs/{jobId})
	GetJob(ctx echo.Context, jobId openapi_types.UUID) error
	// Move a job to another lifecycle state
	// (POST /api/v1/jobs/{jobId}/transitions)
	TransitionJob(ctx echo.Context, jobId openapi_types.UUID) error
	// List couriers
	// (GET /api/v1/couriers)
	ListCouriers(ctx echo.Context, params ListCouriersParams) error
	// Register a courier awaiting approval
	// (POST /api/v1/couriers)
	RegisterCourier(ctx echo.Context) error
	// Approve a courier for work
	// (POST /api/v1/couriers/{courierId}/approval)
	ApproveCourier(ctx echo.Context, courierId openapi_types.UUID) error
	// Set online and availability flags
	// (PUT /api/v1/couriers/{courierId}/status)
	UpdateCourierStatus(ctx echo.Context, courierId openapi_types.UUID) error
	// Report the courier position
	// (PUT /api/v1/couriers/{courierId}/location)
	UpdateCourierLocation(ctx echo.Context, courierId openapi_types.UUID) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// ListActiveJobs converts echo context to params.
func (w *ServerInterfaceWrapper) ListActiveJobs(ctx echo.Context) error {
	var params ListActiveJobsParams

	if err := runtime.BindQueryParameter("form", true, false, "status", ctx.QueryParams(), &params.Status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter status: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}

	return w.Handler.ListActiveJobs(ctx, params)
}

// CreateJob converts echo context to params.
func (w *ServerInterfaceWrapper) CreateJob(ctx echo.Context) error {
	return w.Handler.CreateJob(ctx)
}

// GetJob converts echo context to params.
func (w *ServerInterfaceWrapper) GetJob(ctx echo.Context) error {
	jobId, err := bindUUIDPathParam(ctx, "jobId")
	if err != nil {
		return err
	}
	return w.Handler.GetJob(ctx, jobId)
}

// TransitionJob converts echo context to params.
func (w *ServerInterfaceWrapper) TransitionJob(ctx echo.Context) error {
	jobId, err := bindUUIDPathParam(ctx, "jobId")
	if err != nil {
		return err
	}
	return w.Handler.TransitionJob(ctx, jobId)
}

// ListCouriers converts echo context to params.
func (w *ServerInterfaceWrapper) ListCouriers(ctx echo.Context) error {
	var params ListCouriersParams

	if err := runtime.BindQueryParameter("form", true, false, "onlineOnly", ctx.QueryParams(), &params.OnlineOnly); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter onlineOnly: %s", err))
	}

	return w.Handler.ListCouriers(ctx, params)
}

// RegisterCourier converts echo context to params.
func (w *ServerInterfaceWrapper) RegisterCourier(ctx echo.Context) error {
	return w.Handler.RegisterCourier(ctx)
}

// ApproveCourier converts echo context to params.
func (w *ServerInterfaceWrapper) ApproveCourier(ctx echo.Context) error {
	courierId, err := bindUUIDPathParam(ctx, "courierId")
	if err != nil {
		return err
	}
	return w.Handler.ApproveCourier(ctx, courierId)
}

// UpdateCourierStatus converts echo context to params.
func (w *ServerInterfaceWrapper) UpdateCourierStatus(ctx echo.Context) error {
	courierId, err := bindUUIDPathParam(ctx, "courierId")
	if err != nil {
		return err
	}
	return w.Handler.UpdateCourierStatus(ctx, courierId)
}

// UpdateCourierLocation converts echo context to params.
func (w *ServerInterfaceWrapper) UpdateCourierLocation(ctx echo.Context) error {
	courierId, err := bindUUIDPathParam(ctx, "courierId")
	if err != nil {
		return err
	}
	return w.Handler.UpdateCourierLocation(ctx, courierId)
}

func bindUUIDPathParam(ctx echo.Context, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

// EchoRouter is the subset of *echo.Echo and *echo.Group used for registration.
type EchoRouter interface {
	CONNECT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	TRACE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers the routes under baseURL.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.GET(baseURL+"/api/v1/jobs", wrapper.ListActiveJobs)
	router.POST(baseURL+"/api/v1/jobs", wrapper.CreateJob)
	router.GET(baseURL+"/api/v1/jobs/:jobId", wrapper.GetJob)
	router.POST(baseURL+"/api/v1/jobs/:jobId/transitions", wrapper.TransitionJob)
	router.GET(baseURL+"/api/v1/couriers", wrapper.ListCouriers)
	router.POST(baseURL+"/api/v1/couriers", wrapper.RegisterCourier)
	router.POST(baseURL+"/api/v1/couriers/:courierId/approval", wrapper.ApproveCourier)
	router.PUT(baseURL+"/api/v1/couriers/:courierId/status", wrapper.UpdateCourierStatus)
	router.PUT(baseURL+"/api/v1/couriers/:courierId/location", wrapper.UpdateCourierLocation)
}
