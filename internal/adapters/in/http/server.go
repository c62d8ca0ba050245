package http

import (
	"context"
	"log/slog"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/generated/servers"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type (
	JobCreator interface {
		Handle(ctx context.Context, cmd commands.CreateJobCommand) (*job.Job, error)
	}
	JobTransitioner interface {
		Handle(ctx context.Context, cmd commands.TransitionJobCommand) (*job.Job, error)
	}
	JobGetter interface {
		Handle(ctx context.Context, query queries.GetJobQuery) (queries.GetJobQueryResponse, error)
	}
	ActiveJobsLister interface {
		Handle(ctx context.Context, query queries.ListActiveJobsQuery) ([]queries.ListActiveJobsQueryResponse, error)
	}
	CourierRegistrar interface {
		Handle(ctx context.Context, cmd commands.RegisterCourierCommand) error
	}
	CourierApprover interface {
		Handle(ctx context.Context, cmd commands.ApproveCourierCommand) error
	}
	CourierStatusUpdater interface {
		Handle(ctx context.Context, cmd commands.UpdateCourierStatusCommand) (*courier.Courier, error)
	}
	CourierLocationUpdater interface {
		Handle(ctx context.Context, cmd commands.UpdateCourierLocationCommand) error
	}
	CouriersLister interface {
		Handle(ctx context.Context, query queries.ListCouriersQuery) ([]queries.ListCouriersQueryResponse, error)
	}
)

// Handlers groups the use cases the server delegates to.
type Handlers struct {
	CreateJob             JobCreator
	TransitionJob         JobTransitioner
	GetJob                JobGetter
	ListActiveJobs        ActiveJobsLister
	RegisterCourier       CourierRegistrar
	ApproveCourier        CourierApprover
	UpdateCourierStatus   CourierStatusUpdater
	UpdateCourierLocation CourierLocationUpdater
	ListCouriers          CouriersLister
}

// Server implements servers.ServerInterface on top of the application layer.
type Server struct {
	h      Handlers
	logger *slog.Logger
}

var _ servers.ServerInterface = (*Server)(nil)

func NewServer(handlers Handlers, logger *slog.Logger) *Server {
	return &Server{
		h:      handlers,
		logger: logger.With("component", "HTTPServer"),
	}
}

// CreateJob handles POST /api/v1/jobs. With autoDispatch the job is moved to
// finding_driver right away; if that fails the job stays created and is
// still returned. This is the only response carrying the security code.
func (s *Server) CreateJob(ctx echo.Context) error {
	var body servers.CreateJobJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	pickup, err := toEndpoint(body.Pickup)
	if err != nil {
		return writeError(ctx, err)
	}
	dropoff, err := toEndpoint(body.Dropoff)
	if err != nil {
		return writeError(ctx, err)
	}

	var weight float64
	if body.Weight != nil {
		weight = *body.Weight
	}
	var urgency job.Urgency
	if body.Urgency != nil {
		urgency = job.Urgency(*body.Urgency)
	}

	cmd, err := commands.NewCreateJobCommand(pickup, dropoff, body.Price, weight, urgency)
	if err != nil {
		return writeError(ctx, err)
	}

	rctx := ctx.Request().Context()
	created, err := s.h.CreateJob.Handle(rctx, cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	if body.AutoDispatch != nil && *body.AutoDispatch {
		if dispatched, dispatchErr := s.dispatch(rctx, created.ID()); dispatchErr != nil {
			s.logger.WarnContext(rctx, "Auto dispatch failed", "job_id", created.ID().String(), "error", dispatchErr)
		} else {
			created = dispatched
		}
	}

	resp := toJob(queries.NewGetJobQueryResponse(created))
	if code := created.SecurityCode(); code != "" {
		raw := code.String()
		resp.SecurityCode = &raw
	}
	return ctx.JSON(http.StatusCreated, resp)
}

func (s *Server) dispatch(ctx context.Context, jobID kernel.UUID) (*job.Job, error) {
	cmd, err := commands.NewTransitionJobCommand(jobID, job.FindingDriver, job.TransitionOptions{})
	if err != nil {
		return nil, err
	}
	return s.h.TransitionJob.Handle(ctx, cmd)
}

// GetJob handles GET /api/v1/jobs/{jobId}.
func (s *Server) GetJob(ctx echo.Context, jobId openapi_types.UUID) error {
	id, err := kernel.UUIDFromBytes(jobId[:])
	if err != nil {
		return writeError(ctx, err)
	}
	query, err := queries.NewGetJobQuery(id)
	if err != nil {
		return writeError(ctx, err)
	}

	view, err := s.h.GetJob.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toJob(view))
}

// TransitionJob handles POST /api/v1/jobs/{jobId}/transitions.
func (s *Server) TransitionJob(ctx echo.Context, jobId openapi_types.UUID) error {
	var body servers.TransitionJobJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, err := kernel.UUIDFromBytes(jobId[:])
	if err != nil {
		return writeError(ctx, err)
	}
	target, err := job.ParseStatus(string(body.To))
	if err != nil {
		return writeError(ctx, err)
	}
	opts, err := toTransitionOptions(body)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewTransitionJobCommand(id, target, opts)
	if err != nil {
		return writeError(ctx, err)
	}

	moved, err := s.h.TransitionJob.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toJob(queries.NewGetJobQueryResponse(moved)))
}

// ListActiveJobs handles GET /api/v1/jobs.
func (s *Server) ListActiveJobs(ctx echo.Context, params servers.ListActiveJobsParams) error {
	status := job.Unknown
	if params.Status != nil {
		parsed, err := job.ParseStatus(string(*params.Status))
		if err != nil {
			return writeError(ctx, err)
		}
		status = parsed
	}
	limit := queries.DefaultActiveJobsLimit
	if params.Limit != nil {
		limit = *params.Limit
	}

	query, err := queries.NewListActiveJobsQuery(status, limit)
	if err != nil {
		return writeError(ctx, err)
	}

	jobs, err := s.h.ListActiveJobs.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]servers.JobSummary, len(jobs))
	for i, j := range jobs {
		response[i] = toJobSummary(j)
	}
	return ctx.JSON(http.StatusOK, response)
}

// RegisterCourier handles POST /api/v1/couriers.
func (s *Server) RegisterCourier(ctx echo.Context) error {
	var body servers.RegisterCourierJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRegisterCourierCommand(body.Name, body.Rating)
	if err != nil {
		return writeError(ctx, err)
	}
	if err = s.h.RegisterCourier.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, servers.CourierCreated{Id: cmd.CourierID().Bytes()})
}

// ApproveCourier handles POST /api/v1/couriers/{courierId}/approval.
func (s *Server) ApproveCourier(ctx echo.Context, courierId openapi_types.UUID) error {
	id, err := kernel.UUIDFromBytes(courierId[:])
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewApproveCourierCommand(id)
	if err != nil {
		return writeError(ctx, err)
	}
	if err = s.h.ApproveCourier.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// UpdateCourierStatus handles PUT /api/v1/couriers/{courierId}/status.
func (s *Server) UpdateCourierStatus(ctx echo.Context, courierId openapi_types.UUID) error {
	var body servers.UpdateCourierStatusJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, err := kernel.UUIDFromBytes(courierId[:])
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewUpdateCourierStatusCommand(id, body.Online, body.Available)
	if err != nil {
		return writeError(ctx, err)
	}

	c, err := s.h.UpdateCourierStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toCourier(c))
}

// UpdateCourierLocation handles PUT /api/v1/couriers/{courierId}/location.
func (s *Server) UpdateCourierLocation(ctx echo.Context, courierId openapi_types.UUID) error {
	var body servers.UpdateCourierLocationJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, err := kernel.UUIDFromBytes(courierId[:])
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewUpdateCourierLocationCommand(id, body.Lat, body.Lng)
	if err != nil {
		return writeError(ctx, err)
	}
	if err = s.h.UpdateCourierLocation.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ListCouriers handles GET /api/v1/couriers.
func (s *Server) ListCouriers(ctx echo.Context, params servers.ListCouriersParams) error {
	onlineOnly := params.OnlineOnly != nil && *params.OnlineOnly

	couriers, err := s.h.ListCouriers.Handle(ctx.Request().Context(), queries.NewListCouriersQuery(onlineOnly))
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]servers.Courier, len(couriers))
	for i, c := range couriers {
		response[i] = toCourierView(c)
	}
	return ctx.JSON(http.StatusOK, response)
}
