package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

var (
	// ErrGeocoderUnavailable is returned when an address must be resolved but no
	// geocoder is configured.
	ErrGeocoderUnavailable = errors.New("geocoder is not configured, coordinates are required")
	// ErrSecurityCodesExhausted is returned when every drawn code was issued
	// within the reuse window.
	ErrSecurityCodesExhausted = errors.New("no free security code")
)

// maxSecurityCodeDraws bounds the search for a code not issued in the last
// job.SecurityCodeReuseWindow.
const maxSecurityCodeDraws = 32

// CreateJobCommandHandler resolves addresses and stores a new job in created
// with a fresh delivery security code. Dispatching it is a separate transition.
type CreateJobCommandHandler struct {
	uowFactory JobUoWFactory
	geocoder   ports.Geocoder
	clock      ports.Clock
	codes      func() job.SecurityCode
}

// NewCreateJobCommandHandler builds the handler. geocoder may be nil.
func NewCreateJobCommandHandler(uowFactory JobUoWFactory, geocoder ports.Geocoder, clock ports.Clock) CreateJobCommandHandler {
	return CreateJobCommandHandler{
		uowFactory: uowFactory,
		geocoder:   geocoder,
		clock:      clock,
		codes:      job.RandomSecurityCode,
	}
}

// WithSecurityCodes replaces the code source, which defaults to job.RandomSecurityCode.
func (h CreateJobCommandHandler) WithSecurityCodes(next func() job.SecurityCode) CreateJobCommandHandler {
	h.codes = next
	return h
}

// Handle creates the job and returns it.
func (h CreateJobCommandHandler) Handle(ctx context.Context, cmd CreateJobCommand) (*job.Job, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	pickup, err := h.resolve(ctx, cmd.Pickup())
	if err != nil {
		return nil, fmt.Errorf("pickup: %w", err)
	}
	dropoff, err := h.resolve(ctx, cmd.Dropoff())
	if err != nil {
		return nil, fmt.Errorf("dropoff: %w", err)
	}

	j, err := job.NewJob(cmd.JobID(), pickup, dropoff, cmd.Price(), cmd.Weight(), cmd.Urgency(), h.clock.Now())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.JobRepository()
	code, err := h.freeSecurityCode(ctx, repo, j.CreatedAt())
	if err != nil {
		return nil, err
	}
	if err = j.IssueSecurityCode(code); err != nil {
		return nil, err
	}

	if err = repo.Add(ctx, j); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return j, nil
}

func (h CreateJobCommandHandler) resolve(ctx context.Context, e Endpoint) (kernel.Location, error) {
	if !e.needsGeocoding() {
		return *e.Location, nil
	}
	if h.geocoder == nil {
		return kernel.Location{}, ErrGeocoderUnavailable
	}
	return h.geocoder.Geocode(ctx, e.Address)
}

func (h CreateJobCommandHandler) freeSecurityCode(ctx context.Context, repo ports.JobRepository, now time.Time) (job.SecurityCode, error) {
	since := now.Add(-job.SecurityCodeReuseWindow)
	for range maxSecurityCodeDraws {
		code := h.codes()
		inUse, err := repo.SecurityCodeInUseSince(ctx, code, since)
		if err != nil {
			return "", fmt.Errorf("security code: %w", err)
		}
		if !inUse {
			return code, nil
		}
	}
	return "", ErrSecurityCodesExhausted
}
