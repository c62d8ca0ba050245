package http

import (
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/generated/servers"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

func toEndpoint(e servers.Endpoint) (commands.Endpoint, error) {
	var out commands.Endpoint
	if e.Address != nil {
		out.Address = *e.Address
	}
	if e.Location != nil {
		loc, err := kernel.NewLocation(e.Location.Lat, e.Location.Lng)
		if err != nil {
			return commands.Endpoint{}, err
		}
		out.Location = &loc
	}
	return out, nil
}

func toTransitionOptions(body servers.TransitionRequest) (job.TransitionOptions, error) {
	var opts job.TransitionOptions
	if body.CourierId != nil {
		id, err := kernel.UUIDFromBytes(body.CourierId[:])
		if err != nil {
			return job.TransitionOptions{}, err
		}
		opts.CourierID = &id
	}
	if body.CancelledBy != nil {
		by, err := job.ParseInitiator(string(*body.CancelledBy))
		if err != nil {
			return job.TransitionOptions{}, err
		}
		opts.CancelledBy = by
	}
	if body.Reason != nil {
		opts.Reason = *body.Reason
	}
	if body.SecurityCode != nil {
		code, err := job.ParseSecurityCode(*body.SecurityCode)
		if err != nil {
			return job.TransitionOptions{}, err
		}
		opts.SecurityCode = code
	}
	return opts, nil
}

func toLocation(l kernel.Location) servers.Location {
	return servers.Location{Lat: l.Lat(), Lng: l.Lng()}
}

func toUUIDPtr(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	out := id.Bytes()
	return &out
}

func toStatuses(in []job.Status) []servers.JobStatus {
	out := make([]servers.JobStatus, len(in))
	for i, s := range in {
		out[i] = servers.JobStatus(s.String())
	}
	return out
}

func toJob(v queries.GetJobQueryResponse) servers.Job {
	timeline := make(map[string]time.Time, len(v.Timeline))
	for s, at := range v.Timeline {
		timeline[s.String()] = at
	}

	out := servers.Job{
		Id:                 v.ID.Bytes(),
		Status:             servers.JobStatus(v.Status.String()),
		IsTerminal:         v.IsTerminal,
		AllowedTransitions: toStatuses(v.AllowedTransitions),
		CourierId:          toUUIDPtr(v.CourierID),
		Pickup:             toLocation(v.Pickup),
		Dropoff:            toLocation(v.Dropoff),
		Price:              v.Price,
		Weight:             v.Weight,
		Urgency:            servers.Urgency(v.Urgency),
		MatchAttempts:      v.MatchAttempts,
		Version:            v.Version,
		CreatedAt:          v.CreatedAt,
		StatusChangedAt:    v.StatusChangedAt,
		Timeline:           timeline,

		SecurityCodeValidated: v.SecurityCodeValidated,
	}
	if c := v.Cancellation; c != nil {
		out.Cancellation = &servers.Cancellation{
			By:             servers.Initiator(c.By),
			Reason:         c.Reason,
			ClientFee:      c.ClientFee,
			CourierPenalty: c.CourierPenalty,
		}
	}
	return out
}

func toJobSummary(v queries.ListActiveJobsQueryResponse) servers.JobSummary {
	return servers.JobSummary{
		Id:              v.ID.Bytes(),
		Status:          servers.JobStatus(v.Status.String()),
		CourierId:       toUUIDPtr(v.CourierID),
		Price:           v.Price,
		Urgency:         servers.Urgency(v.Urgency),
		MatchAttempts:   v.MatchAttempts,
		CreatedAt:       v.CreatedAt,
		StatusChangedAt: v.StatusChangedAt,
	}
}

func toCourier(c *courier.Courier) servers.Courier {
	out := servers.Courier{
		Id:              c.ID().Bytes(),
		Name:            c.Name(),
		Approved:        c.IsApproved(),
		Online:          c.IsOnline(),
		Available:       c.IsAvailable(),
		Rating:          c.Rating(),
		TotalDeliveries: c.TotalDeliveries(),
		TotalEarnings:   c.TotalEarnings(),
		Balance:         c.Balance(),
	}
	if loc, ok := c.Location(); ok {
		l := toLocation(loc)
		at := c.LocatedAt()
		out.Location = &l
		out.LocatedAt = &at
	}
	return out
}

func toCourierView(v queries.ListCouriersQueryResponse) servers.Courier {
	out := servers.Courier{
		Id:              v.ID.Bytes(),
		Name:            v.Name,
		Approved:        v.Approved,
		Online:          v.Online,
		Available:       v.Available,
		Rating:          v.Rating,
		LocatedAt:       v.LocatedAt,
		TotalDeliveries: v.TotalDeliveries,
		TotalEarnings:   v.TotalEarnings,
		Balance:         v.Balance,
	}
	if v.Location != nil {
		l := toLocation(*v.Location)
		out.Location = &l
	}
	return out
}
