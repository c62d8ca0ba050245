// Package servers holds the HTTP contract of the dispatch API: the OpenAPI
// document, its request and response types, and the echo bindings that turn
// routes into ServerInterface calls.
package servers

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// JobStatus defines model for JobStatus.
type JobStatus string

const (
	JobStatusCreated       JobStatus = "created"
	JobStatusFindingDriver JobStatus = "finding_driver"
	JobStatusAccepted      JobStatus = "accepted"
	JobStatusPickingUp     JobStatus = "picking_up"
	JobStatusOnRoute       JobStatus = "on_route"
	JobStatusDelivered     JobStatus = "delivered"
	JobStatusPaid          JobStatus = "paid"
	JobStatusCancelled     JobStatus = "cancelled"
	JobStatusNoDriverFound JobStatus = "no_driver_found"
)

// Urgency defines model for Urgency.
type Urgency string

const (
	UrgencyStandard  Urgency = "standard"
	UrgencyExpress   Urgency = "express"
	UrgencyScheduled Urgency = "scheduled"
)

// Initiator defines model for Initiator.
type Initiator string

const (
	InitiatorClient  Initiator = "client"
	InitiatorCourier Initiator = "courier"
	InitiatorSystem  Initiator = "system"
)

// Error defines model for Error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Location defines model for Location.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Endpoint is coordinates, or an address to geocode.
type Endpoint struct {
	Address  *string   `json:"address,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// NewJob defines model for NewJob.
type NewJob struct {
	AutoDispatch *bool    `json:"autoDispatch,omitempty"`
	Dropoff      Endpoint `json:"dropoff"`
	Pickup       Endpoint `json:"pickup"`
	Price        float64  `json:"price"`
	Urgency      *Urgency `json:"urgency,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
}

// TransitionRequest defines model for TransitionRequest.
type TransitionRequest struct {
	CancelledBy *Initiator          `json:"cancelledBy,omitempty"`
	CourierId    *openapi_types.UUID `json:"courierId,omitempty"`
	Reason       *string             `json:"reason,omitempty"`
	SecurityCode *string             `json:"securityCode,omitempty"`
	To           JobStatus           `json:"to"`
}

// Cancellation defines model for Cancellation.
type Cancellation struct {
	By             Initiator `json:"by"`
	ClientFee      float64   `json:"clientFee"`
	CourierPenalty float64   `json:"courierPenalty"`
	Reason         string    `json:"reason"`
}

// Job defines model for Job.
type Job struct {
	AllowedTransitions    []JobStatus          `json:"allowedTransitions"`
	Cancellation          *Cancellation        `json:"cancellation,omitempty"`
	CourierId             *openapi_types.UUID  `json:"courierId,omitempty"`
	CreatedAt             time.Time            `json:"createdAt"`
	Dropoff               Location             `json:"dropoff"`
	Id                    openapi_types.UUID   `json:"id"`
	IsTerminal            bool                 `json:"isTerminal"`
	MatchAttempts         int                  `json:"matchAttempts"`
	Pickup                Location             `json:"pickup"`
	Price                 float64              `json:"price"`
	SecurityCode          *string              `json:"securityCode,omitempty"`
	SecurityCodeValidated bool                 `json:"securityCodeValidated"`
	Status                JobStatus            `json:"status"`
	StatusChangedAt       time.Time            `json:"statusChangedAt"`
	Timeline              map[string]time.Time `json:"timeline"`
	Urgency               Urgency              `json:"urgency"`
	Version               int64                `json:"version"`
	Weight                float64              `json:"weight"`
}

// JobSummary defines model for JobSummary.
type JobSummary struct {
	CourierId       *openapi_types.UUID `json:"courierId,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	Id              openapi_types.UUID  `json:"id"`
	MatchAttempts   int                 `json:"matchAttempts"`
	Price           float64             `json:"price"`
	Status          JobStatus           `json:"status"`
	StatusChangedAt time.Time           `json:"statusChangedAt"`
	Urgency         Urgency             `json:"urgency"`
}

// NewCourier defines model for NewCourier.
type NewCourier struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// CourierCreated defines model for CourierCreated.
type CourierCreated struct {
	Id openapi_types.UUID `json:"id"`
}

// CourierStatus defines model for CourierStatus.
type CourierStatus struct {
	Available bool `json:"available"`
	Online    bool `json:"online"`
}

// Courier defines model for Courier.
type Courier struct {
	Approved        bool               `json:"approved"`
	Available       bool               `json:"available"`
	Balance         float64            `json:"balance"`
	Id              openapi_types.UUID `json:"id"`
	LocatedAt       *time.Time         `json:"locatedAt,omitempty"`
	Location        *Location          `json:"location,omitempty"`
	Name            string             `json:"name"`
	Online          bool               `json:"online"`
	Rating          float64            `json:"rating"`
	TotalDeliveries int                `json:"totalDeliveries"`
	TotalEarnings   float64            `json:"totalEarnings"`
}

// ListActiveJobsParams defines parameters for ListActiveJobs.
type ListActiveJobsParams struct {
	Status *JobStatus `form:"status,omitempty" json:"status,omitempty"`
	Limit  *int       `form:"limit,omitempty" json:"limit,omitempty"`
}

// ListCouriersParams defines parameters for ListCouriers.
type ListCouriersParams struct {
	OnlineOnly *bool `form:"onlineOnly,omitempty" json:"onlineOnly,omitempty"`
}

// CreateJobJSONRequestBody defines body for CreateJob for application/json ContentType.
type CreateJobJSONRequestBody = NewJob

// TransitionJobJSONRequestBody defines body for TransitionJob for application/json ContentType.
type TransitionJobJSONRequestBody = TransitionRequest

// RegisterCourierJSONRequestBody defines body for RegisterCourier for application/json ContentType.
type RegisterCourierJSONRequestBody = NewCourier

// UpdateCourierStatusJSONRequestBody defines body for UpdateCourierStatus for application/json ContentType.
type UpdateCourierStatusJSONRequestBody = CourierStatus

// UpdateCourierLocationJSONRequestBody defines body for UpdateCourierLocation for application/json ContentType.
type UpdateCourierLocationJSONRequestBody = Location
