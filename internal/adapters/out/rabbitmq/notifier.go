package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// Publisher sends one message to an exchange.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, body []byte) error
}

// OfferMessage is the body published to OffersExchange.
type OfferMessage struct {
	JobID     string  `json:"jobId"`
	CourierID string  `json:"courierId"`
	Pickup    Point   `json:"pickup"`
	Dropoff   Point   `json:"dropoff"`
	Price     float64 `json:"price"`
	Urgency   string  `json:"urgency"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
}

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// StatusMessage is the body published to StatusExchange.
type StatusMessage struct {
	JobID string    `json:"jobId"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	At    time.Time `json:"at"`
}

// Notifier implements ports.Notifier over RabbitMQ.
type Notifier struct {
	publisher Publisher
	clock     ports.Clock
}

func NewNotifier(publisher Publisher, clock ports.Clock) *Notifier {
	return &Notifier{publisher: publisher, clock: clock}
}

// OfferRoutingKey is the topic key of a courier's offers, e.g. "courier.<id>".
func OfferRoutingKey(courierID kernel.UUID) string {
	return "courier." + courierID.String()
}

func (n *Notifier) NotifyCourier(ctx context.Context, courierID kernel.UUID, offer ports.Offer) error {
	body, err := json.Marshal(OfferMessage{
		JobID:     offer.JobID.String(),
		CourierID: courierID.String(),
		Pickup:    Point{Lat: offer.Pickup.Lat(), Lng: offer.Pickup.Lng()},
		Dropoff:   Point{Lat: offer.Dropoff.Lat(), Lng: offer.Dropoff.Lng()},
		Price:     offer.Price,
		Urgency:   string(offer.Urgency),
		Score:     offer.Score,
		Rank:      offer.Rank,
	})
	if err != nil {
		return err
	}
	return n.publisher.Publish(ctx, OffersExchange, OfferRoutingKey(courierID), body)
}

func (n *Notifier) NotifyStatusChange(ctx context.Context, jobID kernel.UUID, from, to job.Status) error {
	body, err := json.Marshal(StatusMessage{
		JobID: jobID.String(),
		From:  from.String(),
		To:    to.String(),
		At:    n.clock.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.publisher.Publish(ctx, StatusExchange, "", body)
}
