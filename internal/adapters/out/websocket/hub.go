// Package websocket pushes job offers to courier apps over long-lived
// WebSocket sessions, one per courier.
package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	gorilla "github.com/gorilla/websocket"
)

const defaultWriteTimeout = 5 * time.Second

// ErrNoSession means the courier has no open session on this instance.
var ErrNoSession = errors.New("courier has no websocket session")

// Message is the JSON frame sent to a courier app.
type Message struct {
	Type    string  `json:"type"`
	JobID   string  `json:"jobId"`
	Pickup  *Point  `json:"pickup,omitempty"`
	Dropoff *Point  `json:"dropoff,omitempty"`
	Price   float64 `json:"price,omitempty"`
	Urgency string  `json:"urgency,omitempty"`
	Score   float64 `json:"score,omitempty"`
	Rank    int     `json:"rank,omitempty"`
	Status  string  `json:"status,omitempty"`
}

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

const (
	MessageOffer          = "offer"
	MessageOfferWithdrawn = "offer_withdrawn"
)

type session struct {
	conn *gorilla.Conn
	mu   sync.Mutex
}

func (s *session) send(msg Message, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(msg)
}

// Hub tracks courier sessions and implements ports.Notifier for them.
type Hub struct {
	mu           sync.RWMutex
	sessions     map[kernel.UUID]*session
	upgrader     gorilla.Upgrader
	writeTimeout time.Duration
	logger       *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		sessions:     make(map[kernel.UUID]*session),
		upgrader:     gorilla.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		writeTimeout: defaultWriteTimeout,
		logger:       logger.With("component", "WebSocketHub"),
	}
}

// ServeCourier upgrades the request and holds the session until the client
// disconnects. A new session replaces the courier's previous one. Frames sent
// by the client are read and discarded.
func (h *Hub) ServeCourier(w http.ResponseWriter, r *http.Request, courierID kernel.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	s := &session{conn: conn}
	h.mu.Lock()
	previous := h.sessions[courierID]
	h.sessions[courierID] = s
	h.mu.Unlock()
	if previous != nil {
		_ = previous.conn.Close()
	}

	h.logger.InfoContext(r.Context(), "courier connected", "courier_id", courierID.String())

	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if h.sessions[courierID] == s {
		delete(h.sessions, courierID)
	}
	h.mu.Unlock()
	_ = conn.Close()

	h.logger.InfoContext(r.Context(), "courier disconnected", "courier_id", courierID.String())
	return nil
}

// Connected reports whether the courier has an open session.
func (h *Hub) Connected(courierID kernel.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[courierID]
	return ok
}

// NotifyCourier sends the offer to the courier's session.
func (h *Hub) NotifyCourier(_ context.Context, courierID kernel.UUID, offer ports.Offer) error {
	h.mu.RLock()
	s, ok := h.sessions[courierID]
	h.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}

	return s.send(Message{
		Type:    MessageOffer,
		JobID:   offer.JobID.String(),
		Pickup:  &Point{Lat: offer.Pickup.Lat(), Lng: offer.Pickup.Lng()},
		Dropoff: &Point{Lat: offer.Dropoff.Lat(), Lng: offer.Dropoff.Lng()},
		Price:   offer.Price,
		Urgency: string(offer.Urgency),
		Score:   offer.Score,
		Rank:    offer.Rank,
	}, h.writeTimeout)
}

// NotifyStatusChange tells every connected courier that a job left the
// search, so apps can drop its pending offer. Other transitions are ignored.
// Individual send failures are logged, not returned.
func (h *Hub) NotifyStatusChange(ctx context.Context, jobID kernel.UUID, from, to job.Status) error {
	if from != job.FindingDriver {
		return nil
	}

	h.mu.RLock()
	targets := make(map[kernel.UUID]*session, len(h.sessions))
	for id, s := range h.sessions {
		targets[id] = s
	}
	h.mu.RUnlock()

	msg := Message{Type: MessageOfferWithdrawn, JobID: jobID.String(), Status: to.String()}
	for id, s := range targets {
		if err := s.send(msg, h.writeTimeout); err != nil {
			h.logger.WarnContext(ctx, "offer withdrawal not delivered",
				"courier_id", id.String(), "job_id", jobID.String(), "error", err)
		}
	}
	return nil
}

// Close disconnects every session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		_ = s.conn.Close()
		delete(h.sessions, id)
	}
}
