package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"carwash-kiosk-backend/internal/command"
	"carwash-kiosk-backend/internal/model"
	"carwash-kiosk-backend/internal/store"
)

// Phases of one user interaction with the kiosk.
const (
	PhaseIdle             = "idle"
	PhaseAwaitingPayment  = "awaiting_payment"
	PhasePaymentConfirmed = "payment_confirmed"
	PhaseActive           = "active"
)

const (
	eventSelect  = "select"
	eventCoin    = "coin"
	eventConfirm = "confirm"
	eventCancel  = "cancel"
	eventExpire  = "expire"
)

var (
	ErrSessionInProgress  = errors.New("a session is already in progress")
	ErrServiceUnavailable = errors.New("service is not available")
	ErrMaintenanceMode    = errors.New("kiosk is in maintenance mode")
	ErrNoSelection        = errors.New("no service selected")
	ErrPaymentNotReceived = errors.New("payment has not been received")
)

// DeviceLink is the slice of the device link the coordinator needs.
type DeviceLink interface {
	SendCommand(ctx context.Context, cmd string) error
	Events() <-chan string
}

// Notifier dispatches an operator notification. May be nil.
type Notifier interface {
	Dispatch(message string)
}

// Recorder appends a session log entry. May be nil.
type Recorder interface {
	Record(ctx context.Context, serviceID int, action, status string, amount float64)
}

// Session is the single authority over one paid service run. Service status,
// the store's active-service reference and the timer-map entry are all
// written from this value; remaining time is derived from StartedAt, never
// counted separately.
type Session struct {
	ID        uuid.UUID
	ServiceID int
	StartedAt time.Time
	Duration  time.Duration
	Price     float64
}

// Snapshot is a read-only view of the coordinator for the API.
type Snapshot struct {
	Phase            string `json:"phase"`
	ServiceID        int    `json:"service_id,omitempty"`
	SessionID        string `json:"session_id,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds,omitempty"`
}

// Coordinator drives the payment and session lifecycle. All transitions
// happen under one mutex; coin events are consumed from the device link's
// event channel rather than inferred from the message log.
type Coordinator struct {
	store    *store.Store
	link     DeviceLink
	notifier Notifier
	recorder Recorder

	mu      sync.Mutex
	machine *fsm.FSM
	current *Session
}

// New creates a coordinator in the idle phase.
func New(s *store.Store, link DeviceLink, notifier Notifier, recorder Recorder) *Coordinator {
	machine := fsm.NewFSM(
		PhaseIdle,
		fsm.Events{
			{Name: eventSelect, Src: []string{PhaseIdle}, Dst: PhaseAwaitingPayment},
			{Name: eventCoin, Src: []string{PhaseAwaitingPayment}, Dst: PhasePaymentConfirmed},
			{Name: eventConfirm, Src: []string{PhasePaymentConfirmed}, Dst: PhaseActive},
			{Name: eventCancel, Src: []string{PhaseAwaitingPayment, PhasePaymentConfirmed, PhaseActive}, Dst: PhaseIdle},
			{Name: eventExpire, Src: []string{PhaseActive}, Dst: PhaseIdle},
		},
		fsm.Callbacks{},
	)
	return &Coordinator{
		store:    s,
		link:     link,
		notifier: notifier,
		recorder: recorder,
		machine:  machine,
	}
}

// Run consumes device events and drives the countdown until ctx ends.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Session coordinator shutting down.")
			return
		case msg := <-c.link.Events():
			c.handleDeviceMessage(ctx, msg)
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// Select opens a payment flow for an Available, enabled service.
func (c *Coordinator) Select(ctx context.Context, serviceID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.machine.Is(PhaseIdle) {
		return ErrSessionInProgress
	}
	if c.store.MaintenanceMode() {
		return ErrMaintenanceMode
	}
	svc, ok := c.store.Service(serviceID)
	if !ok || !svc.Enabled || svc.Status != store.StatusAvailable {
		return ErrServiceUnavailable
	}

	c.current = &Session{
		ID:        uuid.New(),
		ServiceID: svc.ID,
		Duration:  time.Duration(svc.Duration) * time.Second,
		Price:     svc.Price,
	}
	if err := c.machine.Event(ctx, eventSelect); err != nil {
		c.current = nil
		return fmt.Errorf("failed to open payment flow: %w", err)
	}
	return nil
}

// handleDeviceMessage reacts to a single device-originated message. Only
// the literal COIN_INSERTED while awaiting payment has any effect.
func (c *Coordinator) handleDeviceMessage(ctx context.Context, msg string) {
	if msg != command.CoinInserted {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.machine.Is(PhaseAwaitingPayment) {
		return
	}
	if err := c.machine.Event(ctx, eventCoin); err != nil {
		log.Printf("Error confirming payment: %v", err)
		return
	}
	log.Printf("Payment received for service %d", c.current.ServiceID)
}

// ConfirmStart issues the start command and activates the session. On a
// command failure the phase is left unchanged so the user can retry.
func (c *Coordinator) ConfirmStart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return ErrNoSelection
	}
	if !c.machine.Is(PhasePaymentConfirmed) {
		return ErrPaymentNotReceived
	}

	if err := c.link.SendCommand(ctx, command.StartService(c.current.ServiceID)); err != nil {
		return err
	}

	c.current.StartedAt = time.Now()
	if err := c.machine.Event(ctx, eventConfirm); err != nil {
		return fmt.Errorf("failed to activate session: %w", err)
	}

	svc, ok := c.store.Service(c.current.ServiceID)
	if ok {
		svc.Status = store.StatusInUse
		c.store.UpdateService(ctx, svc)
		c.store.SetActiveService(ctx, &svc)
	}
	c.store.UpdateServiceTimer(ctx, c.current.ServiceID, int(c.current.Duration.Seconds()))

	if c.recorder != nil {
		c.recorder.Record(ctx, c.current.ServiceID, model.ActionStarted, "ok", c.current.Price)
	}
	log.Printf("Session %s started for service %d", c.current.ID, c.current.ServiceID)
	return nil
}

// Cancel abandons the flow from any phase. The selection is discarded and
// no command is sent to the controller.
func (c *Coordinator) Cancel(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine.Is(PhaseIdle) {
		return
	}

	wasActive := c.machine.Is(PhaseActive)
	cancelled := c.current
	if err := c.machine.Event(ctx, eventCancel); err != nil {
		log.Printf("Error cancelling session: %v", err)
		return
	}
	c.current = nil

	if cancelled != nil {
		if wasActive {
			c.releaseService(ctx, cancelled.ServiceID)
		}
		if c.recorder != nil {
			c.recorder.Record(ctx, cancelled.ServiceID, model.ActionCancelled, "ok", cancelled.Price)
		}
	}
}

// tick updates the countdown while a session is active and expires it when
// the remaining time reaches zero.
func (c *Coordinator) tick(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.machine.Is(PhaseActive) || c.current == nil {
		return
	}

	remaining := c.remainingLocked(time.Now())
	if remaining > 0 {
		c.store.UpdateServiceTimer(ctx, c.current.ServiceID, remaining)
		return
	}

	ended := c.current
	if err := c.machine.Event(ctx, eventExpire); err != nil {
		log.Printf("Error expiring session: %v", err)
		return
	}
	c.current = nil

	c.releaseService(ctx, ended.ServiceID)
	if c.recorder != nil {
		c.recorder.Record(ctx, ended.ServiceID, model.ActionCompleted, "ok", ended.Price)
	}
	if c.notifier != nil {
		if svc, ok := c.store.Service(ended.ServiceID); ok {
			c.notifier.Dispatch(fmt.Sprintf("%s is available again", svc.Name))
		}
	}
	log.Printf("Session %s for service %d completed", ended.ID, ended.ServiceID)
}

// releaseService returns a service to Available and clears the derived
// session state in the store.
func (c *Coordinator) releaseService(ctx context.Context, serviceID int) {
	if svc, ok := c.store.Service(serviceID); ok {
		svc.Status = store.StatusAvailable
		c.store.UpdateService(ctx, svc)
	}
	c.store.SetActiveService(ctx, nil)
	c.store.ResetServiceTimer(ctx, serviceID)
}

func (c *Coordinator) remainingLocked(now time.Time) int {
	elapsed := now.Sub(c.current.StartedAt)
	remaining := c.current.Duration - elapsed
	if remaining < 0 {
		return 0
	}
	return int(remaining.Round(time.Second).Seconds())
}

// Phase returns the current phase name.
func (c *Coordinator) Phase() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

// Snapshot returns the coordinator's state for the API.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{Phase: c.machine.Current()}
	if c.current != nil {
		snap.ServiceID = c.current.ServiceID
		snap.SessionID = c.current.ID.String()
		if c.machine.Is(PhaseActive) {
			snap.RemainingSeconds = c.remainingLocked(time.Now())
		} else {
			snap.RemainingSeconds = int(c.current.Duration.Seconds())
		}
	}
	return snap
}
