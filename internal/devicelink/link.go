package devicelink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"carwash-kiosk-backend/config"
	"carwash-kiosk-backend/internal/command"
)

// ConnectionStatus is the logical state of the controller link. It is
// inferred from polling, not from a persistent connection.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusError        ConnectionStatus = "error"
	StatusConnecting   ConnectionStatus = "connecting"
)

// Link talks to the ESP8266 intermediary server over polled HTTP. It keeps
// a bounded log of observed messages and publishes device-originated
// messages to a consumer channel so domain events are consumed, not
// inferred from log-tail inspection.
type Link struct {
	baseURL  string
	client   *http.Client
	interval time.Duration
	grace    time.Duration
	logSize  int

	mu       sync.Mutex
	status   ConnectionStatus
	lastErr  string
	messages []string

	events chan string
}

// NewLink creates a device link from configuration. Run must be called to
// start the poll loop.
func NewLink(cfg *config.DeviceConfig) *Link {
	l := &Link{
		baseURL:  cfg.BaseURL,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		interval: cfg.PollInterval,
		grace:    cfg.ReconnectGracePeriod,
		logSize:  cfg.MessageLogSize,
		status:   StatusDisconnected,
		events:   make(chan string, 16),
	}
	return l
}

// Run polls the status endpoint once immediately and then on every interval
// tick until the context is cancelled. There is no backoff or jitter;
// failures are retried by the next scheduled poll.
func (l *Link) Run(ctx context.Context) {
	log.Println("Starting device link poll loop...")
	l.Poll(ctx)

	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Device link shutting down.")
			return
		case <-timer.C:
			l.Poll(ctx)
			timer.Reset(l.interval)
		}
	}
}

// Poll performs a single status check. Success maps the connected flag to
// Connected/Disconnected and clears any recorded error; transport failure
// sets the Error status with a human-readable message.
func (l *Link) Poll(ctx context.Context) {
	status, err := l.fetchStatus(ctx)
	if err != nil {
		l.mu.Lock()
		l.status = StatusError
		l.lastErr = "Failed to connect to ESP8266"
		l.mu.Unlock()
		log.Printf("Error polling device status: %v", err)
		return
	}

	l.mu.Lock()
	if status.Connected {
		l.status = StatusConnected
	} else {
		l.status = StatusDisconnected
	}
	l.lastErr = ""
	if status.LastMessage != nil && *status.LastMessage != "" {
		l.appendLocked(*status.LastMessage)
		l.publish(*status.LastMessage)
	}
	l.mu.Unlock()
}

// SendCommand relays a free-form command string to the controller. The
// link performs no validation of command syntax. Success only confirms
// delivery to the intermediary server, not to the physical device.
func (l *Link) SendCommand(ctx context.Context, cmd string) error {
	body, err := json.Marshal(commandRequest{Command: cmd})
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/api/esp/command", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		l.mu.Lock()
		l.status = StatusError
		l.lastErr = "Failed to send command"
		l.mu.Unlock()
		return &CommandError{Kind: KindTransport, Command: cmd, Message: "Failed to send command", Err: err}
	}
	defer resp.Body.Close()

	var ack commandResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		l.mu.Lock()
		l.status = StatusError
		l.lastErr = "Failed to send command"
		l.mu.Unlock()
		return &CommandError{Kind: KindTransport, Command: cmd, Message: "Failed to send command", Err: err}
	}

	if !ack.Success {
		msg := ack.Error
		if msg == "" {
			msg = "Failed to send command"
		}
		l.mu.Lock()
		l.lastErr = msg
		l.mu.Unlock()
		return &CommandError{Kind: KindRejected, Command: cmd, Message: msg}
	}

	l.mu.Lock()
	l.appendLocked("Sent: " + cmd)
	l.lastErr = ""
	l.mu.Unlock()
	return nil
}

// Reconnect sends a RESET command, waits out the grace period and then
// polls once to verify the link. The grace period is an unconditional
// delay, not a response-bounded wait.
func (l *Link) Reconnect(ctx context.Context) error {
	l.mu.Lock()
	l.status = StatusConnecting
	l.lastErr = ""
	l.mu.Unlock()

	if err := l.SendCommand(ctx, command.Reset); err != nil {
		l.mu.Lock()
		l.status = StatusError
		l.mu.Unlock()
		return err
	}

	select {
	case <-ctx.Done():
		l.mu.Lock()
		l.status = StatusError
		l.lastErr = "Failed to reconnect"
		l.mu.Unlock()
		return ctx.Err()
	case <-time.After(l.grace):
	}

	l.Poll(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.status != StatusConnected {
		l.status = StatusError
		l.lastErr = "Failed to reconnect"
		return errors.New("failed to reconnect")
	}
	l.appendLocked("ESP8266 reconnected")
	return nil
}

// Status returns the current inferred connection state.
func (l *Link) Status() ConnectionStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// LastError returns the most recent human-readable error, or "".
func (l *Link) LastError() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Messages returns a copy of the message log, oldest first.
func (l *Link) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

// Events returns the channel of device-originated messages. Entries the
// link writes itself ("Sent: ..." and reconnect notes) are not published.
func (l *Link) Events() <-chan string {
	return l.events
}

// appendLocked adds a message to the bounded ring. Callers hold the lock.
func (l *Link) appendLocked(msg string) {
	l.messages = append(l.messages, msg)
	if len(l.messages) > l.logSize {
		l.messages = l.messages[len(l.messages)-l.logSize:]
	}
}

// publish delivers a device message to the consumer without blocking the
// poll loop. A full channel drops the message.
func (l *Link) publish(msg string) {
	select {
	case l.events <- msg:
	default:
		log.Printf("Warning: event channel full, dropping device message %q", msg)
	}
}

func (l *Link) fetchStatus(ctx context.Context) (*statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/api/esp/status", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status response: %w", err)
	}

	return &status, nil
}
