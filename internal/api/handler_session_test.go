package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwash-kiosk-backend/internal/session"
)

func sessionSnapshot(t *testing.T, body []byte) session.Snapshot {
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	return snap
}

func TestSelectService(t *testing.T) {
	t.Run("opens payment flow", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, "POST", "/api/session/select", gin.H{"service_id": 1}, "")
		require.Equal(t, http.StatusOK, w.Code)

		snap := sessionSnapshot(t, w.Body.Bytes())
		assert.Equal(t, session.PhaseAwaitingPayment, snap.Phase)
		assert.Equal(t, 1, snap.ServiceID)
	})

	t.Run("second selection conflicts", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, "POST", "/api/session/select", gin.H{"service_id": 1}, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = f.do(t, "POST", "/api/session/select", gin.H{"service_id": 2}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown service", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, "POST", "/api/session/select", gin.H{"service_id": 99}, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("maintenance mode", func(t *testing.T) {
		f := newFixture(t)
		f.store.SetMaintenanceMode(context.Background(), true)

		w := f.do(t, "POST", "/api/session/select", gin.H{"service_id": 1}, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("missing body", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, "POST", "/api/session/select", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestConfirmSession(t *testing.T) {
	t.Run("without selection", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, "POST", "/api/session/confirm", nil, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("before payment", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, "POST", "/api/session/select", gin.H{"service_id": 1}, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = f.do(t, "POST", "/api/session/confirm", nil, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCancelSession(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "POST", "/api/session/select", gin.H{"service_id": 1}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "POST", "/api/session/cancel", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.PhaseIdle, sessionSnapshot(t, w.Body.Bytes()).Phase)

	// The service is selectable again.
	w = f.do(t, "POST", "/api/session/select", gin.H{"service_id": 1}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionFlow_CoinToActive(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.sessions.Run(ctx)

	w := f.do(t, "POST", "/api/session/select", gin.H{"service_id": 2}, "")
	require.Equal(t, http.StatusOK, w.Code)

	// The intermediary reports a coin; the poll publishes it to the coordinator.
	f.esp.setLastMessage("COIN_INSERTED")
	f.link.Poll(ctx)

	require.Eventually(t, func() bool {
		return f.sessions.Phase() == session.PhasePaymentConfirmed
	}, time.Second, 10*time.Millisecond)

	w = f.do(t, "POST", "/api/session/confirm", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	snap := sessionSnapshot(t, w.Body.Bytes())
	assert.Equal(t, session.PhaseActive, snap.Phase)
	assert.Equal(t, 2, snap.ServiceID)
	assert.Contains(t, f.esp.commands(), "START_SERVICE:2")

	w = f.do(t, "GET", "/api/session", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.PhaseActive, sessionSnapshot(t, w.Body.Bytes()).Phase)
}

func TestConfirmSession_CommandFailure(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.sessions.Run(ctx)

	w := f.do(t, "POST", "/api/session/select", gin.H{"service_id": 1}, "")
	require.Equal(t, http.StatusOK, w.Code)

	f.esp.setLastMessage("COIN_INSERTED")
	f.link.Poll(ctx)
	require.Eventually(t, func() bool {
		return f.sessions.Phase() == session.PhasePaymentConfirmed
	}, time.Second, 10*time.Millisecond)

	f.esp.setCommandResult(false, "controller busy")
	w = f.do(t, "POST", "/api/session/confirm", nil, "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"controller busy"}`, w.Body.String())

	// The phase is preserved so the user can retry.
	f.esp.setCommandResult(true, "")
	w = f.do(t, "POST", "/api/session/confirm", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
