package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwash-kiosk-backend/internal/model"
	"carwash-kiosk-backend/internal/store"
)

func TestAdminLogin(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(t, "POST", "/api/admin/login", gin.H{"password": "letmein"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("correct password issues a token", func(t *testing.T) {
		f := newFixture(t)
		token := f.login(t)

		w := f.do(t, "GET", "/api/admin/services", nil, token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("lockout after repeated failures", func(t *testing.T) {
		f := newFixture(t)
		for i := 0; i < 5; i++ {
			w := f.do(t, "POST", "/api/admin/login", gin.H{"password": "wrong"}, "")
			require.Equal(t, http.StatusUnauthorized, w.Code)
		}

		w := f.do(t, "POST", "/api/admin/login", gin.H{"password": "admin123"}, "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/api/admin/services", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, "GET", "/api/admin/services", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminListServices_IncludesDisabled(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	w := f.do(t, "POST", "/api/admin/services/4/toggle", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "GET", "/api/admin/services", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var services []store.Service
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &services))
	assert.Len(t, services, 5)
}

func TestAdminCreateService(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	t.Run("assigns the next id", func(t *testing.T) {
		w := f.do(t, "POST", "/api/admin/services", gin.H{
			"name":     "VACUUM",
			"price":    30.0,
			"duration": 90,
		}, token)
		require.Equal(t, http.StatusCreated, w.Code)

		var svc store.Service
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &svc))
		assert.Equal(t, 6, svc.ID)
		assert.Equal(t, store.TypeOther, svc.Type)
		assert.True(t, svc.Enabled)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		w := f.do(t, "POST", "/api/admin/services", gin.H{
			"name":     "BAD",
			"price":    -1.0,
			"duration": 60,
		}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects missing duration", func(t *testing.T) {
		w := f.do(t, "POST", "/api/admin/services", gin.H{"name": "BAD"}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("full catalog conflicts", func(t *testing.T) {
		for len(f.store.Services()) < store.MaxServices {
			w := f.do(t, "POST", "/api/admin/services", gin.H{
				"name":     "EXTRA",
				"duration": 60,
			}, token)
			require.Equal(t, http.StatusCreated, w.Code)
		}

		w := f.do(t, "POST", "/api/admin/services", gin.H{
			"name":     "ONE TOO MANY",
			"duration": 60,
		}, token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAdminUpdateService(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	t.Run("updates fields and keeps status", func(t *testing.T) {
		w := f.do(t, "PUT", "/api/admin/services/1", gin.H{
			"name":     "CARWASH DELUXE",
			"price":    200.0,
			"duration": 240,
			"type":     "carwash",
		}, token)
		require.Equal(t, http.StatusOK, w.Code)

		svc, ok := f.store.Service(1)
		require.True(t, ok)
		assert.Equal(t, "CARWASH DELUXE", svc.Name)
		assert.Equal(t, 240, svc.Duration)
		assert.Equal(t, store.StatusAvailable, svc.Status)
	})

	t.Run("unknown service", func(t *testing.T) {
		w := f.do(t, "PUT", "/api/admin/services/99", gin.H{
			"name":     "GHOST",
			"duration": 60,
		}, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := f.do(t, "PUT", "/api/admin/services/abc", gin.H{
			"name":     "GHOST",
			"duration": 60,
		}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdminDeleteService(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	w := f.do(t, "DELETE", "/api/admin/services/3", nil, token)
	require.Equal(t, http.StatusNoContent, w.Code)
	_, ok := f.store.Service(3)
	assert.False(t, ok)

	// Deleting an absent service is still a 204.
	w = f.do(t, "DELETE", "/api/admin/services/3", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminToggleMaintenance(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	w := f.do(t, "POST", "/api/admin/maintenance", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"maintenance_mode":true}`, w.Body.String())
	assert.True(t, f.store.MaintenanceMode())

	w = f.do(t, "POST", "/api/admin/maintenance", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"maintenance_mode":false}`, w.Body.String())
}

func TestAdminUpdatePassword(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	t.Run("rejects blank password", func(t *testing.T) {
		w := f.do(t, "PUT", "/api/admin/password", gin.H{"password": "   "}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rotates the credential", func(t *testing.T) {
		w := f.do(t, "PUT", "/api/admin/password", gin.H{"password": "new-secret"}, token)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = f.do(t, "POST", "/api/admin/login", gin.H{"password": "admin123"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = f.do(t, "POST", "/api/admin/login", gin.H{"password": "new-secret"}, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminUpdateHeader(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	w := f.do(t, "PUT", "/api/admin/header", gin.H{
		"mainHeader": "SUNRISE WASH",
		"subHeader":  "Open 24/7",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	cfg := f.store.HeaderConfig()
	assert.Equal(t, "SUNRISE WASH", cfg.MainHeader)
	assert.Equal(t, "Open 24/7", cfg.SubHeader)
}

func TestAdminGetLogs(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	now := time.Now()
	f.mock.ExpectQuery(`SELECT \* FROM "session_logs" ORDER BY timestamp DESC LIMIT \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "timestamp", "service_id", "action", "status", "amount"}).
			AddRow(2, now, 1, model.ActionCompleted, "ok", 150.00).
			AddRow(1, now.Add(-time.Minute), 1, model.ActionStarted, "ok", 150.00))

	w := f.do(t, "GET", "/api/admin/logs?limit=2", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var logs []model.SessionLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionCompleted, logs[0].Action)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	t.Run("invalid limit", func(t *testing.T) {
		w := f.do(t, "GET", "/api/admin/logs?limit=zero", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
