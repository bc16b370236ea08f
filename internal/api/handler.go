package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"carwash-kiosk-backend/internal/auth"
	"carwash-kiosk-backend/internal/devicelink"
	"carwash-kiosk-backend/internal/session"
	"carwash-kiosk-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    *store.Store
	link     *devicelink.Link
	sessions *session.Coordinator
	verifier *auth.Verifier
	webpush  *webpush.Options
	db       *gorm.DB
}

// NewHandler creates a new API handler.
func NewHandler(s *store.Store, link *devicelink.Link, sessions *session.Coordinator, verifier *auth.Verifier, webpushOptions *webpush.Options, db *gorm.DB) *Handler {
	return &Handler{
		store:    s,
		link:     link,
		sessions: sessions,
		verifier: verifier,
		webpush:  webpushOptions,
		db:       db,
	}
}
