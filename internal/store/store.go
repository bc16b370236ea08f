package store

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
)

// MaxServices caps the catalog size.
const MaxServices = 20

// ErrCatalogFull is returned when adding a service to a full catalog.
var ErrCatalogFull = errors.New("maximum number of services reached")

// Store owns the kiosk application state. All mutations go through the
// enumerated operations below; every mutation synchronously rewrites the
// durable snapshot through the injected Persister.
type Store struct {
	mu        sync.RWMutex
	state     AppState
	persister Persister
}

// New creates an empty store around the given persister. Call Init to
// rehydrate or seed the state before use.
func New(p Persister) *Store {
	return &Store{persister: p}
}

// Init loads the persisted snapshot, seeding the default state when no
// snapshot exists yet. defaultPasswordHash is only used when seeding.
func (s *Store) Init(ctx context.Context, defaultPasswordHash string) error {
	loaded, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if loaded != nil {
		s.state = *loaded
		if s.state.ServiceTimers == nil {
			s.state.ServiceTimers = make(map[string]int)
		}
		if s.releaseStaleSessionLocked() {
			return s.persistLocked(ctx)
		}
		return nil
	}

	s.state = AppState{
		Services:          DefaultServices(),
		MaintenanceMode:   false,
		AdminPasswordHash: defaultPasswordHash,
		HeaderConfig:      DefaultHeaderConfig(),
		ServiceTimers:     make(map[string]int),
	}
	return s.persistLocked(ctx)
}

// persistLocked writes the current state. Callers must hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	snapshot := s.state
	snapshot.Services = append([]Service(nil), s.state.Services...)
	snapshot.ServiceTimers = copyTimers(s.state.ServiceTimers)
	if s.state.ActiveService != nil {
		active := *s.state.ActiveService
		snapshot.ActiveService = &active
	}
	return s.persister.Save(ctx, snapshot)
}

func (s *Store) mutate(ctx context.Context, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	if err := s.persistLocked(ctx); err != nil {
		log.Printf("Warning: failed to persist state snapshot: %v", err)
	}
}

// releaseStaleSessionLocked clears session remnants from a rehydrated
// snapshot: In Use statuses, the active-service reference and running
// timers. A restart also restarts the controller, so a session captured
// mid-run can never resume; without this sweep the service would stay
// unselectable forever. Callers hold s.mu.
func (s *Store) releaseStaleSessionLocked() bool {
	changed := false
	for i := range s.state.Services {
		if s.state.Services[i].Status == StatusInUse {
			s.state.Services[i].Status = StatusAvailable
			changed = true
		}
	}
	if s.state.ActiveService != nil {
		s.state.ActiveService = nil
		changed = true
	}
	if len(s.state.ServiceTimers) > 0 {
		s.state.ServiceTimers = make(map[string]int)
		changed = true
	}
	return changed
}

func copyTimers(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// UpdateService replaces the catalog entry matching the service's id.
// No-op when the id is not found.
func (s *Store) UpdateService(ctx context.Context, svc Service) {
	s.mutate(ctx, func() {
		for i := range s.state.Services {
			if s.state.Services[i].ID == svc.ID {
				s.state.Services[i] = svc
				return
			}
		}
	})
}

// AddService appends a new service, assigning id = max(existing, 0) + 1.
// Removed interior ids are never reused.
func (s *Store) AddService(ctx context.Context, svc Service) (Service, error) {
	var added Service
	var err error
	s.mutate(ctx, func() {
		if len(s.state.Services) >= MaxServices {
			err = ErrCatalogFull
			return
		}
		nextID := 0
		for _, existing := range s.state.Services {
			if existing.ID > nextID {
				nextID = existing.ID
			}
		}
		svc.ID = nextID + 1
		s.state.Services = append(s.state.Services, svc)
		added = svc
	})
	return added, err
}

// RemoveService filters out the matching entry. No-op when absent.
func (s *Store) RemoveService(ctx context.Context, id int) {
	s.mutate(ctx, func() {
		filtered := s.state.Services[:0]
		for _, svc := range s.state.Services {
			if svc.ID != id {
				filtered = append(filtered, svc)
			}
		}
		s.state.Services = filtered
	})
}

// ToggleServiceEnabled flips the enabled flag. No-op when absent.
func (s *Store) ToggleServiceEnabled(ctx context.Context, id int) {
	s.mutate(ctx, func() {
		for i := range s.state.Services {
			if s.state.Services[i].ID == id {
				s.state.Services[i].Enabled = !s.state.Services[i].Enabled
				return
			}
		}
	})
}

// ToggleMaintenanceMode flips the maintenance flag.
func (s *Store) ToggleMaintenanceMode(ctx context.Context) bool {
	var mode bool
	s.mutate(ctx, func() {
		s.state.MaintenanceMode = !s.state.MaintenanceMode
		mode = s.state.MaintenanceMode
	})
	return mode
}

// SetMaintenanceMode sets the maintenance flag directly.
func (s *Store) SetMaintenanceMode(ctx context.Context, mode bool) {
	s.mutate(ctx, func() {
		s.state.MaintenanceMode = mode
	})
}

// UpdateAdminPasswordHash replaces the stored credential hash. Validation
// of the plaintext (non-empty, policy) is the caller's concern.
func (s *Store) UpdateAdminPasswordHash(ctx context.Context, hash string) {
	s.mutate(ctx, func() {
		s.state.AdminPasswordHash = hash
	})
}

// SetHeaderConfig replaces the display header strings.
func (s *Store) SetHeaderConfig(ctx context.Context, cfg HeaderConfig) {
	s.mutate(ctx, func() {
		s.state.HeaderConfig = cfg
	})
}

// SetActiveService records the service holding the current paid session.
// The reference is stored by value; later catalog edits do not propagate.
func (s *Store) SetActiveService(ctx context.Context, svc *Service) {
	s.mutate(ctx, func() {
		if svc == nil {
			s.state.ActiveService = nil
			return
		}
		copied := *svc
		s.state.ActiveService = &copied
	})
}

// UpdateServiceTimer inserts or updates the timer-map entry for a service.
func (s *Store) UpdateServiceTimer(ctx context.Context, id int, secondsLeft int) {
	s.mutate(ctx, func() {
		s.state.ServiceTimers[strconv.Itoa(id)] = secondsLeft
	})
}

// ResetServiceTimer removes the timer-map entry for a service.
func (s *Store) ResetServiceTimer(ctx context.Context, id int) {
	s.mutate(ctx, func() {
		delete(s.state.ServiceTimers, strconv.Itoa(id))
	})
}

// Services returns a copy of the full catalog.
func (s *Store) Services() []Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Service(nil), s.state.Services...)
}

// EnabledServices returns the services shown on the selection grid.
func (s *Store) EnabledServices() []Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var enabled []Service
	for _, svc := range s.state.Services {
		if svc.Enabled {
			enabled = append(enabled, svc)
		}
	}
	return enabled
}

// Service looks up a catalog entry by id.
func (s *Store) Service(id int) (Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, svc := range s.state.Services {
		if svc.ID == id {
			return svc, true
		}
	}
	return Service{}, false
}

// ActiveService returns a copy of the active-service reference, or nil.
func (s *Store) ActiveService() *Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.ActiveService == nil {
		return nil
	}
	copied := *s.state.ActiveService
	return &copied
}

// MaintenanceMode reports the maintenance flag.
func (s *Store) MaintenanceMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.MaintenanceMode
}

// AdminPasswordHash returns the stored credential hash.
func (s *Store) AdminPasswordHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AdminPasswordHash
}

// HeaderConfig returns the configured header strings.
func (s *Store) HeaderConfig() HeaderConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.HeaderConfig
}

// ServiceTimer returns the running countdown for a service, if any.
func (s *Store) ServiceTimer(id int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secs, ok := s.state.ServiceTimers[strconv.Itoa(id)]
	return secs, ok
}

// State returns a copy of the full application state.
func (s *Store) State() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state
	snapshot.Services = append([]Service(nil), s.state.Services...)
	snapshot.ServiceTimers = copyTimers(s.state.ServiceTimers)
	if s.state.ActiveService != nil {
		active := *s.state.ActiveService
		snapshot.ActiveService = &active
	}
	return snapshot
}
