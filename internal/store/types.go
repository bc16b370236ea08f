package store

// ServiceStatus drives tile selectability on the kiosk.
type ServiceStatus string

const (
	StatusAvailable   ServiceStatus = "Available"
	StatusInUse       ServiceStatus = "In Use"
	StatusMaintenance ServiceStatus = "Maintenance"
)

// ServiceType selects the tile iconography only; it has no behavioral effect.
type ServiceType string

const (
	TypeCarwash  ServiceType = "carwash"
	TypeShampoo  ServiceType = "shampoo"
	TypeInflator ServiceType = "inflator"
	TypeFaucet   ServiceType = "faucet"
	TypeOther    ServiceType = "other"
)

// Service is one catalog entry: a sellable, timed facility at the kiosk.
type Service struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Price         float64       `json:"price"`
	Duration      int           `json:"duration"` // seconds
	TimeRemaining int           `json:"timeRemaining"`
	Status        ServiceStatus `json:"status"`
	Type          ServiceType   `json:"type"`
	Enabled       bool          `json:"enabled"`
}

// HeaderConfig holds the two operator-configurable display strings.
type HeaderConfig struct {
	MainHeader string `json:"mainHeader"`
	SubHeader  string `json:"subHeader"`
}

// AppState aggregates everything the kiosk persists across restarts.
// The timer map holds remaining seconds per service id (string form);
// absence means "not running", not zero.
type AppState struct {
	Services          []Service      `json:"services"`
	ActiveService     *Service       `json:"activeService"`
	MaintenanceMode   bool           `json:"maintenanceMode"`
	AdminPasswordHash string         `json:"adminPasswordHash"`
	HeaderConfig      HeaderConfig   `json:"headerConfig"`
	ServiceTimers     map[string]int `json:"serviceTimers"`
}

// DefaultServices returns the five services seeded on first start.
func DefaultServices() []Service {
	return []Service{
		{ID: 1, Name: "CARWASH 1", Description: "Premium Wash", Price: 150.00, Duration: 180, Status: StatusAvailable, Type: TypeCarwash, Enabled: true},
		{ID: 2, Name: "CARWASH 2", Description: "Premium Wash", Price: 150.00, Duration: 180, Status: StatusAvailable, Type: TypeCarwash, Enabled: true},
		{ID: 3, Name: "SHAMPOO", Description: "Foam Treatment", Price: 50.00, Duration: 120, Status: StatusAvailable, Type: TypeShampoo, Enabled: true},
		{ID: 4, Name: "INFLATOR/BLOWER", Description: "Tire/Air Drying", Price: 20.00, Duration: 60, Status: StatusAvailable, Type: TypeInflator, Enabled: true},
		{ID: 5, Name: "FAUCET", Description: "Water Refill", Price: 10.00, Duration: 60, Status: StatusAvailable, Type: TypeFaucet, Enabled: true},
	}
}

// DefaultHeaderConfig returns the header shown before an operator edits it.
func DefaultHeaderConfig() HeaderConfig {
	return HeaderConfig{
		MainHeader: "ESQUIMA KIOSK",
		SubHeader:  "5n1 eCarwash",
	}
}
