package booking

import (
	"time"

	"inkwell/models"
)

// Catalog is the flat-rate service lookup. Pricing beyond this lookup
// (discounts, multi-currency settlement) is out of scope.
type Catalog map[string]models.Service

// Lookup returns the catalog entry for a service id.
func (c Catalog) Lookup(serviceID string) (models.Service, bool) {
	svc, ok := c[serviceID]
	return svc, ok
}

// DefaultCatalog is the static service list for the marketplace. Prices are
// in the platform's default currency, USD.
func DefaultCatalog() Catalog {
	return Catalog{
		"tattoo-session": {
			ID:       "tattoo-session",
			Name:     "Tattoo Session",
			Price:    180,
			Currency: "USD",
			Duration: 2 * time.Hour,
		},
		"tattoo-full-day": {
			ID:       "tattoo-full-day",
			Name:     "Full Day Tattoo Session",
			Price:    650,
			Currency: "USD",
			Duration: 7 * time.Hour,
		},
		"consultation": {
			ID:       "consultation",
			Name:     "Design Consultation",
			Price:    40,
			Currency: "USD",
			Duration: 30 * time.Minute,
		},
		"flash": {
			ID:       "flash",
			Name:     "Flash Piece",
			Price:    120,
			Currency: "USD",
			Duration: time.Hour,
		},
		"touch-up": {
			ID:       "touch-up",
			Name:     "Touch-Up",
			Price:    60,
			Currency: "USD",
			Duration: time.Hour,
		},
		"studio-rental": {
			ID:       "studio-rental",
			Name:     "Studio Chair Rental",
			Price:    90,
			Currency: "USD",
			Duration: 4 * time.Hour,
		},
		"guest-spot": {
			ID:       "guest-spot",
			Name:     "Guest Artist Spot",
			Price:    250,
			Currency: "USD",
			Duration: 8 * time.Hour,
		},
	}
}
