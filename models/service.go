package models

import "time"

// Service is a catalog entry for a bookable service at a flat rate.
type Service struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Price    float64       `json:"price"`
	Currency string        `json:"currency"`
	Duration time.Duration `json:"duration"`
}
