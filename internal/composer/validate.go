package composer

import (
	"math"
	"strconv"
	"strings"

	"hotmess/internal/domain"
	"hotmess/internal/entitlement"
)

// Validate runs the submit rules in order and returns the first failure.
// The ceiling is read from ents, so a tier change applies immediately.
func Validate(text string, ents entitlement.Entitlements) error {
	if strings.TrimSpace(text) == "" {
		return newValidationError("text", "Your post needs at least one line.")
	}
	if domain.CharCount(text) > ents.MaxPostLength {
		return newValidationError("text", "Keep it under %d characters.", ents.MaxPostLength)
	}
	return nil
}

// ClampRadiusKm bounds km to [1, maxKm]. NaN clamps to the minimum.
func ClampRadiusKm(km, maxKm float64) float64 {
	if math.IsNaN(km) || km < domain.MinRadiusKm {
		km = domain.MinRadiusKm
	}
	if km > maxKm {
		km = maxKm
	}
	return km
}

// ParseRadiusKm reads a slider/text value in kilometers and returns the clamped
// radius in meters, or nil when the input is not a number.
func ParseRadiusKm(input string, maxKm float64) *float64 {
	km, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return nil
	}
	return radiusMeters(km, maxKm)
}

// radiusMeters clamps km and converts it to meters. Non-finite values give nil.
func radiusMeters(km, maxKm float64) *float64 {
	if math.IsNaN(km) || math.IsInf(km, 0) {
		return nil
	}
	m := ClampRadiusKm(km, maxKm) * 1000
	return &m
}
