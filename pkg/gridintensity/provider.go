// Package gridintensity resolves the carbon intensity of the electrical grid
// for a region, in grams CO2 per kWh.
package gridintensity

import "context"

// Resolution is the outcome of an intensity lookup. A failed lookup is not an
// error: the provider substitutes the configured default and records why, so
// callers can distinguish "degraded to default" from "succeeded".
type Resolution struct {
	Intensity float64 // gCO2/kWh
	Fallback  bool
	Reason    string // set when Fallback is true
}

// Provider resolves the current grid carbon intensity. Implementations must
// be safe for concurrent use and should degrade to a fallback Resolution
// rather than returning an error; the error return exists for implementations
// that cannot produce any value at all.
type Provider interface {
	GetGridIntensity(ctx context.Context) (Resolution, error)
	Name() string
}
