package gridintensity

import "context"

// StaticProvider returns a fixed intensity. Used when no live API is
// configured, and as a test double.
type StaticProvider struct {
	intensity float64
}

func NewStaticProvider(intensity float64) *StaticProvider {
	return &StaticProvider{intensity: intensity}
}

func (s *StaticProvider) Name() string {
	return "static"
}

func (s *StaticProvider) GetGridIntensity(ctx context.Context) (Resolution, error) {
	return Resolution{Intensity: s.intensity}, nil
}
