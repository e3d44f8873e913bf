package rating

import "fmt"

const (
	DefaultKFactor       = 20.0
	DefaultHomeAdvantage = 100.0
	DefaultRating        = 1500
)

// Config holds the engine parameters.
type Config struct {
	KFactor       float64 // base rating change per match before MOV scaling
	HomeAdvantage float64 // points added to the home side's effective rating
	UseMOV        bool    // scale K by the margin-of-victory multiplier on decisive results
	DefaultRating int     // starting rating for teams seen for the first time
}

// DefaultConfig returns the ClubElo-style defaults.
func DefaultConfig() Config {
	return Config{
		KFactor:       DefaultKFactor,
		HomeAdvantage: DefaultHomeAdvantage,
		UseMOV:        true,
		DefaultRating: DefaultRating,
	}
}

// Validate ensures parameters are within usable ranges.
func (c Config) Validate() error {
	if c.KFactor <= 0 {
		return fmt.Errorf("k factor must be positive, got %v", c.KFactor)
	}
	if c.HomeAdvantage < 0 {
		return fmt.Errorf("home advantage must not be negative, got %v", c.HomeAdvantage)
	}
	if c.DefaultRating <= 0 {
		return fmt.Errorf("default rating must be positive, got %d", c.DefaultRating)
	}
	return nil
}
