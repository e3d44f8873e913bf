package config

import (
	"github.com/preston-bernstein/football-elo-service/internal/rating"
	"github.com/preston-bernstein/football-elo-service/internal/venue"
)

// RatingConfig groups the engine and venue model parameters.
type RatingConfig struct {
	Engine      rating.Config
	Venue       venue.Config
	Multipliers venue.Multipliers
}

func loadRating() RatingConfig {
	engine := rating.DefaultConfig()
	engine.KFactor = floatEnvOrDefault(envKFactor, engine.KFactor)
	engine.HomeAdvantage = floatEnvOrDefault(envHomeAdvantage, engine.HomeAdvantage)
	engine.UseMOV = boolEnvOrDefault(envUseMOV, engine.UseMOV)
	engine.DefaultRating = intEnvOrDefault(envDefaultRating, engine.DefaultRating)

	geometry := venue.DefaultConfig()
	geometry.BandWidth = intEnvOrDefault(envBandWidth, geometry.BandWidth)
	geometry.BandCount = intEnvOrDefault(envBandCount, geometry.BandCount)

	mult := venue.DefaultMultipliers()
	mult.Home = floatEnvOrDefault(envVenueHome, mult.Home)
	mult.Away = floatEnvOrDefault(envVenueAway, mult.Away)
	mult.DrawHome = floatEnvOrDefault(envVenueDrawHome, mult.DrawHome)
	mult.DrawAway = floatEnvOrDefault(envVenueDrawAway, mult.DrawAway)

	return RatingConfig{Engine: engine, Venue: geometry, Multipliers: mult}
}
