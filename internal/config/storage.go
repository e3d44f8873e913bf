package config

import "time"

// StorageConfig locates the match ledger and snapshot files.
type StorageConfig struct {
	DataDir string
	// MatchesDB is a sqlite file; empty keeps the ledger in memory.
	MatchesDB string
	// MatchesCSV is imported into the ledger before each refresh when set.
	MatchesCSV string
}

// RefreshConfig controls the scheduled replay/recalibration cycle.
type RefreshConfig struct {
	Schedule   string
	OnStart    bool
	Timeout    time.Duration
	AdminToken string
}

func loadStorage() StorageConfig {
	return StorageConfig{
		DataDir:    envOrDefault(envDataDir, defaultDataDir),
		MatchesDB:  envOrDefault(envMatchesDB, ""),
		MatchesCSV: envOrDefault(envMatchesCSV, ""),
	}
}

func loadRefresh() RefreshConfig {
	return RefreshConfig{
		Schedule:   envOrDefault(envRefreshSchedule, defaultRefreshSchedule),
		OnStart:    boolEnvOrDefault(envRefreshOnStart, defaultRefreshOnBoot),
		Timeout:    durationEnvOrDefault(envRefreshTimeout, defaultRefreshTimeout),
		AdminToken: envOrDefault(envAdminToken, ""),
	}
}
