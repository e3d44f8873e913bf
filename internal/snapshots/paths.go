package snapshots

import (
	"fmt"
	"path/filepath"
)

// Snapshot file names under the data directory.
const (
	FileRatings     = "current_elo.json"
	FileHistory     = "elo_history.json"
	FileBands       = "elo_bands.json"
	FileCalibration = "venue_adjustment.json"
	FileMatches     = "matches_data.json"
	FileManifest    = "manifest.json"

	rankingsDir = "rankings"
)

// Path joins a snapshot file name onto basePath.
func Path(basePath, name string) string {
	return filepath.Join(basePath, name)
}

// RankingsArchivePath builds the path to the dated rankings archive for a run date.
func RankingsArchivePath(basePath, date string) string {
	return filepath.Join(basePath, rankingsDir, fmt.Sprintf("%s.json", date))
}
