package snapshots

import (
	"encoding/json"
	"os"
	"time"
)

// Manifest tracks snapshot metadata.
type Manifest struct {
	Version     int                 `json:"version"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Retention   Retention           `json:"retention"`
	Files       map[string]FileMeta `json:"files"`
	Rankings    RankingsMeta        `json:"rankings"`
}

type Retention struct {
	RankingsDays int `json:"rankingsDays"`
}

// FileMeta records when a snapshot file last changed.
type FileMeta struct {
	Entries     int       `json:"entries"`
	LastWritten time.Time `json:"lastWritten"`
	LastChecked time.Time `json:"lastChecked"`
}

type RankingsMeta struct {
	Dates []string `json:"dates"`
}

func defaultManifest(retentionDays int) Manifest {
	return Manifest{
		Version:   1,
		Retention: Retention{RankingsDays: retentionDays},
		Files:     map[string]FileMeta{},
		Rankings:  RankingsMeta{Dates: []string{}},
	}
}

// ReadManifest loads the manifest under basePath.
func ReadManifest(basePath string) (Manifest, error) {
	return readManifest(Path(basePath, FileManifest), 0)
}

func readManifest(path string, retentionDays int) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return defaultManifest(retentionDays), err
	}
	defer f.Close()
	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return defaultManifest(retentionDays), err
	}
	if m.Files == nil {
		m.Files = map[string]FileMeta{}
	}
	return m, nil
}

func writeManifest(basePath string, m Manifest, now time.Time) error {
	m.GeneratedAt = now
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	_, err = writeAtomic(Path(basePath, FileManifest), data)
	return err
}
