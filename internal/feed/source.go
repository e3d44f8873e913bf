package feed

import (
	"context"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
)

// FileSource re-reads a CSV export on every call so appended results are picked up.
type FileSource struct {
	path     string
	importer *Importer
}

// NewFileSource reads path with importer. A nil importer uses the default aliases.
func NewFileSource(path string, importer *Importer) *FileSource {
	if importer == nil {
		importer = NewImporter(nil, nil)
	}
	return &FileSource{path: path, importer: importer}
}

// Path returns the CSV location.
func (s *FileSource) Path() string {
	return s.path
}

// Matches returns every playable match in the file.
func (s *FileSource) Matches(ctx context.Context) ([]matches.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := s.importer.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	return res.Matches, nil
}
