// Package extract implements the four Extractors (spec §4.4): Git,
// Structure, Graph and Document. Each is invoked by the orchestrator
// with a store, a repo root and the resolved configuration; failures
// on individual files are recorded in ExtractStats.Errors rather than
// aborting the whole extractor, mirroring the teacher's own
// per-item-tolerant ingestion style (internal/ingestion, internal/git).
package extract

import (
	"context"
	"time"

	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/store"
)

// FileError pairs a repo-relative path with the HomerError raised
// while processing it.
type FileError struct {
	Path string
	Err  *homererrors.HomerError
}

// ExtractStats is the per-extractor run summary spec §4.4 names.
type ExtractStats struct {
	NodesCreated int
	NodesUpdated int
	EdgesCreated int
	Duration     time.Duration
	Errors       []FileError
}

func (s *ExtractStats) recordNode(changed, existedBefore bool) {
	if !changed {
		return
	}
	if existedBefore {
		s.NodesUpdated++
	} else {
		s.NodesCreated++
	}
}

func (s *ExtractStats) recordError(path string, err *homererrors.HomerError) {
	s.Errors = append(s.Errors, FileError{Path: path, Err: err})
}

// Extractor is the capability every C4 component implements.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, s store.Store, repoRoot string, cfg *config.Config) (*ExtractStats, error)
}

// checkpointKind returns the `<name>_last_hash` checkpoint key spec
// §4.4 names for a given extractor name.
func checkpointKind(name string) string {
	return name + "_last_hash"
}
