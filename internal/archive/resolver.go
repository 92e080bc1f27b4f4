// Package archive resolves /file requests against the indexed posts of
// the curated channel.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/technicalserena/tunegram/internal/store"
)

// ErrNotFound means the scan completed and nothing matched. This is an
// expected outcome and must stay distinct from UnavailableError, which
// means the scan itself could not run (an access or configuration
// problem).
var ErrNotFound = errors.New("no archived file matched")

// UnavailableError reports that the archive could not be searched.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("archive unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Resolver finds archived channel messages by approximate file name.
type Resolver struct {
	index      store.ArchiveStore
	scanWindow int
}

func NewResolver(index store.ArchiveStore, scanWindow int) *Resolver {
	if scanWindow <= 0 {
		scanWindow = 50
	}
	return &Resolver{index: index, scanWindow: scanWindow}
}

// FindFile scans up to the configured window of index hits, in the
// index's own order, and returns the first message whose attachment
// file name (document, audio, or video — checked in that order) or
// caption contains nameQuery case-insensitively. First match wins; no
// ranking beyond the index ordering.
func (r *Resolver) FindFile(ctx context.Context, nameQuery string) (*store.ArchiveMessage, error) {
	hits, err := r.index.Search(ctx, nameQuery, r.scanWindow)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}

	needle := strings.ToLower(nameQuery)
	for i := range hits {
		m := &hits[i]
		if matchesFileName(m, needle) {
			return m, nil
		}
		if m.Caption != "" && strings.Contains(strings.ToLower(m.Caption), needle) {
			return m, nil
		}
	}
	return nil, ErrNotFound
}

func matchesFileName(m *store.ArchiveMessage, needle string) bool {
	switch m.Kind {
	case store.KindDocument, store.KindAudio, store.KindVideo:
		return m.FileName != "" && strings.Contains(strings.ToLower(m.FileName), needle)
	}
	return false
}
