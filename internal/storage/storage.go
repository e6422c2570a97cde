package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bilgisen/weeklyissue/internal/models"
	"github.com/bilgisen/weeklyissue/internal/patch"
)

// ErrArtifactMissing is returned when the page to patch does not exist
var ErrArtifactMissing = errors.New("artifact file missing")

// Storage reads and writes the issue artifacts on disk
type Storage struct {
	pagePath string
	jsonPath string
	mu       sync.RWMutex
}

func NewStorage(pagePath, jsonPath string) *Storage {
	return &Storage{
		pagePath: pagePath,
		jsonPath: jsonPath,
	}
}

// PagePath returns the HTML page location
func (s *Storage) PagePath() string { return s.pagePath }

// JSONPath returns the JSON artifact location
func (s *Storage) JSONPath() string { return s.jsonPath }

// PatchPage replaces the generated declarations of the HTML page in place.
// The page must already exist; nothing is written when patching fails.
func (s *Storage) PatchPage(ctx context.Context, configBlock, sectionsBlock string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.pagePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArtifactMissing, s.pagePath)
		}
		return fmt.Errorf("failed to stat page: %w", err)
	}

	data, err := os.ReadFile(s.pagePath)
	if err != nil {
		return fmt.Errorf("failed to read page: %w", err)
	}

	out, err := patch.Patch(string(data), configBlock, sectionsBlock)
	if err != nil {
		return fmt.Errorf("failed to patch %s: %w", s.pagePath, err)
	}

	return writeFileAtomic(s.pagePath, []byte(out), info.Mode().Perm())
}

// WriteJSON writes the standalone JSON artifact, creating its directory
func (s *Storage) WriteJSON(ctx context.Context, artifact *Artifact) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := artifact.Marshal()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.jsonPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}
	return writeFileAtomic(s.jsonPath, data, 0644)
}

// ReadJSON returns the raw JSON artifact as last written
func (s *Storage) ReadJSON(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.jsonPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, s.jsonPath)
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// writeFileAtomic writes to a temp file next to path, then renames it over
// path
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// SectionRef is a section of the JSON artifact, items referenced by id
type SectionRef struct {
	models.SectionMeta
	ItemIDs []int `json:"items"`
}

// ArtifactItem is a story of the JSON artifact tagged with its section
type ArtifactItem struct {
	models.NewsItem
	Section string `json:"section"`
}

// Artifact is the standalone JSON form of an issue
type Artifact struct {
	GeneratedAt string          `json:"generated_at"`
	Week        models.WeekInfo `json:"week"`
	Total       int             `json:"total"`
	Sections    []SectionRef    `json:"sections"`
	Items       []ArtifactItem  `json:"items"`
}

// NewArtifact flattens assembled sections into the artifact shape
func NewArtifact(week models.WeekInfo, sections []models.Section, generatedAt time.Time) *Artifact {
	a := &Artifact{
		GeneratedAt: generatedAt.Format(time.RFC3339),
		Week:        week,
		Sections:    make([]SectionRef, 0, len(sections)),
		Items:       make([]ArtifactItem, 0, models.TotalItems()),
	}
	for _, s := range sections {
		ref := SectionRef{SectionMeta: s.SectionMeta, ItemIDs: make([]int, 0, len(s.Items))}
		for _, item := range s.Items {
			item.EnsureSlices()
			ref.ItemIDs = append(ref.ItemIDs, item.ID)
			a.Items = append(a.Items, ArtifactItem{NewsItem: item, Section: s.ID})
		}
		a.Sections = append(a.Sections, ref)
	}
	a.Total = len(a.Items)
	return a
}

// Marshal encodes the artifact with indentation, non-ASCII kept literal
func (a *Artifact) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifact: %w", err)
	}
	return append(data, '\n'), nil
}
