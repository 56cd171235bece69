package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tlemaire/jobmarket/internal/domain/models"
)

// ErrNoBatch signals that a directory holds no batch file yet; callers
// skip the source rather than fail the run.
var ErrNoBatch = errors.New("no batch file found")

// Store reads per-source raw batches and reads/writes canonical offer
// snapshots. Every consumer always takes the most-recently-modified file
// of the relevant directory.
type Store struct {
	RawDir       string
	ProcessedDir string
}

func NewStore(rawDir, processedDir string) *Store {
	return &Store{RawDir: rawDir, ProcessedDir: processedDir}
}

// LoadRaw reads the latest raw batch of one source subdirectory, as an
// ordered sequence of undecoded records.
func (s *Store) LoadRaw(sourceDir string) ([]json.RawMessage, error) {

	dir := filepath.Join(s.RawDir, sourceDir, "output")
	path, err := latestFile(dir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read raw batch %s", path)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "decode raw batch %s", path)
	}

	log.Infof("loaded %d raw records from %s", len(records), filepath.Base(path))
	return records, nil
}

// SaveCanonical writes a canonical batch as <source>_<timestamp>.json in
// the processed-data directory and returns the file path.
func (s *Store) SaveCanonical(offers []models.CanonicalOffer, source string) (string, error) {

	if len(offers) == 0 {
		return "", errors.New("refusing to save an empty canonical batch")
	}

	if err := os.MkdirAll(s.ProcessedDir, 0755); err != nil {
		return "", errors.Wrap(err, "create processed-data directory")
	}

	name := source + "_" + time.Now().Format("20060102_150405") + ".json"
	path := filepath.Join(s.ProcessedDir, name)

	data, err := json.MarshalIndent(offers, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode canonical batch")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, "write canonical batch %s", path)
	}

	log.Infof("saved %d canonical offers to %s", len(offers), name)
	return path, nil
}

// LoadCanonical reads the latest canonical batch snapshot.
func (s *Store) LoadCanonical() ([]models.CanonicalOffer, error) {

	path, err := latestFile(s.ProcessedDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read canonical batch %s", path)
	}

	var offers []models.CanonicalOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, errors.Wrapf(err, "decode canonical batch %s", path)
	}
	return offers, nil
}

func latestFile(dir string) (string, error) {

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoBatch
		}
		return "", errors.Wrapf(err, "list %s", dir)
	}

	var latest string
	var latestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = entry.Name()
			latestMod = info.ModTime()
		}
	}

	if latest == "" {
		return "", ErrNoBatch
	}
	return filepath.Join(dir, latest), nil
}
