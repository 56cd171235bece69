package batch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlemaire/jobmarket/internal/domain/models"
)

func Test_LoadRaw_WhenSeveralFiles_ShouldPickMostRecent(t *testing.T) {
	root := t.TempDir()
	outputDir := filepath.Join(root, "adzuna", "output")
	require.NoError(t, os.MkdirAll(outputDir, 0755))

	oldPath := filepath.Join(outputDir, "batch_old.json")
	newPath := filepath.Join(outputDir, "batch_new.json")
	require.NoError(t, os.WriteFile(oldPath, []byte(`[{"id":"old"}]`), 0644))
	require.NoError(t, os.WriteFile(newPath, []byte(`[{"id":"new"},{"id":"new2"}]`), 0644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	store := NewStore(root, filepath.Join(root, "processed"))
	records, err := store.LoadRaw("adzuna")

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func Test_LoadRaw_WhenNoBatchYet_ShouldReturnSentinel(t *testing.T) {
	store := NewStore(t.TempDir(), t.TempDir())

	_, err := store.LoadRaw("adzuna")
	assert.ErrorIs(t, err, ErrNoBatch)
}

func Test_SaveCanonical_ThenLoadCanonical_ShouldRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), filepath.Join(t.TempDir(), "processed"))

	offers := []models.CanonicalOffer{
		{Source: "Adzuna", ExternalID: "1", Title: "Data Engineer", Location: "LILLE"},
	}
	path, err := store.SaveCanonical(offers, "transformed")
	require.NoError(t, err)
	assert.FileExists(t, path)

	loaded, err := store.LoadCanonical()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, offers[0], loaded[0])
}

func Test_SaveCanonical_WhenEmptyBatch_ShouldRefuse(t *testing.T) {
	store := NewStore(t.TempDir(), t.TempDir())

	_, err := store.SaveCanonical(nil, "transformed")
	assert.Error(t, err)
}

func Test_LoadCanonical_WhenDirEmpty_ShouldReturnSentinel(t *testing.T) {
	store := NewStore(t.TempDir(), t.TempDir())

	_, err := store.LoadCanonical()
	assert.ErrorIs(t, err, ErrNoBatch)
}
