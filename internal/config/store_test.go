package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triage_config.yaml")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestOpenMissingFilePersistsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage_config.yaml")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, Default().ClassificationThresholds, s.Snapshot().ClassificationThresholds)
	_, err = os.Stat(path)
	assert.NoError(t, err, "defaults must be persisted on first open")
}

func TestOpenCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{not yaml"), 0o600))

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err, "a corrupt file must not block startup")
	assert.Equal(t, 0.7, s.Snapshot().ClassificationThresholds.BugThreshold)
}

func TestOpenLoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage_config.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("classification_thresholds:\n  bug_threshold: 0.9\n"), 0o600))

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0.9, s.Snapshot().ClassificationThresholds.BugThreshold)
}

func TestUpdateAppliesAndPersists(t *testing.T) {
	s := newTestStore(t)

	err := s.Update("classification_thresholds", map[string]any{
		"bug_threshold": 0.8,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.8, s.Snapshot().ClassificationThresholds.BugThreshold)

	// The change survives a reopen.
	reopened, err := Open(s.Path(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0.8, reopened.Snapshot().ClassificationThresholds.BugThreshold)
}

func TestUpdateRejectsInvalidCandidate(t *testing.T) {
	s := newTestStore(t)

	err := s.Update("classification_thresholds", map[string]any{
		"bug_threshold": 1.5,
	})
	require.ErrorIs(t, err, ErrInvalidConfig)
	// Last known good stays in effect.
	assert.Equal(t, 0.7, s.Snapshot().ClassificationThresholds.BugThreshold)
}

func TestUpdateUnknownSection(t *testing.T) {
	s := newTestStore(t)
	err := s.Update("nonexistent_section", map[string]any{"x": 1})
	require.ErrorIs(t, err, ErrUnknownSection)
}

func TestUpdateIgnoresUnknownFields(t *testing.T) {
	s := newTestStore(t)
	before := s.Snapshot().ClassificationThresholds

	err := s.Update("classification_thresholds", map[string]any{
		"no_such_field": 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, before, s.Snapshot().ClassificationThresholds)
}

func TestUpdateCoercesTypedValues(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Update("processing_rules", map[string]any{
		"batch_size":                "20",
		"skip_low_confidence_items": "true",
	}))
	require.NoError(t, s.Update("agent_settings", map[string]any{
		"enable_quality_review":  false,
		"classification_timeout": 60,
	}))

	cfg := s.Snapshot()
	assert.Equal(t, 20, cfg.ProcessingRules.BatchSize)
	assert.True(t, cfg.ProcessingRules.SkipLowConfidenceItems)
	assert.False(t, cfg.AgentSettings.EnableQualityReview)
	assert.Equal(t, 60, cfg.AgentSettings.ClassificationTimeout)
}

func TestUpdateRejectsUncoercibleValue(t *testing.T) {
	s := newTestStore(t)

	err := s.Update("classification_thresholds", map[string]any{
		"bug_threshold": "abc",
	})
	require.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "bug_threshold")
	// The rejected update must not leak into the served snapshot.
	assert.Equal(t, 0.7, s.Snapshot().ClassificationThresholds.BugThreshold)

	err = s.Update("processing_rules", map[string]any{
		"skip_low_confidence_items": "maybe",
	})
	require.ErrorIs(t, err, ErrInvalidValue)
	assert.False(t, s.Snapshot().ProcessingRules.SkipLowConfidenceItems)

	err = s.Update("agent_settings", map[string]any{
		"classification_timeout": []string{"30"},
	})
	require.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, Default().AgentSettings.ClassificationTimeout,
		s.Snapshot().AgentSettings.ClassificationTimeout)
}

func TestUpdateStampsLastUpdated(t *testing.T) {
	s := newTestStore(t)
	before := s.Snapshot().LastUpdated

	require.NoError(t, s.Update("processing_rules", map[string]any{"batch_size": 5}))
	assert.NotEqual(t, "", s.Snapshot().LastUpdated)
	_ = before // LastUpdated format is RFC3339; equality depends on clock resolution.
}

func TestSnapshotIsStableDuringUpdate(t *testing.T) {
	s := newTestStore(t)
	snap := s.Snapshot()

	require.NoError(t, s.Update("classification_thresholds", map[string]any{
		"bug_threshold": 0.9,
	}))

	assert.Equal(t, 0.7, snap.ClassificationThresholds.BugThreshold,
		"a snapshot taken before an update must not observe it")
	assert.Equal(t, 0.9, s.Snapshot().ClassificationThresholds.BugThreshold)
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Update("classification_thresholds", map[string]any{
		"spam_threshold": 0.95,
	}))

	exportPath := filepath.Join(t.TempDir(), "exported.yaml")
	require.NoError(t, s.Export(exportPath))

	other := newTestStore(t)
	require.NoError(t, other.Import(exportPath))
	assert.Equal(t, 0.95, other.Snapshot().ClassificationThresholds.SpamThreshold)

	// Import snapshots the previous config first.
	_, err := os.Stat(other.Path() + ".backup")
	assert.NoError(t, err)
}

func TestImportRejectsInvalidFile(t *testing.T) {
	s := newTestStore(t)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad,
		[]byte("classification_thresholds:\n  bug_threshold: 2.0\n"), 0o600))

	err := s.Import(bad)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, 0.7, s.Snapshot().ClassificationThresholds.BugThreshold)
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Update("classification_thresholds", map[string]any{
		"bug_threshold": 0.9,
	}))

	require.NoError(t, s.Reset())
	assert.Equal(t, 0.7, s.Snapshot().ClassificationThresholds.BugThreshold)
	assert.Equal(t, "system_default", s.Snapshot().CreatedBy)
}

func TestConcurrentReadersDuringUpdates(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cfg := s.Snapshot()
				// Snapshots are always internally consistent.
				assert.GreaterOrEqual(t, cfg.ClassificationThresholds.BugThreshold, 0.0)
				_ = s.Threshold("Bug")
				_ = s.MinimumConfidence()
			}
		}()
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, s.Update("classification_thresholds", map[string]any{
			"bug_threshold": 0.5 + float64(i%5)/10,
		}))
	}
	wg.Wait()
}
