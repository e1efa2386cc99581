package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
)

func tempArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := New(filepath.Join(t.TempDir(), "questions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchive_LoadEmptyDatabase(t *testing.T) {
	a := tempArchive(t)

	snap, err := a.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, snap.Questions)
	assert.Equal(t, int64(0), snap.NextID)
}

func TestArchive_SaveLoadRoundTrip(t *testing.T) {
	a := tempArchive(t)
	ctx := context.Background()

	snap := driven.Snapshot{
		Questions: []domain.Question{
			{
				ID:         0,
				Text:       "這是一個測試，對嗎？",
				Options:    map[string]string{"A": "對", "B": "不對"},
				Answer:     "A",
				Note:       "watch the punctuation",
				TextFP:     "t0",
				OptionsFP:  "o0",
				CombinedFP: "c0",
				Source:     "scan.png",
				CreatedAt:  time.Now().UTC().Truncate(time.Second),
			},
			{
				ID:           1,
				Text:         "second question",
				Options:      map[string]string{"A": "x", "B": "y"},
				CombinedFP:   "c1",
				Superseded:   true,
				SupersededBy: 2,
				CreatedAt:    time.Now().UTC().Truncate(time.Second),
				UpdatedAt:    time.Now().UTC().Truncate(time.Second),
			},
		},
		NextID: 2,
	}

	require.NoError(t, a.Save(ctx, snap))

	got, err := a.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, "這是一個測試，對嗎？", got.Questions[0].Text)
	assert.Equal(t, "對", got.Questions[0].Options["A"])
	assert.Equal(t, "A", got.Questions[0].Answer)
	assert.True(t, got.Questions[1].Superseded)
	assert.Equal(t, int64(2), got.Questions[1].SupersededBy)
	assert.False(t, got.Questions[1].UpdatedAt.IsZero())
	assert.Equal(t, int64(2), got.NextID)
}

func TestArchive_SaveReplacesContents(t *testing.T) {
	a := tempArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, driven.Snapshot{
		Questions: []domain.Question{
			{ID: 0, Text: "old", Options: map[string]string{"A": "x"}, CreatedAt: time.Now()},
		},
		NextID: 1,
	}))
	require.NoError(t, a.Save(ctx, driven.Snapshot{NextID: 7}))

	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Questions)
	assert.Equal(t, int64(7), got.NextID)
}

func TestArchive_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questions.db")
	ctx := context.Background()

	a, err := New(path)
	require.NoError(t, err)
	require.NoError(t, a.Save(ctx, driven.Snapshot{
		Questions: []domain.Question{
			{ID: 3, Text: "survives reopen", Options: map[string]string{"A": "x"}, CreatedAt: time.Now()},
		},
		NextID: 4,
	}))
	require.NoError(t, a.Close())

	b, err := New(path)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, int64(3), got.Questions[0].ID)
	assert.Equal(t, int64(4), got.NextID)
}
