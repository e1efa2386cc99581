package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/core/ports/driving"
)

// memoryArchive keeps the last saved snapshot in memory.
type memoryArchive struct {
	saved driven.Snapshot
	calls int
}

func (m *memoryArchive) Save(ctx context.Context, snap driven.Snapshot) error {
	m.saved = snap
	m.calls++
	return nil
}

func (m *memoryArchive) Load(ctx context.Context) (driven.Snapshot, error) {
	return m.saved, nil
}

func newLibrarianFixture(t *testing.T) (*LibrarianService, *Store, *memoryArchive) {
	t.Helper()
	store := NewStore()
	archive := &memoryArchive{}
	return NewLibrarianService(store, archive), store, archive
}

func TestLibrarian_Search(t *testing.T) {
	svc, store, _ := newLibrarianFixture(t)
	_, err := store.Insert(storedQuestion("Which organ pumps blood?", map[string]string{"A": "heart", "B": "liver"}))
	require.NoError(t, err)
	_, err = store.Insert(storedQuestion("Largest planet in the solar system?", map[string]string{"A": "Jupiter", "B": "Mars"}))
	require.NoError(t, err)

	byText, err := svc.Search(context.Background(), "PLANET")
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, int64(1), byText[0].ID)

	byOption, err := svc.Search(context.Background(), "heart")
	require.NoError(t, err)
	require.Len(t, byOption, 1)
	assert.Equal(t, int64(0), byOption[0].ID)

	none, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLibrarian_SetAnswer_ValidatesLabels(t *testing.T) {
	svc, store, _ := newLibrarianFixture(t)
	q, err := store.Insert(storedQuestion("Answer validation", map[string]string{"A": "x", "B": "y"}))
	require.NoError(t, err)

	require.NoError(t, svc.SetAnswer(context.Background(), q.ID, "b"))
	got, err := svc.Get(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Answer)

	err = svc.SetAnswer(context.Background(), q.ID, "C")
	assert.ErrorIs(t, err, domain.ErrInvalidCandidate)
}

func TestLibrarian_Export(t *testing.T) {
	svc, store, _ := newLibrarianFixture(t)

	first := storedQuestion("First question text", map[string]string{"B": "bee", "A": "ay"})
	inserted, err := store.Insert(first)
	require.NoError(t, err)
	require.NoError(t, store.SetAnswer(inserted.ID, "A"))
	require.NoError(t, store.SetNote(inserted.ID, "check the diagram"))

	_, err = store.Insert(storedQuestion("Second question text", map[string]string{"A": "one", "B": "two"}))
	require.NoError(t, err)

	var buf strings.Builder
	n, err := svc.Export(context.Background(), &buf, driving.ExportOptions{IncludeAnswers: true, IncludeNotes: true})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := "1.(A)First question text\n" +
		"A.ay B.bee\n" +
		"Note: check the diagram\n" +
		"\n" +
		"2.Second question text\n" +
		"A.one B.two\n"
	assert.Equal(t, want, buf.String())
}

func TestLibrarian_Export_TogglesOff(t *testing.T) {
	svc, store, _ := newLibrarianFixture(t)
	q, err := store.Insert(storedQuestion("Only the question", map[string]string{"A": "x", "B": "y"}))
	require.NoError(t, err)
	require.NoError(t, store.SetAnswer(q.ID, "A"))
	require.NoError(t, store.SetNote(q.ID, "hidden"))

	var buf strings.Builder
	_, err = svc.Export(context.Background(), &buf, driving.ExportOptions{})
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "(A)")
	assert.NotContains(t, buf.String(), "Note:")
}

func TestLibrarian_Import_RenumbersFromCurrentSize(t *testing.T) {
	svc, store, _ := newLibrarianFixture(t)
	for _, text := range []string{"seed one text", "seed two text", "seed three text", "seed four text", "seed five text"} {
		_, err := store.Insert(storedQuestion(text, map[string]string{"A": "x", "B": "y"}))
		require.NoError(t, err)
	}

	payload, err := json.Marshal(map[string]any{
		"next_id": 3,
		"questions": []domain.Question{
			{ID: 0, Text: "imported alpha", Options: map[string]string{"A": "x", "B": "y"}},
			{ID: 1, Text: "imported bravo", Options: map[string]string{"A": "x", "B": "y"}},
			{ID: 2, Text: "imported charlie", Options: map[string]string{"A": "x", "B": "y"}},
		},
	})
	require.NoError(t, err)

	report, err := svc.Import(context.Background(), strings.NewReader(string(payload)))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Imported)
	assert.Equal(t, 0, report.Skipped)
	assert.NotEmpty(t, report.BatchID)

	live, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, live, 8)

	var importedIDs []int64
	for _, q := range live {
		if q.Imported {
			importedIDs = append(importedIDs, q.ID)
			assert.Equal(t, report.BatchID, q.BatchID)
		}
	}
	assert.Equal(t, []int64{5, 6, 7}, importedIDs)
}

func TestLibrarian_Import_SkipsMalformedRecords(t *testing.T) {
	svc, _, _ := newLibrarianFixture(t)

	payload := `{"questions":[` +
		`{"id":0,"question":"","options":{"A":"x","B":"y"}},` +
		`{"id":1,"question":"kept question","options":{"A":"x","B":"y"}}` +
		`]}`

	report, err := svc.Import(context.Background(), strings.NewReader(payload))

	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.Skipped)
}

func TestLibrarian_Import_BadJSON(t *testing.T) {
	svc, _, _ := newLibrarianFixture(t)

	_, err := svc.Import(context.Background(), strings.NewReader("not json"))

	assert.Error(t, err)
}

func TestLibrarian_Stats(t *testing.T) {
	svc, store, _ := newLibrarianFixture(t)

	a := storedQuestion("answered question", map[string]string{"A": "x", "B": "y"})
	a.Source = "scan-1.png"
	inserted, err := store.Insert(a)
	require.NoError(t, err)
	require.NoError(t, store.SetAnswer(inserted.ID, "A"))

	old, err := store.Insert(storedQuestion("to be replaced", map[string]string{"A": "x", "B": "y"}))
	require.NoError(t, err)
	_, err = store.Replace(old.ID, storedQuestion("the replacement", map[string]string{"A": "x", "B": "y"}))
	require.NoError(t, err)

	store.ImportBatch([]domain.Question{
		storedQuestion("imported question", map[string]string{"A": "x", "B": "y"}),
	})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Live)
	assert.Equal(t, 1, stats.Superseded)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 2, stats.Unanswered)
	assert.Equal(t, []string{"scan-1.png"}, stats.Sources)
}

func TestLibrarian_Persist(t *testing.T) {
	svc, store, archive := newLibrarianFixture(t)
	_, err := store.Insert(storedQuestion("persisted question", map[string]string{"A": "x", "B": "y"}))
	require.NoError(t, err)

	require.NoError(t, svc.Persist(context.Background()))

	assert.Equal(t, 1, archive.calls)
	require.Len(t, archive.saved.Questions, 1)
	assert.Equal(t, int64(1), archive.saved.NextID)
}
