package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/core/services"
	"qbank/internal/similarity"
	"qbank/internal/textnorm"
)

// fixture wires real services with one queued conflict.
func fixture(t *testing.T) (*ReviewModel, *services.Store) {
	t.Helper()

	store := services.NewStore()
	queue := services.NewDecisionQueue()
	settings := domain.Settings{
		SimilarityThreshold: 0.4,
		Weights:             similarity.Weights{Question: 1.0, Options: 0.0},
		Punctuation:         textnorm.ModeDisabled,
	}
	ingest := services.NewIngestService(store, queue, settings)

	opts := map[string]string{"A": "x", "B": "y"}
	_, err := ingest.Classify(context.Background(), domain.Candidate{Text: "abcdefghij", Options: opts})
	require.NoError(t, err)
	out, err := ingest.Classify(context.Background(), domain.Candidate{Text: "abcdefghXY", Options: opts})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeSimilar, out.Kind)

	arbiter := services.NewArbitrationService(store, queue)
	librarian := services.NewLibrarianService(store, &nopArchive{})
	return NewReview(arbiter, librarian), store
}

type nopArchive struct{}

func (n *nopArchive) Save(ctx context.Context, snap driven.Snapshot) error { return nil }

func (n *nopArchive) Load(ctx context.Context) (driven.Snapshot, error) {
	return driven.Snapshot{}, nil
}

func TestReview_InitStartsTicker(t *testing.T) {
	m, _ := fixture(t)

	cmd := m.Init()

	assert.NotNil(t, cmd)
}

func TestReview_TickLoadsConflict(t *testing.T) {
	m, _ := fixture(t)

	model, cmd := m.Update(tickMsg(time.Now()))

	rm := model.(*ReviewModel)
	require.NotNil(t, rm.current)
	assert.Equal(t, "abcdefghXY", rm.current.Candidate.Text)
	assert.Equal(t, "abcdefghij", rm.existing.Text)
	assert.NotNil(t, cmd)

	view := rm.View()
	assert.Contains(t, view, "Similar question found")
	assert.Contains(t, view, "abcdefghij")
	assert.Contains(t, view, "abcdefghXY")
}

func TestReview_ViewWhileIdle(t *testing.T) {
	m, _ := fixture(t)

	view := m.View()

	assert.Contains(t, view, "Waiting for conflicts")
	assert.Contains(t, view, "1 pending")
}

func TestReview_ReplaceKey(t *testing.T) {
	m, store := fixture(t)
	model, _ := m.Update(tickMsg(time.Now()))
	rm := model.(*ReviewModel)

	model, _ = rm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	rm = model.(*ReviewModel)

	assert.Nil(t, rm.current)
	assert.Equal(t, 1, store.Len())

	old, err := store.Get(0)
	require.NoError(t, err)
	assert.True(t, old.Superseded)

	assert.Contains(t, rm.View(), "Replace the stored question")
}

func TestReview_KeepBothKey(t *testing.T) {
	m, store := fixture(t)
	model, _ := m.Update(tickMsg(time.Now()))
	rm := model.(*ReviewModel)

	model, _ = rm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	rm = model.(*ReviewModel)

	assert.Equal(t, 2, store.Len())
}

func TestReview_DiscardKey(t *testing.T) {
	m, store := fixture(t)
	model, _ := m.Update(tickMsg(time.Now()))
	rm := model.(*ReviewModel)

	model, _ = rm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	rm = model.(*ReviewModel)

	assert.Nil(t, rm.current)
	assert.Equal(t, 1, store.Len())
	assert.Contains(t, rm.View(), "discarded")
}

func TestReview_StaleConflictSkippedOnPoll(t *testing.T) {
	m, store := fixture(t)

	// The match is replaced before the panel polls the queue.
	_, err := store.Replace(0, domain.Question{
		Text:       "rewritten before review",
		Options:    map[string]string{"A": "x", "B": "y"},
		CombinedFP: "fp-rewritten",
	})
	require.NoError(t, err)

	model, _ := m.Update(tickMsg(time.Now()))
	rm := model.(*ReviewModel)

	assert.Nil(t, rm.current)
	assert.Contains(t, rm.View(), "stale")
}

func TestReview_QuitKey(t *testing.T) {
	m, _ := fixture(t)

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	rm := model.(*ReviewModel)
	assert.True(t, rm.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestReview_IgnoresResolutionKeysWhenIdle(t *testing.T) {
	m, store := fixture(t)

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	rm := model.(*ReviewModel)

	assert.Nil(t, rm.current)
	assert.Equal(t, 1, store.Len())
}
