package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/core/services"
	"qbank/internal/fingerprint"
)

// memArchive keeps the last snapshot in memory.
type memArchive struct {
	saved driven.Snapshot
}

func (m *memArchive) Save(ctx context.Context, snap driven.Snapshot) error {
	m.saved = snap
	return nil
}

func (m *memArchive) Load(ctx context.Context) (driven.Snapshot, error) {
	return m.saved, nil
}

// wireTest swaps the package services for real ones over an in-memory
// archive and restores the old wiring afterwards.
func wireTest(t *testing.T) (*services.Store, *memArchive) {
	t.Helper()

	oldLibrarian, oldIngestor, oldArbiter := librarian, ingestor, arbiter
	t.Cleanup(func() {
		librarian, ingestor, arbiter = oldLibrarian, oldIngestor, oldArbiter
	})

	store := services.NewStore()
	queue := services.NewDecisionQueue()
	archive := &memArchive{}
	librarian = services.NewLibrarianService(store, archive)
	ingestor = services.NewIngestService(store, queue, domain.DefaultSettings())
	arbiter = services.NewArbitrationService(store, queue)
	return store, archive
}

func seedQuestion(t *testing.T, store *services.Store, text string, options map[string]string) domain.Question {
	t.Helper()
	q, err := store.Insert(domain.Question{
		Text:       text,
		Options:    options,
		TextFP:     fingerprint.Text(text),
		OptionsFP:  fingerprint.Options(options),
		CombinedFP: fingerprint.Combined(text, options),
	})
	require.NoError(t, err)
	return q
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "qbank version")
}

func TestListCommand(t *testing.T) {
	store, _ := wireTest(t)
	q := seedQuestion(t, store, "Which organ pumps blood?", map[string]string{"A": "heart", "B": "liver"})
	require.NoError(t, store.SetAnswer(q.ID, "A"))

	out, err := execute(t, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "#0 (A) Which organ pumps blood?")
	assert.Contains(t, out, "A. heart")
}

func TestListCommand_Empty(t *testing.T) {
	wireTest(t)

	out, err := execute(t, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No questions stored.")
}

func TestSearchCommand(t *testing.T) {
	store, _ := wireTest(t)
	seedQuestion(t, store, "Largest planet?", map[string]string{"A": "Jupiter", "B": "Mars"})
	seedQuestion(t, store, "Smallest planet?", map[string]string{"A": "Mercury", "B": "Pluto"})

	out, err := execute(t, "search", "jupiter")

	require.NoError(t, err)
	assert.Contains(t, out, "Largest planet?")
	assert.NotContains(t, out, "Smallest planet?")
	assert.Contains(t, out, "1 match(es)")
}

func TestStatsCommand(t *testing.T) {
	store, _ := wireTest(t)
	seedQuestion(t, store, "Only question here", map[string]string{"A": "x", "B": "y"})

	out, err := execute(t, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "1 live, 0 superseded (1 total)")
	assert.Contains(t, out, "Unanswered:  1")
}

func TestExportCommand_ToFile(t *testing.T) {
	store, _ := wireTest(t)
	q := seedQuestion(t, store, "Exported question text", map[string]string{"A": "x", "B": "y"})
	require.NoError(t, store.SetAnswer(q.ID, "B"))

	path := filepath.Join(t.TempDir(), "out.txt")
	out, err := execute(t, "export", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 questions")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1.(B)Exported question text")
}

func TestExportCommand_NoAnswers(t *testing.T) {
	store, _ := wireTest(t)
	q := seedQuestion(t, store, "Exported question text", map[string]string{"A": "x", "B": "y"})
	require.NoError(t, store.SetAnswer(q.ID, "B"))

	path := filepath.Join(t.TempDir(), "out.txt")
	_, err := execute(t, "export", "--no-answers", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "(B)")
}

func TestImportCommand(t *testing.T) {
	store, archive := wireTest(t)
	seedQuestion(t, store, "Already stored question", map[string]string{"A": "x", "B": "y"})

	payload, err := json.Marshal(map[string]any{
		"questions": []domain.Question{
			{ID: 0, Text: "incoming question", Options: map[string]string{"A": "x", "B": "y"}},
		},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "other.json")
	require.NoError(t, os.WriteFile(path, payload, 0600))

	out, err := execute(t, "import", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 questions")
	assert.Equal(t, 2, store.Len())

	// The merge is persisted straight away.
	assert.Len(t, archive.saved.Questions, 2)
}

func TestAnswerCommand(t *testing.T) {
	store, archive := wireTest(t)
	q := seedQuestion(t, store, "Answer me please", map[string]string{"A": "x", "B": "y"})

	out, err := execute(t, "answer", "0", "b")

	require.NoError(t, err)
	assert.Contains(t, out, "Question 0 answered.")

	got, err := store.Get(q.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Answer)
	assert.Len(t, archive.saved.Questions, 1)
}

func TestAnswerCommand_BadID(t *testing.T) {
	wireTest(t)

	_, err := execute(t, "answer", "abc", "A")

	assert.Error(t, err)
}

func TestNoteCommand(t *testing.T) {
	store, _ := wireTest(t)
	q := seedQuestion(t, store, "Needs an annotation", map[string]string{"A": "x", "B": "y"})

	_, err := execute(t, "note", "0", "see", "chapter", "3")

	require.NoError(t, err)
	got, err := store.Get(q.ID)
	require.NoError(t, err)
	assert.Equal(t, "see chapter 3", got.Note)
}

func TestIngestCommand_TextFile(t *testing.T) {
	store, archive := wireTest(t)

	path := filepath.Join(t.TempDir(), "in.txt")
	content := "1. A freshly scanned question\nA. yes\nB. no\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	out, err := execute(t, "ingest", path)

	require.NoError(t, err)
	assert.Contains(t, out, "1 new")
	assert.Equal(t, 1, store.Len())
	assert.Len(t, archive.saved.Questions, 1)
}

func TestIngestCommand_NoInputs(t *testing.T) {
	wireTest(t)

	_, err := execute(t, "ingest")

	assert.Error(t, err)
}
