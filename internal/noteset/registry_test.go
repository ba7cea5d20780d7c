package noteset

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/settings"
)

// fakeQuery is an in-memory index.QueryService.
type fakeQuery struct {
	docs    []models.Document
	badExpr string
}

func (f *fakeQuery) Resolve(q models.Query) ([]models.Document, error) {
	if !q.MatchAll && q.Expr == f.badExpr {
		return nil, errors.New("bad query")
	}
	return f.docs, nil
}

func (f *fakeQuery) ValidateQuery(expr string) error {
	if expr == f.badExpr {
		return errors.New("bad query")
	}
	return nil
}

func (f *fakeQuery) FieldValue(path, field string) (string, error) { return "", nil }

func (f *fakeQuery) Reinitialize() error { return nil }

// stubRebuilder fills the queue with every fake document path.
type stubRebuilder struct {
	query *fakeQuery
	calls int
}

func (s *stubRebuilder) Rebuild(ns *models.NoteSet) error {
	s.calls++
	q := &models.NoteQueue{}
	for _, d := range s.query.docs {
		q.Filenames = append(q.Filenames, d.Path)
	}
	ns.Queue = q
	return nil
}

func testRegistry(t *testing.T, docs ...models.Document) (*Registry, *settings.Store, *stubRebuilder) {
	t.Helper()
	store, err := settings.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	query := &fakeQuery{docs: docs}
	rb := &stubRebuilder{query: query}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRegistry(store, query, rb, logger), store, rb
}

func TestCreate_Defaults(t *testing.T) {
	r, store, _ := testRegistry(t)

	ns, err := r.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ns.ID == "" {
		t.Error("id must be assigned")
	}
	if ns.TagsJoinType != models.JoinAny || ns.FoldersToTagsJoinType != models.JoinAny {
		t.Error("join types should default to any")
	}
	if ns.DisplayName != "blank note set" {
		t.Errorf("display name = %q", ns.DisplayName)
	}

	stored, err := store.NoteSet(ns.ID)
	if err != nil {
		t.Fatalf("stored: %v", err)
	}
	if stored.SortOrder == nil {
		t.Error("sort order must be assigned on first persist")
	}
}

func TestSortNoteSets_GapFillAndIdempotent(t *testing.T) {
	three := 3
	sets := []*models.NoteSet{
		{ID: "a"},
		{ID: "b", SortOrder: &three},
		{ID: "c"},
	}
	sorted := SortNoteSets(sets)
	// Explicit order 3 comes first; unordered sets slot in above the max,
	// keeping their relative order.
	if sorted[0].ID != "b" || sorted[1].ID != "a" || sorted[2].ID != "c" {
		t.Fatalf("order = %s %s %s", sorted[0].ID, sorted[1].ID, sorted[2].ID)
	}
	if *sorted[1].SortOrder != 4 || *sorted[2].SortOrder != 5 {
		t.Errorf("assigned orders = %d %d", *sorted[1].SortOrder, *sorted[2].SortOrder)
	}

	again := SortNoteSets(sorted)
	if again[0].ID != "b" || again[1].ID != "a" || again[2].ID != "c" {
		t.Error("sorting must be idempotent")
	}
}

func TestUpdate_RefreshesDerivedAndValidates(t *testing.T) {
	r, store, _ := testRegistry(t, models.Document{Path: "a.md", Tags: []string{"book"}})

	ns, err := r.Create()
	if err != nil {
		t.Fatal(err)
	}
	ns.Tags = []string{"book"}
	if err := r.Update(ns); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stored, _ := store.NoteSet(ns.ID)
	if stored.DisplayName != "#book" {
		t.Errorf("display name = %q", stored.DisplayName)
	}
	if stored.Description == "" {
		t.Error("description should be derived")
	}
	// The rules match a document, so validation self-heals the empty queue.
	if stored.HasValidationError(models.ValidationQueueEmpty) {
		t.Errorf("validation errors = %v", stored.ValidationErrors)
	}
	if stored.Queue.Len() != 1 {
		t.Errorf("queue len = %d, want 1", stored.Queue.Len())
	}
}

func TestDelete_ClearsSelection(t *testing.T) {
	r, store, _ := testRegistry(t)
	ns, _ := r.Create()
	_ = store.Update(func(s *settings.Settings) error {
		s.CurrentNoteSetID = ns.ID
		return nil
	})

	if err := r.Delete(ns.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.NoteSet(ns.ID); err == nil {
		t.Error("note set should be gone")
	}
	store.View(func(s *settings.Settings) {
		if s.CurrentNoteSetID != "" {
			t.Error("deleting the selected note set must clear the selection")
		}
	})
}

func TestValidate_SelfHealsEmptyQueue(t *testing.T) {
	r, store, rb := testRegistry(t, models.Document{Path: "a.md"})
	ns, _ := r.Create()

	if err := r.ValidateRulesAndSave(ns.ID); err != nil {
		t.Fatalf("ValidateRulesAndSave: %v", err)
	}
	if rb.calls != 1 {
		t.Errorf("rebuild calls = %d, want 1", rb.calls)
	}
	stored, _ := store.NoteSet(ns.ID)
	if len(stored.ValidationErrors) != 0 {
		t.Errorf("validation errors = %v", stored.ValidationErrors)
	}
}

func TestValidate_RulesMatchNothing(t *testing.T) {
	r, store, rb := testRegistry(t) // no documents
	ns, _ := r.Create()

	if err := r.ValidateRulesAndSave(ns.ID); err != nil {
		t.Fatalf("ValidateRulesAndSave: %v", err)
	}
	if rb.calls != 0 {
		t.Error("rebuild must not run when the rules match nothing")
	}
	stored, _ := store.NoteSet(ns.ID)
	if !stored.HasValidationError(models.ValidationQueueEmpty) {
		t.Error("expected queue_empty")
	}
	if !stored.HasValidationError(models.ValidationRulesMatchNothing) {
		t.Error("expected rules_match_nothing")
	}
}

func TestValidate_BadCustomQuery(t *testing.T) {
	r, store, rb := testRegistry(t, models.Document{Path: "a.md"})
	ns, _ := r.Create()
	ns.CustomQuery = "#unc losed ("
	rb.query.badExpr = ns.CustomQuery

	if err := r.Update(ns); err != nil {
		t.Fatalf("Update: %v", err)
	}
	stored, _ := store.NoteSet(ns.ID)
	if !stored.HasValidationError(models.ValidationCustomQueryBad) {
		t.Errorf("validation errors = %v", stored.ValidationErrors)
	}
}

func TestRefreshStats(t *testing.T) {
	now := time.Now()
	docs := []models.Document{
		{Path: "a.md", Fields: map[string]any{"reviewed": now.AddDate(0, 0, -3).Format(models.DateLayout)}},
		{Path: "b.md", Fields: map[string]any{"reviewed": now.AddDate(0, 0, -20).Format(models.DateLayout)}},
		{Path: "c.md"},
	}
	r, store, _ := testRegistry(t, docs...)
	ns, _ := r.Create()

	if err := r.RefreshStats(ns.ID, "reviewed"); err != nil {
		t.Fatalf("RefreshStats: %v", err)
	}
	stored, _ := store.NoteSet(ns.ID)
	if stored.Stats.TotalCount != 3 {
		t.Errorf("total = %d", stored.Stats.TotalCount)
	}
	if stored.Stats.NotReviewedCount != 1 {
		t.Errorf("not reviewed = %d", stored.Stats.NotReviewedCount)
	}
	if stored.Stats.ReviewedLast7DaysCount != 1 {
		t.Errorf("last 7 days = %d", stored.Stats.ReviewedLast7DaysCount)
	}
	if stored.Stats.ReviewedLast30Days != 2 {
		t.Errorf("last 30 days = %d", stored.Stats.ReviewedLast30Days)
	}
}
