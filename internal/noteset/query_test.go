package noteset

import (
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

func TestCompileQuery_TagsAnyAndAll(t *testing.T) {
	ns := &models.NoteSet{Tags: []string{"book", "article"}}
	q := CompileQuery(ns)
	if q.MatchAll || q.Expr != "#book or #article" {
		t.Errorf("expr = %q (matchAll=%v)", q.Expr, q.MatchAll)
	}

	ns.TagsJoinType = models.JoinAll
	q = CompileQuery(ns)
	if q.Expr != "#book and #article" {
		t.Errorf("expr = %q", q.Expr)
	}
}

func TestCompileQuery_NormalizesTags(t *testing.T) {
	ns := &models.NoteSet{Tags: []string{"#book", "article"}}
	q := CompileQuery(ns)
	if q.Expr != "#book or #article" {
		t.Errorf("expr = %q", q.Expr)
	}
}

func TestCompileQuery_FoldersQuotedAnyJoin(t *testing.T) {
	ns := &models.NoteSet{Folders: []string{"inbox", "projects/active"}}
	q := CompileQuery(ns)
	if q.Expr != `"inbox" or "projects/active"` {
		t.Errorf("expr = %q", q.Expr)
	}
}

func TestCompileQuery_TagsAndFoldersCombined(t *testing.T) {
	ns := &models.NoteSet{
		Tags:                  []string{"book"},
		Folders:               []string{"inbox"},
		FoldersToTagsJoinType: models.JoinAll,
	}
	q := CompileQuery(ns)
	if q.Expr != `(#book) and ("inbox")` {
		t.Errorf("expr = %q", q.Expr)
	}

	ns.FoldersToTagsJoinType = models.JoinAny
	q = CompileQuery(ns)
	if q.Expr != `(#book) or ("inbox")` {
		t.Errorf("expr = %q", q.Expr)
	}
}

func TestCompileQuery_CustomOverridesRules(t *testing.T) {
	ns := &models.NoteSet{
		Tags:        []string{"book"},
		Folders:     []string{"inbox"},
		CustomQuery: `#special and "deep/path"`,
	}
	q := CompileQuery(ns)
	if q.Expr != `#special and "deep/path"` {
		t.Errorf("custom query must be returned verbatim, got %q", q.Expr)
	}
}

func TestCompileQuery_NoRulesMatchesAll(t *testing.T) {
	q := CompileQuery(&models.NoteSet{})
	if !q.MatchAll {
		t.Error("empty rules should compile to a match-all query")
	}
	// Blank entries count as absent rules.
	q = CompileQuery(&models.NoteSet{Tags: []string{"  ", ""}, Folders: []string{" "}})
	if !q.MatchAll {
		t.Error("whitespace-only rules should compile to a match-all query")
	}
}

func TestNormalizeTag_Idempotent(t *testing.T) {
	if NormalizeTag("book") != "#book" {
		t.Error("missing # should be added")
	}
	if NormalizeTag(NormalizeTag("book")) != "#book" {
		t.Error("normalization must be idempotent")
	}
}

func TestMatchesRecency(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	doc := &models.Document{
		CreatedAt:  now.AddDate(0, 0, -10),
		ModifiedAt: now.AddDate(0, 0, -2),
	}

	if !MatchesRecency(&models.NoteSet{}, doc, now) {
		t.Error("no recency rules should always match")
	}
	if !MatchesRecency(&models.NoteSet{CreatedInLastNDays: 30}, doc, now) {
		t.Error("created 10 days ago should match a 30-day window")
	}
	if MatchesRecency(&models.NoteSet{CreatedInLastNDays: 7}, doc, now) {
		t.Error("created 10 days ago should not match a 7-day window")
	}
	if !MatchesRecency(&models.NoteSet{ModifiedInLastNDays: 7}, doc, now) {
		t.Error("modified 2 days ago should match a 7-day window")
	}
	if MatchesRecency(&models.NoteSet{CreatedInLastNDays: 30, ModifiedInLastNDays: 1}, doc, now) {
		t.Error("both rules must hold")
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName(&models.NoteSet{Name: "Books"}); got != "Books" {
		t.Errorf("name = %q", got)
	}
	if got := DisplayName(&models.NoteSet{Tags: []string{"book"}}); got != "#book" {
		t.Errorf("fallback = %q", got)
	}
	if got := DisplayName(&models.NoteSet{}); got != "blank note set" {
		t.Errorf("blank = %q", got)
	}
}
