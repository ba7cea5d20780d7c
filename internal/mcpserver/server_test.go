package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/notes"
	"github.com/starford/raido/internal/noteset"
	"github.com/starford/raido/internal/review"
	"github.com/starford/raido/internal/settings"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/workspace"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	vaultDir := t.TempDir()
	_ = os.MkdirAll(filepath.Join(vaultDir, "inbox"), 0o755)
	note := "---\ntags: [book]\n---\n# A Book\n"
	_ = os.WriteFile(filepath.Join(vaultDir, "inbox", "a.md"), []byte(note), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, "inbox", "b.md"), []byte(note), 0o644)

	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "raido-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	idx := index.NewService(db, store, logger)
	if err := idx.Reinitialize(); err != nil {
		t.Fatal(err)
	}

	state, err := settings.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}

	broker := sse.NewBroker()
	t.Cleanup(broker.Close)
	host := workspace.NewLocal(store, broker, logger)

	notesSvc := notes.NewService(store, idx, state, logger)
	builder := review.NewQueueBuilder(idx, state, logger)
	registry := noteset.NewRegistry(state, idx, builder, logger)
	session := review.NewSession(state, builder, notesSvc, store, host, registry, logger)

	return New(registry, session, notesSvc, idx, state), vaultDir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_note_sets":
		result, err = srv.listNoteSets(ctx, req)
	case "select_note_set":
		result, err = srv.selectNoteSet(ctx, req)
	case "start_review":
		result, err = srv.startReview(ctx, req)
	case "mark_reviewed":
		result, err = srv.markReviewed(ctx, req)
	case "skip_note":
		result, err = srv.skipNote(ctx, req)
	case "reset_queue":
		result, err = srv.resetQueue(ctx, req)
	case "set_review_frequency":
		result, err = srv.setReviewFrequency(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func createBookSet(t *testing.T, srv *Server) string {
	t.Helper()
	ns, err := srv.registry.Create()
	if err != nil {
		t.Fatal(err)
	}
	ns.Name = "Books"
	ns.Tags = []string{"book"}
	if err := srv.registry.Update(ns); err != nil {
		t.Fatal(err)
	}
	return ns.ID
}

func TestListNoteSets(t *testing.T) {
	srv, _ := testServer(t)
	id := createBookSet(t, srv)

	r := callTool(t, srv, "list_note_sets", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, id) || !strings.Contains(text, "Books") {
		t.Errorf("list = %q", text)
	}
}

func TestSelectAndStartReview(t *testing.T) {
	srv, _ := testServer(t)
	id := createBookSet(t, srv)

	r := callTool(t, srv, "select_note_set", map[string]interface{}{"id": id})
	if r.IsError {
		t.Fatalf("select failed: %q", resultText(r))
	}

	r = callTool(t, srv, "start_review", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("start failed: %q", resultText(r))
	}
}

func TestStartReview_NothingSelected(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "start_review", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error with no note set selected")
	}
}

func TestMarkReviewed(t *testing.T) {
	srv, vaultDir := testServer(t)
	id := createBookSet(t, srv)

	r := callTool(t, srv, "mark_reviewed", map[string]interface{}{
		"id":   id,
		"path": "inbox/a.md",
	})
	if r.IsError {
		t.Fatalf("mark_reviewed failed: %q", resultText(r))
	}

	content, err := os.ReadFile(filepath.Join(vaultDir, "inbox", "a.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "reviewed: ") {
		t.Errorf("note missing reviewed field: %q", content)
	}
}

func TestSkipAndResetQueue(t *testing.T) {
	srv, _ := testServer(t)
	id := createBookSet(t, srv)

	r := callTool(t, srv, "skip_note", map[string]interface{}{"id": id, "path": "inbox/a.md"})
	if r.IsError {
		t.Fatalf("skip failed: %q", resultText(r))
	}
	ns, _ := srv.registry.Get(id)
	if ns.Queue.Len() != 1 {
		t.Errorf("queue len = %d, want 1", ns.Queue.Len())
	}

	r = callTool(t, srv, "reset_queue", map[string]interface{}{"id": id})
	text := resultText(r)
	if !strings.Contains(text, "2 notes pending") {
		t.Errorf("reset = %q", text)
	}
}

func TestSetReviewFrequency(t *testing.T) {
	srv, vaultDir := testServer(t)

	r := callTool(t, srv, "set_review_frequency", map[string]interface{}{
		"path":      "inbox/a.md",
		"frequency": "high",
	})
	if r.IsError {
		t.Fatalf("set_review_frequency failed: %q", resultText(r))
	}
	content, _ := os.ReadFile(filepath.Join(vaultDir, "inbox", "a.md"))
	if !strings.Contains(string(content), "review-frequency: high") {
		t.Errorf("content = %q", content)
	}

	r = callTool(t, srv, "set_review_frequency", map[string]interface{}{
		"path":      "inbox/a.md",
		"frequency": "weekly",
	})
	if !r.IsError {
		t.Error("invalid frequency must be rejected")
	}
}

func TestSearchNotes(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "Book"})
	text := resultText(r)
	if !strings.Contains(text, "inbox/a.md") {
		t.Errorf("search = %q", text)
	}
}
