// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the review commands for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/notes"
	"github.com/starford/raido/internal/noteset"
	"github.com/starford/raido/internal/review"
	"github.com/starford/raido/internal/settings"
)

// Server wraps the MCP server with Raido review tools.
type Server struct {
	mcp      *server.MCPServer
	registry *noteset.Registry
	session  *review.Session
	notes    *notes.Service
	idx      *index.Service
	store    *settings.Store
}

// New creates a new MCP server with all review tools registered.
func New(registry *noteset.Registry, session *review.Session, notesSvc *notes.Service, idx *index.Service, store *settings.Store) *Server {
	s := &Server{
		registry: registry,
		session:  session,
		notes:    notesSvc,
		idx:      idx,
		store:    store,
	}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_note_sets",
		mcp.WithDescription("List all note sets with their rules, queue sizes, and validation state."),
	), s.listNoteSets)

	s.mcp.AddTool(mcp.NewTool("select_note_set",
		mcp.WithDescription("Select the note set that review commands operate on by default."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note set id")),
	), s.selectNoteSet)

	s.mcp.AddTool(mcp.NewTool("start_review",
		mcp.WithDescription("Start or continue reviewing the current note set: opens the next note in its queue."),
		mcp.WithString("id", mcp.Description("Note set id (defaults to the selected one)")),
	), s.startReview)

	s.mcp.AddTool(mcp.NewTool("mark_reviewed",
		mcp.WithDescription("Mark a note as reviewed today and advance the queue."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative note path (e.g. folder/note.md)")),
		mcp.WithString("id", mcp.Description("Note set id (defaults to the selected one)")),
	), s.markReviewed)

	s.mcp.AddTool(mcp.NewTool("skip_note",
		mcp.WithDescription("Skip a note without marking it reviewed; it returns on the next queue cycle."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative note path")),
		mcp.WithString("id", mcp.Description("Note set id (defaults to the selected one)")),
	), s.skipNote)

	s.mcp.AddTool(mcp.NewTool("open_random_note",
		mcp.WithDescription("Open a uniformly random note from the current review queue without removing it."),
		mcp.WithString("id", mcp.Description("Note set id (defaults to the selected one)")),
	), s.openRandomNote)

	s.mcp.AddTool(mcp.NewTool("reset_queue",
		mcp.WithDescription("Rebuild a note set's review queue from its rules and re-run validation."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note set id")),
	), s.resetQueue)

	s.mcp.AddTool(mcp.NewTool("set_review_frequency",
		mcp.WithDescription("Set a note's review frequency: high, normal, low, or ignore (exclude from review)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative note path")),
		mcp.WithString("frequency", mcp.Required(), mcp.Description("One of: high, normal, low, ignore")),
	), s.setReviewFrequency)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through notes content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	// Resource: note-set rule reference.
	s.mcp.AddResource(
		mcp.NewResource("raido://note-set-rules", "Note Set Rule Reference",
			mcp.WithResourceDescription("How note-set rules compile to query expressions and how review priority is computed."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRuleReferenceResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listNoteSets(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sets := s.registry.List()
	out, _ := json.MarshalIndent(sets, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) selectNoteSet(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.registry.Get(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("note set not found: %s", id)), nil
	}
	err = s.store.Update(func(st *settings.Settings) error {
		st.CurrentNoteSetID = id
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("selected: %s", id)), nil
}

func (s *Server) startReview(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := s.noteSetID(req)
	if !ok {
		return mcp.NewToolResultError("no note set selected; pass id or call select_note_set"), nil
	}
	if err := s.session.StartReview(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("review started"), nil
}

func (s *Server) markReviewed(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, ok := s.noteSetID(req)
	if !ok {
		return mcp.NewToolResultError("no note set selected; pass id or call select_note_set"), nil
	}
	if err := s.session.ReviewNote(path, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("marked reviewed: %s", path)), nil
}

func (s *Server) skipNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, ok := s.noteSetID(req)
	if !ok {
		return mcp.NewToolResultError("no note set selected; pass id or call select_note_set"), nil
	}
	if err := s.session.SkipNote(path, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("skipped: %s", path)), nil
}

func (s *Server) openRandomNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := s.noteSetID(req)
	if !ok {
		return mcp.NewToolResultError("no note set selected; pass id or call select_note_set"), nil
	}
	if err := s.session.OpenRandomNoteInQueue(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("opened a random note from the queue"), nil
}

func (s *Server) resetQueue(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.session.ResetNotesetQueue(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ns, err := s.registry.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("note set not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("queue reset: %d notes pending", ns.Queue.Len())), nil
}

func (s *Server) setReviewFrequency(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("frequency")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	freq, err := models.ParseReviewFrequency(raw)
	if err != nil || freq == "" {
		return mcp.NewToolResultError("frequency must be one of: high, normal, low, ignore"), nil
	}
	if err := s.notes.SetReviewFrequency(path, freq); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("frequency of %s set to %s", path, freq)), nil
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.idx.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "%s\t%s\n", r.Path, r.Title)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) readRuleReferenceResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://note-set-rules",
			MIMEType: "text/markdown",
			Text:     RuleReference,
		},
	}, nil
}

// noteSetID returns the note set targeted by a tool call: the explicit id
// argument when present, otherwise the selected note set.
func (s *Server) noteSetID(req mcp.CallToolRequest) (string, bool) {
	if id, err := req.RequireString("id"); err == nil && id != "" {
		return id, true
	}
	ns, err := s.store.CurrentNoteSet()
	if err != nil {
		return "", false
	}
	return ns.ID, true
}
