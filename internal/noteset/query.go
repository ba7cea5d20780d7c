// Package noteset implements note-set definitions: compiling their rules to
// query expressions, CRUD over the persisted registry, and validation.
package noteset

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

// CompileQuery turns a note set's declarative rules into a query expression
// for the index. A non-empty custom query is returned verbatim and overrides
// everything else. A note set with no rules at all compiles to MatchAll,
// which is a distinct state from a query matching nothing.
func CompileQuery(ns *models.NoteSet) models.Query {
	if ns.HasCustomQuery() {
		return models.Query{Expr: ns.CustomQuery}
	}

	var tagExprs []string
	for _, t := range ns.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tagExprs = append(tagExprs, NormalizeTag(t))
		}
	}
	tags := strings.Join(tagExprs, fmt.Sprintf(" %s ", ns.TagsJoinType.Operator()))

	var folderExprs []string
	for _, f := range ns.Folders {
		if f = strings.TrimSpace(f); f != "" {
			folderExprs = append(folderExprs, fmt.Sprintf("%q", strings.Trim(f, `"`)))
		}
	}
	// A note matches if it is inside any of the listed folders.
	folders := strings.Join(folderExprs, " or ")

	switch {
	case tags != "" && folders != "":
		expr := fmt.Sprintf("(%s) %s (%s)", tags, ns.FoldersToTagsJoinType.Operator(), folders)
		return models.Query{Expr: expr}
	case tags != "":
		return models.Query{Expr: tags}
	case folders != "":
		return models.Query{Expr: folders}
	default:
		return models.Query{MatchAll: true}
	}
}

// NormalizeTag puts a tag into canonical leading-# form. Idempotent.
func NormalizeTag(tag string) string {
	if strings.HasPrefix(tag, "#") {
		return tag
	}
	return "#" + tag
}

// MatchesRecency applies the created/modified-in-last-N-days rules to one
// document. The index expression language has no uniform date support, so
// these run as a post-filter over resolved documents.
func MatchesRecency(ns *models.NoteSet, doc *models.Document, now time.Time) bool {
	if ns.CreatedInLastNDays > 0 {
		cutoff := now.AddDate(0, 0, -ns.CreatedInLastNDays)
		if doc.CreatedAt.Before(cutoff) {
			return false
		}
	}
	if ns.ModifiedInLastNDays > 0 {
		cutoff := now.AddDate(0, 0, -ns.ModifiedInLastNDays)
		if doc.ModifiedAt.Before(cutoff) {
			return false
		}
	}
	return true
}

// DisplayName is the user label: the explicit name when set, otherwise the
// compiled query expression.
func DisplayName(ns *models.NoteSet) string {
	if ns.Name != "" {
		return ns.Name
	}
	q := CompileQuery(ns)
	if q.MatchAll {
		return "blank note set"
	}
	return q.Expr
}

// Describe renders a human-readable summary of what the note set matches.
func Describe(ns *models.NoteSet) string {
	q := CompileQuery(ns)
	if q.MatchAll {
		return "matches all notes"
	}

	if ns.HasCustomQuery() {
		return fmt.Sprintf("matches notes selected by the query %q", ns.CustomQuery)
	}

	desc := "matches notes that "
	hasTags := len(ns.Tags) > 0
	hasFolders := len(ns.Folders) > 0
	if hasTags {
		quantifier := "any"
		if ns.TagsJoinType == models.JoinAll {
			quantifier = "all"
		}
		desc += fmt.Sprintf("contain %s of these tags: %s", quantifier, strings.Join(ns.Tags, ", "))
		if hasFolders {
			if ns.FoldersToTagsJoinType == models.JoinAll {
				desc += " and "
			} else {
				desc += " or "
			}
		}
	}
	if hasFolders {
		desc += fmt.Sprintf("are inside any of these folders (including nested): %s", strings.Join(ns.Folders, ", "))
	}
	return desc
}
