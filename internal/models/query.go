package models

// Query is a compiled note-set query. MatchAll marks the "no rules at all"
// case: it means every document in the vault, which is a different state from
// an expression that happens to match nothing. Callers must branch on it
// explicitly instead of treating the empty expression as magic.
type Query struct {
	Expr     string
	MatchAll bool
}
