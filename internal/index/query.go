package index

import (
	"fmt"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// The query expression language understood by the index:
//
//	expr   := orTerm
//	orTerm := andTerm ("or" andTerm)*
//	andTerm:= atom ("and" atom)*
//	atom   := "#" tag | quoted-folder | bare-folder | "(" expr ")"
//
// A tag predicate matches a document carrying that tag; a folder predicate
// matches a document whose path lies inside the folder, nested paths
// included.

type exprNode interface {
	matches(doc *models.Document) bool
}

type andNode struct{ left, right exprNode }
type orNode struct{ left, right exprNode }
type tagNode struct{ tag string }
type folderNode struct{ folder string }

func (n andNode) matches(d *models.Document) bool { return n.left.matches(d) && n.right.matches(d) }
func (n orNode) matches(d *models.Document) bool  { return n.left.matches(d) || n.right.matches(d) }

func (n tagNode) matches(d *models.Document) bool {
	for _, t := range d.Tags {
		if t == n.tag {
			return true
		}
	}
	return false
}

func (n folderNode) matches(d *models.Document) bool {
	if n.folder == "" || n.folder == "/" {
		return true
	}
	return strings.HasPrefix(d.Path, n.folder+"/")
}

// parseQuery compiles an expression string into an evaluable tree.
// Malformed input is reported as apperr.ErrBadQuery.
func parseQuery(expr string) (exprNode, error) {
	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("%w: unexpected %q", apperr.ErrBadQuery, p.toks[p.pos].text)
	}
	return node, nil
}

type token struct {
	kind string // "tag", "folder", "and", "or", "lparen", "rparen"
	text string
}

func lex(expr string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '(':
			toks = append(toks, token{"lparen", "("})
			i++
		case c == ')':
			toks = append(toks, token{"rparen", ")"})
			i++
		case c == '#':
			j := i + 1
			for j < len(expr) && !strings.ContainsRune(" \t\n()", rune(expr[j])) {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("%w: empty tag", apperr.ErrBadQuery)
			}
			toks = append(toks, token{"tag", expr[i+1 : j]})
			i = j
		case c == '"':
			j := strings.IndexByte(expr[i+1:], '"')
			if j < 0 {
				return nil, fmt.Errorf("%w: unterminated string", apperr.ErrBadQuery)
			}
			toks = append(toks, token{"folder", expr[i+1 : i+1+j]})
			i += j + 2
		default:
			j := i
			for j < len(expr) && !strings.ContainsRune(" \t\n()", rune(expr[j])) {
				j++
			}
			word := expr[i:j]
			switch strings.ToLower(word) {
			case "and":
				toks = append(toks, token{"and", word})
			case "or":
				toks = append(toks, token{"or", word})
			default:
				// Unquoted folder path.
				toks = append(toks, token{"folder", word})
			}
			i = j
		}
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: empty expression", apperr.ErrBadQuery)
	}
	return toks, nil
}

type exprParser struct {
	toks []token
	pos  int
}

func (p *exprParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) parseOr() (exprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != "or" {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
}

func (p *exprParser) parseAnd() (exprNode, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != "and" {
			return left, nil
		}
		p.pos++
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
}

func (p *exprParser) parseAtom() (exprNode, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of expression", apperr.ErrBadQuery)
	}
	switch tok.kind {
	case "tag":
		p.pos++
		return tagNode{tok.text}, nil
	case "folder":
		p.pos++
		return folderNode{normalizeFolder(tok.text)}, nil
	case "lparen":
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		next, ok := p.peek()
		if !ok || next.kind != "rparen" {
			return nil, fmt.Errorf("%w: missing closing parenthesis", apperr.ErrBadQuery)
		}
		p.pos++
		return inner, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %q", apperr.ErrBadQuery, tok.text)
	}
}

func normalizeFolder(f string) string {
	return strings.Trim(strings.TrimSpace(f), "/")
}
