// Package metadata edits frontmatter fields in raw Markdown content without
// disturbing the rest of the document. Unlike parser, which reads frontmatter
// through YAML, this package works textually: every byte it does not have to
// touch stays exactly as it was.
package metadata

import (
	"fmt"
	"strings"
)

const delim = "---"

// Field is one frontmatter key-value pair to insert or update.
type Field struct {
	Name  string
	Value string
}

// SetFields returns content with each field inserted into, or updated inside,
// the leading frontmatter block. A document without a block gets one created
// as its first lines. Other fields and the body are preserved byte-for-byte.
func SetFields(content []byte, fields []Field) []byte {
	out := string(content)
	for _, f := range fields {
		out = setField(out, f)
	}
	return []byte(out)
}

func setField(content string, f Field) string {
	line := fmt.Sprintf("%s: %s", f.Name, f.Value)

	block, rest, nl, ok := splitBlock(content)
	if !ok {
		// No frontmatter: create a block at the top.
		return delim + "\n" + line + "\n" + delim + "\n" + content
	}

	lines := strings.Split(block, nl)
	for i, l := range lines {
		name, _, found := strings.Cut(l, ":")
		if found && strings.TrimSpace(name) == f.Name {
			lines[i] = line
			return delim + nl + strings.Join(lines, nl) + nl + delim + rest
		}
	}
	// Field absent: append to the end of the block.
	lines = append(lines, line)
	return delim + nl + strings.Join(lines, nl) + nl + delim + rest
}

// splitBlock splits content into the frontmatter block body (between the
// delimiters, no trailing newline) and everything after the closing delimiter
// (leading newline retained). nl is the document's line ending, either "\n"
// or "\r\n". ok is false when no well-formed block leads the document.
func splitBlock(content string) (block, rest, nl string, ok bool) {
	switch {
	case strings.HasPrefix(content, delim+"\n"):
		nl = "\n"
	case strings.HasPrefix(content, delim+"\r\n"):
		nl = "\r\n"
	default:
		return "", "", "", false
	}
	inner := content[len(delim)+len(nl):]
	idx := strings.Index(inner, nl+delim)
	if idx < 0 {
		return "", "", "", false
	}
	return inner[:idx], inner[idx+len(nl)+len(delim):], nl, true
}
