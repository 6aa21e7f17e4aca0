package lexical

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parser flattens Lexical editor state into plain prose. All formatting is
// dropped: block nodes become line breaks, inline nodes contribute only their
// text. The output feeds sentence segmentation, which only cares about prose.
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts a Lexical JSON string to plain text
func (p *Parser) Parse(jsonContent string) (string, error) {
	var root LexicalRoot
	if err := json.Unmarshal([]byte(jsonContent), &root); err != nil {
		return "", fmt.Errorf("failed to parse lexical json: %w", err)
	}

	var sb strings.Builder
	p.walkNode(root.Root, &sb)
	return strings.TrimRight(sb.String(), "\n"), nil
}

// ParseContent is a convenience function to parse a raw string.
// It attempts to parse as Lexical JSON; if it fails (not JSON or error), it
// returns the original string so plain-text payloads pass through untouched.
func ParseContent(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, `{"root":`) {
		return content
	}

	p := NewParser()
	text, err := p.Parse(trimmed)
	if err != nil {
		return content
	}
	return text
}

func (p *Parser) walkNode(node Node, sb *strings.Builder) {
	switch node.Type {
	case "text":
		sb.WriteString(node.Text)

	case "linebreak":
		sb.WriteString("\n")

	case "root":
		for _, child := range node.Children {
			p.walkNode(child, sb)
		}

	case "paragraph", "heading", "quote", "listitem", "tablerow":
		for _, child := range node.Children {
			p.walkNode(child, sb)
		}
		p.endBlock(sb)

	case "tablecell":
		for _, child := range node.Children {
			p.walkNode(child, sb)
		}
		sb.WriteString(" ")

	case "horizontalrule":
		p.endBlock(sb)

	default:
		// Links, lists, tables, unknown wrappers: recurse for their text.
		for _, child := range node.Children {
			p.walkNode(child, sb)
		}
	}
}

// endBlock terminates a block with a single newline, avoiding runs of blank
// lines from empty paragraphs.
func (p *Parser) endBlock(sb *strings.Builder) {
	out := sb.String()
	if out == "" || strings.HasSuffix(out, "\n") {
		return
	}
	sb.WriteString("\n")
}
