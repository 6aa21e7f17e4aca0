package lexical

// LexicalRoot represents the top-level structure
type LexicalRoot struct {
	Root Node `json:"root"`
}

// Node represents any node in the Lexical tree. Only the fields that matter
// for plain-text extraction are kept; formatting attributes are ignored.
type Node struct {
	Type     string `json:"type"`
	Version  int    `json:"version"`
	Children []Node `json:"children,omitempty"`

	// Text specific
	Text string `json:"text,omitempty"`

	// List specific
	ListType string `json:"listType,omitempty"` // check, bullet, number
}
