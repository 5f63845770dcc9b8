package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/modkit/internal/value"
	"gopkg.in/yaml.v3"
)

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("document syntax error")

// Format identifies the syntax of a document.
type Format int

const (
	// FormatYAML covers YAML and JSON documents.
	FormatYAML Format = iota
	// FormatHCL covers HashiCorp Configuration Language documents.
	FormatHCL
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatHCL:
		return "hcl"
	}
	return ""
}

// FormatFor picks the format from a file name's extension.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return FormatHCL
	}
	return FormatYAML
}

// Parse decodes data, using the file name to pick the syntax and to label
// diagnostics. The result is nil for an empty or null document, a value.Map
// for a map document and a scalar or []any otherwise.
func Parse(filename string, data []byte) (any, error) {
	switch FormatFor(filename) {
	case FormatHCL:
		return parseHCL(filename, data)
	default:
		return parseYAML(filename, data)
	}
}

// ParseMap is Parse for callers that only accept map documents. A null
// document yields an empty map; any other non-map document is an error.
func ParseMap(filename string, data []byte) (value.Map, error) {
	doc, err := Parse(filename, data)
	if err != nil {
		return nil, err
	}
	switch m := doc.(type) {
	case nil:
		return value.Map{}, nil
	case value.Map:
		return m, nil
	default:
		return nil, fmt.Errorf("%s: top-level document is %T, not a map", filename, doc)
	}
}

func parseYAML(filename string, data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSyntax, filename, err)
	}
	if root.Kind == 0 {
		return nil, nil
	}

	keepTimestampsAsText(&root)

	var doc any
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSyntax, filename, err)
	}
	return value.Normalize(doc), nil
}

// keepTimestampsAsText retags timestamp scalars as strings so dates decode to
// the text that was written rather than time.Time.
func keepTimestampsAsText(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, child := range n.Content {
		keepTimestampsAsText(child)
	}
}
