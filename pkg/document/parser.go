package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/forge/pkg/engine"
	"mercator-hq/forge/pkg/source"
)

// Options controls a single parse.
type Options struct {
	// SystemID overrides the source's system ID.
	SystemID string
}

// Parser parses YAML sources into Document trees. A Parser holds no
// per-parse state and is safe for concurrent use.
type Parser struct {
	maxFileSize int64 // Maximum source size in bytes (default: source.MaxSize)
}

// NewParser creates a parser with default limits.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: source.MaxSize,
	}
}

// WithMaxFileSize sets the maximum source size.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// Parse builds a document bound to e. The engine's lineNumbering,
// stripWhitespace and maxNestingDepth features shape the resulting tree.
func (p *Parser) Parse(e *engine.Engine, src *source.StreamSource, opts Options) (*Document, error) {
	start := time.Now()

	systemID := opts.SystemID
	if systemID == "" {
		systemID = src.SystemID()
	}

	if int64(src.Len()) > p.maxFileSize {
		return nil, &ParseError{
			SystemID: systemID,
			Message:  fmt.Sprintf("size %d exceeds maximum %d bytes", src.Len(), p.maxFileSize),
		}
	}

	var node yaml.Node
	if err := yaml.Unmarshal(src.Bytes(), &node); err != nil {
		return nil, &ParseError{
			SystemID: systemID,
			Line:     yamlErrorLine(err),
			Message:  "YAML parsing failed",
			Cause:    err,
		}
	}

	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return nil, &ParseError{
			SystemID: systemID,
			Message:  "document is empty",
		}
	}
	root := node.Content[0]

	w := walker{
		systemID:      systemID,
		maxDepth:      int(e.NumberFeature(engine.FeatureMaxNestingDepth)),
		strip:         e.StringFeature(engine.FeatureStripWhitespace),
		lineNumbering: e.BoolFeature(engine.FeatureLineNumbering),
	}
	if err := w.walk(root, 1); err != nil {
		return nil, err
	}

	doc := New(e, root, systemID)

	if logger := e.Logger(); logger != nil {
		elapsed := time.Since(start)
		if e.BoolFeature(engine.FeatureTiming) {
			logger.Info("document parsed", "system_id", systemID, "duration", elapsed)
		} else {
			logger.Debug("document parsed", "system_id", systemID)
		}
	}

	return doc, nil
}

// walker applies engine features to a freshly parsed tree in place.
type walker struct {
	systemID      string
	maxDepth      int
	strip         string
	lineNumbering bool
}

func (w *walker) walk(n *yaml.Node, depth int) error {
	container := n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode
	if container && w.maxDepth > 0 && depth > w.maxDepth {
		return &ParseError{
			SystemID: w.systemID,
			Line:     n.Line,
			Column:   n.Column,
			Message:  fmt.Sprintf("nesting depth exceeds maximum %d", w.maxDepth),
		}
	}

	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		switch w.strip {
		case engine.StripAll:
			n.Value = strings.TrimSpace(n.Value)
		case engine.StripIgnorable:
			if strings.TrimSpace(n.Value) == "" {
				n.Value = ""
			}
		}
	}

	if !w.lineNumbering {
		n.Line, n.Column = 0, 0
	}

	// Alias targets are walked where they are anchored.
	if n.Kind == yaml.AliasNode {
		return nil
	}

	childDepth := depth
	if container {
		childDepth = depth + 1
	}
	for _, child := range n.Content {
		if err := w.walk(child, childDepth); err != nil {
			return err
		}
	}
	return nil
}

// yamlErrorLine extracts the first line number from a yaml.v3 error.
func yamlErrorLine(err error) int {
	m := yamlLinePattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	line, _ := strconv.Atoi(m[1])
	return line
}
