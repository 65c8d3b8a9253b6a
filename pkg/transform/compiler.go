package transform

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/forge/pkg/document"
	"mercator-hq/forge/pkg/engine"
	"mercator-hq/forge/pkg/source"
)

// Options controls a single compilation.
type Options struct {
	// SystemID overrides the source's system ID.
	SystemID string

	// Params overrides declared static parameters. Every key must be
	// declared in the program's params section.
	Params map[string]string
}

// Compiler compiles YAML transformation programs. A Compiler holds no
// per-compilation state and is safe for concurrent use.
type Compiler struct{}

// NewCompiler creates a compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// Compile builds a program bound to e. Every structural problem is
// collected into a single *CompilationError.
func (c *Compiler) Compile(e *engine.Engine, src *source.StreamSource, opts Options) (*Program, error) {
	start := time.Now()

	systemID := opts.SystemID
	if systemID == "" {
		systemID = src.SystemID()
	}

	dec := yaml.NewDecoder(src.Reader())
	dec.KnownFields(true)

	var yp yamlProgram
	if err := dec.Decode(&yp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &CompilationError{
				SystemID: systemID,
				Problems: []Problem{{Message: "program is empty"}},
			}
		}
		return nil, &CompilationError{
			SystemID: systemID,
			Problems: []Problem{{Line: yamlErrorLine(err), Message: err.Error()}},
			Cause:    err,
		}
	}

	b := &builder{systemID: systemID}
	prog := b.build(e, &yp, opts)
	if len(b.problems) > 0 {
		return nil, &CompilationError{SystemID: systemID, Problems: b.problems}
	}

	if logger := e.Logger(); logger != nil {
		elapsed := time.Since(start)
		if e.BoolFeature(engine.FeatureTiming) {
			logger.Info("program compiled",
				"system_id", systemID,
				"program", prog.name,
				"rule_count", len(prog.rules),
				"duration", elapsed,
			)
		} else {
			logger.Debug("program compiled",
				"system_id", systemID,
				"program", prog.name,
				"rule_count", len(prog.rules),
			)
		}
	}

	return prog, nil
}

// builder turns the intermediate structure into a Program, accumulating
// problems instead of failing on the first one.
type builder struct {
	systemID string
	problems []Problem
}

func (b *builder) addProblem(line, column int, format string, args ...any) {
	b.problems = append(b.problems, Problem{
		Line:    line,
		Column:  column,
		Message: fmt.Sprintf(format, args...),
	})
}

func (b *builder) build(e *engine.Engine, yp *yamlProgram, opts Options) *Program {
	name := yp.Name
	if name == "" {
		name = b.systemID
	}
	if name == "" {
		name = "anonymous"
	}

	params := make(map[string]string, len(yp.Params))
	for k, v := range yp.Params {
		params[k] = v
	}
	overrides := make([]string, 0, len(opts.Params))
	for k := range opts.Params {
		overrides = append(overrides, k)
	}
	sort.Strings(overrides)
	for _, k := range overrides {
		if _, declared := yp.Params[k]; !declared {
			b.addProblem(0, 0, "parameter %q is not declared by the program", k)
			continue
		}
		params[k] = opts.Params[k]
	}

	prog := &Program{
		engine:      e,
		name:        name,
		description: yp.Description,
		systemID:    b.systemID,
		params:      params,
		rules:       make([]rule, 0, len(yp.Rules)),
	}

	for i := range yp.Rules {
		if r, ok := b.buildRule(&yp.Rules[i], i+1, params); ok {
			prog.rules = append(prog.rules, r)
		}
	}

	return prog
}

func (b *builder) buildRule(yr *yamlRule, index int, params map[string]string) (rule, bool) {
	line, col := yr.line, yr.column

	for _, key := range yr.extra {
		b.addProblem(line, col, "rule %d: unknown operation %q", index, key)
	}

	ops := 0
	for _, set := range []bool{yr.Set != nil, yr.Delete != nil, yr.Rename != nil, yr.Copy != nil} {
		if set {
			ops++
		}
	}
	if ops != 1 {
		if len(yr.extra) == 0 || ops > 1 {
			b.addProblem(line, col, "rule %d: must define exactly one of set, delete, rename, copy (found %d)", index, ops)
		}
		return rule{}, false
	}

	r := rule{index: index, line: line, column: col}
	ok := true
	path := func(field, s string) Path {
		p, err := parsePath(s)
		if err != nil {
			b.addProblem(line, col, "rule %d: %s: %v", index, field, err)
			ok = false
		}
		return p
	}

	switch {
	case yr.Set != nil:
		r.op = OpSet
		r.path = path("path", yr.Set.Path)
		if yr.Set.Value.Kind == 0 {
			b.addProblem(line, col, "rule %d: set requires a value", index)
			ok = false
			break
		}
		value := document.Clone(&yr.Set.Value)
		if err := substituteParams(value, params); err != nil {
			b.addProblem(value.Line, value.Column, "rule %d: %v", index, err)
			ok = false
		}
		r.value = value
	case yr.Delete != nil:
		r.op = OpDelete
		r.path = path("path", yr.Delete.Path)
	case yr.Rename != nil:
		r.op = OpRename
		r.path = path("path", yr.Rename.Path)
		switch {
		case yr.Rename.To == "":
			b.addProblem(line, col, "rule %d: rename requires a target key", index)
			ok = false
		case strings.Contains(yr.Rename.To, "."):
			b.addProblem(line, col, "rule %d: rename target %q must be a single key", index, yr.Rename.To)
			ok = false
		}
		r.newKey = yr.Rename.To
	case yr.Copy != nil:
		r.op = OpCopy
		r.path = path("from", yr.Copy.From)
		r.to = path("to", yr.Copy.To)
	}

	return r, ok
}

// substituteParams replaces "$name" scalars with parameter values. "$$"
// escapes a literal dollar sign.
func substituteParams(n *yaml.Node, params map[string]string) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.HasPrefix(n.Value, "$") {
		if strings.HasPrefix(n.Value, "$$") {
			n.Value = n.Value[1:]
			return nil
		}
		name := n.Value[1:]
		v, ok := params[name]
		if !ok {
			return fmt.Errorf("undefined parameter %q", name)
		}
		n.Value = v
		n.Style = 0
		return nil
	}
	for _, c := range n.Content {
		if err := substituteParams(c, params); err != nil {
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
