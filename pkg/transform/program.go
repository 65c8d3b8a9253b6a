package transform

import (
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"mercator-hq/forge/pkg/document"
	"mercator-hq/forge/pkg/engine"
)

// Op names a rule operation.
type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
	OpRename Op = "rename"
	OpCopy   Op = "copy"
)

// rule is a compiled rule.
type rule struct {
	op     Op
	index  int
	line   int
	column int
	path   Path       // target (set, delete, rename) or source (copy)
	to     Path       // copy destination
	newKey string     // rename target
	value  *yaml.Node // set value, parameters already substituted
}

// RuleInfo describes a compiled rule.
type RuleInfo struct {
	Op   Op
	Path string
	To   string
	Line int
}

// Program is a compiled transformation bound to the engine that compiled
// it. Programs are immutable and safe for concurrent use.
type Program struct {
	engine      *engine.Engine
	name        string
	description string
	systemID    string
	params      map[string]string
	rules       []rule
}

// Engine returns the engine the program is bound to.
func (p *Program) Engine() *engine.Engine {
	if p == nil {
		return nil
	}
	return p.engine
}

// Name returns the program name.
func (p *Program) Name() string { return p.name }

// Description returns the program description.
func (p *Program) Description() string { return p.description }

// SystemID returns the identifier of the program's source.
func (p *Program) SystemID() string { return p.systemID }

// Params returns the effective static parameters.
func (p *Program) Params() map[string]string { return maps.Clone(p.params) }

// Rules describes the compiled rules in order.
func (p *Program) Rules() []RuleInfo {
	out := make([]RuleInfo, len(p.rules))
	for i, r := range p.rules {
		out[i] = RuleInfo{Op: r.op, Path: r.path.String(), Line: r.line}
		switch r.op {
		case OpRename:
			out[i].To = r.newKey
		case OpCopy:
			out[i].To = r.to.String()
		}
	}
	return out
}

// Apply runs the program against doc and returns the result tree, bound to
// the same engine. doc itself is not modified. A document bound to another
// engine is rejected with *IncompatibleEngineError before any work is done.
//
// A rule addressing a missing path is skipped, unless the engine's
// strictPaths feature is set or its recoveryPolicy is "fail", in which case
// Apply returns an *ApplyError.
func (p *Program) Apply(doc *document.Document) (*document.Document, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if doc.Engine() != p.engine {
		return nil, &IncompatibleEngineError{
			ProgramEngine:  engineID(p.engine),
			DocumentEngine: engineID(doc.Engine()),
		}
	}

	start := time.Now()
	strict := p.engine.BoolFeature(engine.FeatureStrictPaths) ||
		p.engine.StringFeature(engine.FeatureRecoveryPolicy) == engine.RecoveryFail
	logger := p.engine.Logger()

	root := doc.Root()
	skipped := 0
	for _, r := range p.rules {
		err := p.applyRule(root, r)
		if err == nil {
			continue
		}
		if errors.Is(err, errPathMissing) && !strict {
			skipped++
			if logger != nil {
				logger.Debug("rule skipped",
					"program", p.name,
					"rule", r.index,
					"op", string(r.op),
					"path", r.path.String(),
				)
			}
			continue
		}
		return nil, &ApplyError{
			Program: p.name,
			Rule:    r.index,
			Line:    r.line,
			Op:      r.op,
			Message: err.Error(),
		}
	}

	if logger != nil {
		if p.engine.BoolFeature(engine.FeatureTiming) {
			logger.Info("program applied",
				"program", p.name,
				"system_id", doc.SystemID(),
				"skipped_rules", skipped,
				"duration", time.Since(start),
			)
		} else {
			logger.Debug("program applied",
				"program", p.name,
				"system_id", doc.SystemID(),
				"skipped_rules", skipped,
			)
		}
	}

	return document.New(p.engine, root, doc.SystemID()), nil
}

func (p *Program) applyRule(root *yaml.Node, r rule) error {
	switch r.op {
	case OpSet:
		v, err := detach(r.value)
		if err != nil {
			return err
		}
		return setPath(root, r.path, v)
	case OpDelete:
		return deletePath(root, r.path)
	case OpRename:
		return renamePath(root, r.path, r.newKey)
	case OpCopy:
		n := lookup(root, r.path)
		if n == nil {
			return errPathMissing
		}
		v, err := detach(n)
		if err != nil {
			return err
		}
		return setPath(root, r.to, v)
	}
	return nil
}

func engineID(e *engine.Engine) uuid.UUID {
	if e == nil {
		return uuid.Nil
	}
	return e.ID()
}
