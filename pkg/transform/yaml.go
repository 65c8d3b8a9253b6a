package transform

import "gopkg.in/yaml.v3"

// yamlProgram is the intermediate structure of a program source before
// compilation.
type yamlProgram struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Params      map[string]string `yaml:"params"`
	Rules       []yamlRule        `yaml:"rules"`
}

// yamlRule holds one rule. Exactly one operation field must be set.
type yamlRule struct {
	Set    *yamlSet    `yaml:"set"`
	Delete *yamlPath   `yaml:"delete"`
	Rename *yamlRename `yaml:"rename"`
	Copy   *yamlCopy   `yaml:"copy"`

	// Internal tracking
	line   int
	column int
	extra  []string // unrecognized keys
}

type yamlSet struct {
	Path  string    `yaml:"path"`
	Value yaml.Node `yaml:"value"`
}

type yamlPath struct {
	Path string `yaml:"path"`
}

type yamlRename struct {
	Path string `yaml:"path"`
	To   string `yaml:"to"`
}

type yamlCopy struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

var knownOps = map[string]bool{
	string(OpSet):    true,
	string(OpDelete): true,
	string(OpRename): true,
	string(OpCopy):   true,
}

// UnmarshalYAML records the rule's location and any unrecognized keys.
func (r *yamlRule) UnmarshalYAML(n *yaml.Node) error {
	type plain yamlRule
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*r = yamlRule(p)
	r.line, r.column = n.Line, n.Column

	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if key := n.Content[i].Value; !knownOps[key] {
				r.extra = append(r.extra, key)
			}
		}
	}
	return nil
}
