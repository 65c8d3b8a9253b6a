// Forge compiles YAML transformation programs and applies them to YAML
// documents through a single shared engine.
//
// Usage:
//
//	# Compile a program and show its rules
//	forge compile program.yaml
//
//	# Parse a document with line numbers retained
//	forge parse --set lineNumbering=true input.yaml
//
//	# Apply a program to several documents
//	forge transform --program program.yaml --param owner=platform a.yaml b.yaml
//
//	# List engine features and their current values
//	forge features --format json
//
//	# Use a configuration file and dump metrics on exit
//	forge transform --config forge.yaml --metrics -p program.yaml input.yaml
package main

func main() {
	Execute()
}
