package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseError points at the step that could not be read.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}

	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func ParseFile(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	return Parse(data, path)
}

// Parse reads a YAML sequence of steps. Every step is validated, so a bad
// step fails the whole file before anything runs.
func Parse(data []byte, sourcePath string) ([]Step, error) {
	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, &ParseError{Path: sourcePath, Message: fmt.Sprintf("invalid steps: %v", err)}
	}

	if len(nodes) == 0 {
		return nil, &ParseError{Path: sourcePath, Line: 1, Message: "empty scenario"}
	}

	steps := make([]Step, 0, len(nodes))

	for i := range nodes {
		step, err := ParseStep(&nodes[i], sourcePath)
		if err != nil {
			return nil, err
		}

		steps = append(steps, step)
	}

	return steps, nil
}

// ParseLine reads a single step written as a YAML flow mapping, e.g.
// {action: click, locator: {css: "#go"}}.
func ParseLine(line string) (Step, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(line), &node); err != nil {
		return Step{}, &ParseError{Path: "input", Message: err.Error()}
	}

	if node.Kind != yaml.DocumentNode || len(node.Content) != 1 {
		return Step{}, &ParseError{Path: "input", Message: "expected one step"}
	}

	return ParseStep(node.Content[0], "input")
}

func ParseStep(node *yaml.Node, sourcePath string) (Step, error) {
	if node.Kind != yaml.MappingNode {
		return Step{}, &ParseError{Path: sourcePath, Line: node.Line, Message: "step must be a mapping"}
	}

	var step Step
	if err := node.Decode(&step); err != nil {
		return Step{}, &ParseError{Path: sourcePath, Line: node.Line, Message: err.Error()}
	}

	step.Line = node.Line

	if err := step.Validate(); err != nil {
		return Step{}, &ParseError{Path: sourcePath, Line: node.Line, Message: fmt.Sprintf("%s: %v", step.Action, err)}
	}

	return step, nil
}
