package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/primops/internal/compiler"
	"github.com/roach88/primops/internal/ir"
	"github.com/roach88/primops/internal/ops"
)

// Scenario defines a conformance scenario: a flow of literal calls with
// expected outcomes, plus assertions over the resulting trace.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description,omitempty"`

	// FlowToken is the fixed flow token for the run.
	// If empty, "test-flow-default" is used.
	FlowToken string `yaml:"flow_token,omitempty"`

	// ContinueOnFailure evaluates the whole flow even after a mismatch.
	ContinueOnFailure bool `yaml:"continue_on_failure,omitempty"`

	// Flow is the ordered list of calls.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Source is the file the scenario was loaded from.
	Source string `yaml:"-"`
}

// FlowStep is one call and its expected outcome.
type FlowStep struct {
	// Invoke is a catalog operation name or alias.
	Invoke string `yaml:"invoke"`

	// Args holds both operands.
	Args Operands `yaml:"args"`

	// Expect specifies the expected completion.
	// If nil, the step is evaluated and traced but not checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Line is the source line of the step, when known.
	Line int `yaml:"-"`
}

// Operands holds the two int32 arguments of a call. Pointers distinguish
// a missing operand from zero.
type Operands struct {
	Lhs *int32 `yaml:"lhs"`
	Rhs *int32 `yaml:"rhs"`
}

// ExpectClause specifies the expected completion.
type ExpectClause struct {
	// Case is the expected output case. Empty means Success.
	Case string `yaml:"case,omitempty"`

	// Value is the expected result. Only valid for Success.
	Value *int32 `yaml:"value,omitempty"`
}

// OutputCase returns the expected output case, defaulting to Success.
func (e *ExpectClause) OutputCase() string {
	if e.Case == "" {
		return ir.CaseSuccess
	}
	return e.Case
}

// Assertion validates the final trace.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, outcome_count.
	Type string `yaml:"type"`

	// Action is the operation name (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Args are the expected operands (trace_contains). Subset match.
	Args *Operands `yaml:"args,omitempty"`

	// Actions is the expected first-invocation order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Case is the output case to count (outcome_count).
	Case string `yaml:"case,omitempty"`

	// Count is the expected number of occurrences (trace_count, outcome_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertOutcomeCount  = "outcome_count"
)

// ErrNoScenarios is returned when a directory holds no scenario files.
var ErrNoScenarios = errors.New("no scenario files found")

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	scenario.Source = path
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := scenario.annotateFlow(data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// annotateFlow records the source line of each flow step and rejects
// operands and values that are not integer literals, in flow steps and in
// assertion args. yaml.v3 would otherwise truncate 1.5 to 1 when decoding
// into int32.
func (s *Scenario) annotateFlow(data []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil || len(root.Content) == 0 {
		return nil
	}
	doc := root.Content[0]

	if flow := mappingValue(doc, "flow"); flow != nil {
		for i, step := range flow.Content {
			if i < len(s.Flow) {
				s.Flow[i].Line = step.Line
			}
			prefix := fmt.Sprintf("flow[%d]", i)
			if err := requireIntegers(prefix, step, "args", "lhs", "rhs"); err != nil {
				return err
			}
			if err := requireIntegers(prefix, step, "expect", "value"); err != nil {
				return err
			}
		}
	}

	if assertions := mappingValue(doc, "assertions"); assertions != nil {
		for i, a := range assertions.Content {
			if err := requireIntegers(fmt.Sprintf("assertions[%d]", i), a, "args", "lhs", "rhs"); err != nil {
				return err
			}
		}
	}
	return nil
}

// requireIntegers checks that each parent.key scalar under n, when present,
// is tagged !!int.
func requireIntegers(prefix string, n *yaml.Node, parent string, keys ...string) error {
	p := mappingValue(n, parent)
	for _, key := range keys {
		v := mappingValue(p, key)
		if v != nil && v.Tag != "!!int" {
			return fmt.Errorf("%s.%s.%s: expected integer, got %q", prefix, parent, key, v.Value)
		}
	}
	return nil
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// LoadSuiteFile compiles a CUE suite file into one scenario per suite.
func LoadSuiteFile(path string) ([]*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	suites, err := compiler.CompileSource(path, data)
	if err != nil {
		return nil, err
	}
	if verrs := compiler.Validate(suites); len(verrs) > 0 {
		return nil, fmt.Errorf("%s: invalid suite: %w", path, verrs[0])
	}

	scenarios := make([]*Scenario, 0, len(suites))
	for _, suite := range suites {
		scenario := FromSuite(suite)
		scenario.Source = path
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

// FromSuite converts a compiled suite into a scenario.
func FromSuite(suite ir.SuiteSpec) *Scenario {
	scenario := &Scenario{
		Name:        suite.Name,
		Description: suite.Description,
		FlowToken:   suite.FlowToken,
		Flow:        make([]FlowStep, 0, len(suite.Cases)),
	}
	for _, c := range suite.Cases {
		lhs, rhs := c.Lhs, c.Rhs
		step := FlowStep{
			Invoke: c.Op,
			Args:   Operands{Lhs: &lhs, Rhs: &rhs},
			Expect: &ExpectClause{Case: c.Fails, Value: c.Want},
			Line:   c.Line,
		}
		scenario.Flow = append(scenario.Flow, step)
	}
	return scenario
}

// LoadPath loads the scenarios in a .yaml, .yml, or .cue file.
func LoadPath(path string) ([]*Scenario, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		scenario, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		return []*Scenario{scenario}, nil
	case ".cue":
		return LoadSuiteFile(path)
	default:
		return nil, fmt.Errorf("%s: unsupported scenario file type", path)
	}
}

// FindScenarioFiles returns all scenario files under dir in lexical order.
// pattern, when non-empty, is matched against each file's base name.
func FindScenarioFiles(dir, pattern string) ([]string, error) {
	if pattern != "" {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// golden fixtures live next to scenarios
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".cue":
		default:
			return nil
		}
		if pattern != "" {
			if ok, _ := filepath.Match(pattern, d.Name()); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// LoadDir loads every scenario under dir. Scenario names must be unique
// because they name golden files.
func LoadDir(dir, pattern string) ([]*Scenario, error) {
	files, err := FindScenarioFiles(dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoScenarios)
	}

	var all []*Scenario
	seen := make(map[string]string)
	for _, file := range files {
		scenarios, err := LoadPath(file)
		if err != nil {
			return nil, err
		}
		for _, s := range scenarios {
			if prev, ok := seen[s.Name]; ok {
				return nil, fmt.Errorf("duplicate scenario name %q in %s and %s", s.Name, prev, file)
			}
			seen[s.Name] = file
		}
		all = append(all, scenarios...)
	}
	return all, nil
}

// ValidName reports whether name can name a golden file: a single path
// component that is neither "." nor "..".
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !ValidName(s.Name) {
		return fmt.Errorf("name %q must be a single file name component", s.Name)
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *FlowStep) error {
	if step.Invoke == "" {
		return fmt.Errorf("flow[%d]: invoke is required", index)
	}
	if _, ok := ops.Lookup(step.Invoke); !ok {
		return fmt.Errorf("flow[%d]: unknown operation %q", index, step.Invoke)
	}
	if step.Args.Lhs == nil || step.Args.Rhs == nil {
		return fmt.Errorf("flow[%d]: args must set both lhs and rhs", index)
	}
	if step.Expect == nil {
		return nil
	}
	outputCase := step.Expect.OutputCase()
	if !ir.ValidCase(outputCase) {
		return fmt.Errorf("flow[%d].expect: unknown case %q", index, outputCase)
	}
	if outputCase != ir.CaseSuccess && step.Expect.Value != nil {
		return fmt.Errorf("flow[%d].expect: case %s cannot carry a value", index, outputCase)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
		return validateActionName(index, a.Action)
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
		for _, action := range a.Actions {
			if err := validateActionName(index, action); err != nil {
				return err
			}
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
		return validateActionName(index, a.Action)
	case AssertOutcomeCount:
		if !ir.ValidCase(a.Case) {
			return fmt.Errorf("assertions[%d]: unknown case %q for outcome_count", index, a.Case)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for outcome_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func validateActionName(index int, action string) error {
	if _, ok := ops.Lookup(action); !ok {
		return fmt.Errorf("assertions[%d]: unknown operation %q", index, action)
	}
	return nil
}
