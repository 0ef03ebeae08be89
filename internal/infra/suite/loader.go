// Package suite loads grading suites from YAML files. A suite file names
// the scripts under test, their scripted input and the expected output;
// the file is validated against an embedded JSON schema before any test
// case is registered.
package suite

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/school-grader/school-grader/internal/domain/grading"
)

//go:embed suite.schema.json
var schemaData []byte

var (
	suiteSchema *jsonschema.Schema
	compileOnce sync.Once
	compileErr  error
)

func compileSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaData))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal suite schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("suite.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add suite schema resource: %w", err)
			return
		}

		suiteSchema, compileErr = compiler.Compile("suite.schema.json")
	})
	return suiteSchema, compileErr
}

type suiteFile struct {
	Tests []testEntry `yaml:"tests"`
}

type testEntry struct {
	Name        string      `yaml:"name"`
	Script      string      `yaml:"script"`
	Language    string      `yaml:"language"`
	Timeout     string      `yaml:"timeout"`
	Input       []string    `yaml:"input"`
	Expected    []yaml.Node `yaml:"expected"`
	FailMessage string      `yaml:"fail_message"`
}

// Load reads the suite file at path and registers every test case it
// declares. Script paths are resolved relative to the suite file.
func Load(path string) (*grading.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse builds a registry from raw suite bytes. Relative script paths are
// resolved against baseDir; an empty baseDir leaves them untouched.
func Parse(data []byte, baseDir string) (*grading.Registry, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var file suiteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, configErrorf("parse suite: %v", err)
	}

	registry := grading.NewRegistry()
	for _, entry := range file.Tests {
		tc, err := entry.toTestCase(baseDir)
		if err != nil {
			return nil, err
		}
		if err := registry.Add(tc); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// validate checks the suite against the embedded schema. YAML is converted
// to its JSON form first since the schema speaks JSON types.
func validate(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return configErrorf("parse suite: %v", err)
	}
	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return configErrorf("convert suite to JSON: %v", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonBytes))
	if err != nil {
		return configErrorf("convert suite to JSON: %v", err)
	}

	if err := schema.Validate(doc); err != nil {
		return configErrorf("suite validation failed: %v", err)
	}
	return nil
}

func (e testEntry) toTestCase(baseDir string) (grading.TestCase, error) {
	expected := make([]grading.Expectation, 0, len(e.Expected))
	for i := range e.Expected {
		expectation, err := parseExpectation(&e.Expected[i])
		if err != nil {
			return grading.TestCase{}, configErrorf("test %q: expected entry %d: %v", e.Name, i+1, err)
		}
		expected = append(expected, expectation)
	}

	var timeout time.Duration
	if e.Timeout != "" {
		parsed, err := time.ParseDuration(e.Timeout)
		if err != nil {
			return grading.TestCase{}, configErrorf("test %q: invalid timeout %q", e.Name, e.Timeout)
		}
		timeout = parsed
	}

	script := e.Script
	if baseDir != "" && !filepath.IsAbs(script) {
		script = filepath.Join(baseDir, script)
	}

	return grading.TestCase{
		Name:        e.Name,
		Script:      script,
		Language:    grading.Language(e.Language),
		MockInput:   e.Input,
		Expected:    expected,
		Timeout:     timeout,
		FailMessage: e.FailMessage,
	}, nil
}

func parseExpectation(node *yaml.Node) (grading.Expectation, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return grading.Exact(node.Value), nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return grading.Expectation{}, fmt.Errorf("exactly one comparison per entry")
		}
		return parseTagged(node.Content[0].Value, node.Content[1])
	default:
		return grading.Expectation{}, fmt.Errorf("entry must be a string or a single-key mapping")
	}
}

func parseTagged(kind string, value *yaml.Node) (grading.Expectation, error) {
	switch kind {
	case "exact":
		return scalarExpectation(value, grading.Exact)
	case "contains":
		return scalarExpectation(value, grading.Contains)
	case "case_insensitive":
		return scalarExpectation(value, grading.CaseInsensitive)
	case "whitespace_insensitive":
		return scalarExpectation(value, grading.WhitespaceInsensitive)
	case "almost_string":
		return parseAlmostString(value)
	case "almost_number":
		return parseAlmostNumber(value)
	case "combined":
		return parseCombined(value)
	default:
		return grading.Expectation{}, fmt.Errorf("unknown comparison %q", kind)
	}
}

func scalarExpectation(node *yaml.Node, build func(string) grading.Expectation) (grading.Expectation, error) {
	if node.Kind != yaml.ScalarNode {
		return grading.Expectation{}, fmt.Errorf("value must be a scalar")
	}
	return build(node.Value), nil
}

func parseAlmostString(node *yaml.Node) (grading.Expectation, error) {
	if node.Kind == yaml.ScalarNode {
		return grading.AlmostString(node.Value, grading.DefaultMaxDistance), nil
	}

	var params struct {
		Value       string `yaml:"value"`
		MaxDistance *int   `yaml:"max_distance"`
	}
	if err := node.Decode(&params); err != nil {
		return grading.Expectation{}, fmt.Errorf("almost_string: %v", err)
	}
	maxDistance := grading.DefaultMaxDistance
	if params.MaxDistance != nil {
		maxDistance = *params.MaxDistance
	}
	return grading.AlmostString(params.Value, maxDistance), nil
}

func parseAlmostNumber(node *yaml.Node) (grading.Expectation, error) {
	if node.Kind == yaml.ScalarNode {
		return grading.AlmostNumber(node.Value, grading.DefaultPrecision), nil
	}

	var params struct {
		Value     string `yaml:"value"`
		Precision *int   `yaml:"precision"`
	}
	if err := node.Decode(&params); err != nil {
		return grading.Expectation{}, fmt.Errorf("almost_number: %v", err)
	}
	precision := grading.DefaultPrecision
	if params.Precision != nil {
		precision = *params.Precision
	}
	return grading.AlmostNumber(params.Value, precision), nil
}

func parseCombined(node *yaml.Node) (grading.Expectation, error) {
	var params struct {
		Value string   `yaml:"value"`
		Rules []string `yaml:"rules"`
	}
	if err := node.Decode(&params); err != nil {
		return grading.Expectation{}, fmt.Errorf("combined: %v", err)
	}
	if len(params.Rules) == 0 {
		return grading.Expectation{}, fmt.Errorf("combined: at least one rule is required")
	}

	parts := make([]grading.Expectation, 0, len(params.Rules))
	for _, rule := range params.Rules {
		part, err := ruleExpectation(rule, params.Value)
		if err != nil {
			return grading.Expectation{}, err
		}
		parts = append(parts, part)
	}
	return grading.Combine(parts...), nil
}

func ruleExpectation(rule, value string) (grading.Expectation, error) {
	switch rule {
	case "exact":
		return grading.Exact(value), nil
	case "contains":
		return grading.Contains(value), nil
	case "case_insensitive":
		return grading.CaseInsensitive(value), nil
	case "whitespace_insensitive":
		return grading.WhitespaceInsensitive(value), nil
	default:
		return grading.Expectation{}, fmt.Errorf("combined: unknown rule %q", rule)
	}
}

func configErrorf(format string, args ...any) *grading.ConfigurationError {
	return &grading.ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
