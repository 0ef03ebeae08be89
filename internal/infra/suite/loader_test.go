package suite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/school-grader/school-grader/internal/domain/grading"
)

func writeSuite(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "suite.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}
	return path
}

func writeScript(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("print(input())\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func TestLoadFullSuite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScript(t, dir, "palindrome.py")
	path := writeSuite(t, dir, `
tests:
  - name: palindrome words
    script: palindrome.py
    timeout: 2s
    input:
      - "kayak hi bonjour"
    expected:
      - "Palindrome words:kayak"
      - contains: "bonjour"
      - case_insensitive: "NON-PALINDROME"
      - whitespace_insensitive: "hi bonjour"
      - almost_string: {value: "kayak", max_distance: 1}
      - almost_number: {value: "3.14159", precision: 2}
      - combined:
          value: "Hi Bonjour"
          rules: [case_insensitive, whitespace_insensitive]
    fail_message: "Your script should sort words by palindromicity"
`)

	registry, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cases := registry.Cases()
	if len(cases) != 1 {
		t.Fatalf("expected one test case, got %d", len(cases))
	}

	tc := cases[0]
	if tc.Name != "palindrome words" {
		t.Fatalf("unexpected name: %q", tc.Name)
	}
	if tc.Script != filepath.Join(dir, "palindrome.py") {
		t.Fatalf("script path not resolved against suite dir: %q", tc.Script)
	}
	if tc.Language != grading.LanguagePython {
		t.Fatalf("unexpected language: %q", tc.Language)
	}
	if tc.Timeout != 2*time.Second {
		t.Fatalf("unexpected timeout: %v", tc.Timeout)
	}
	if len(tc.MockInput) != 1 || tc.MockInput[0] != "kayak hi bonjour" {
		t.Fatalf("unexpected input: %v", tc.MockInput)
	}
	if tc.FailMessage == "" {
		t.Fatal("fail message was dropped")
	}

	if len(tc.Expected) != 7 {
		t.Fatalf("expected 7 expectations, got %d", len(tc.Expected))
	}
	wantKinds := []grading.ComparisonKind{
		grading.KindExact,
		grading.KindContains,
		grading.KindCaseInsensitive,
		grading.KindWhitespaceInsensitive,
		grading.KindAlmostString,
		grading.KindAlmostNumber,
		grading.KindCombined,
	}
	for i, kind := range wantKinds {
		if tc.Expected[i].Kind != kind {
			t.Errorf("expectation %d: kind = %q, want %q", i+1, tc.Expected[i].Kind, kind)
		}
	}
	if tc.Expected[4].MaxDistance != 1 {
		t.Errorf("almost_string max distance = %d, want 1", tc.Expected[4].MaxDistance)
	}
	if tc.Expected[5].Precision != 2 {
		t.Errorf("almost_number precision = %d, want 2", tc.Expected[5].Precision)
	}
	combined := tc.Expected[6]
	if len(combined.Parts) != 2 || combined.Expected != "Hi Bonjour" {
		t.Errorf("unexpected combined expectation: %+v", combined)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScript(t, dir, "echo.py")
	path := writeSuite(t, dir, `
tests:
  - name: defaults
    script: echo.py
    expected:
      - almost_string: "kayak"
      - almost_number: "3.14"
`)

	registry, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	tc := registry.Cases()[0]
	if tc.Timeout != grading.DefaultTimeLimit {
		t.Fatalf("timeout = %v, want registry default %v", tc.Timeout, grading.DefaultTimeLimit)
	}
	if tc.Expected[0].MaxDistance != grading.DefaultMaxDistance {
		t.Fatalf("max distance = %d, want default %d", tc.Expected[0].MaxDistance, grading.DefaultMaxDistance)
	}
	if tc.Expected[1].Precision != grading.DefaultPrecision {
		t.Fatalf("precision = %d, want default %d", tc.Expected[1].Precision, grading.DefaultPrecision)
	}
}

func TestParseNumericScalarBecomesExact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScript(t, dir, "sum.py")
	path := writeSuite(t, dir, `
tests:
  - name: sum
    script: sum.py
    input:
      - 2
      - 3
    expected:
      - 5
`)

	registry, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	tc := registry.Cases()[0]
	if tc.MockInput[0] != "2" || tc.MockInput[1] != "3" {
		t.Fatalf("numeric input not read as strings: %v", tc.MockInput)
	}
	if tc.Expected[0].Kind != grading.KindExact || tc.Expected[0].Expected != "5" {
		t.Fatalf("numeric expected entry = %+v, want exact \"5\"", tc.Expected[0])
	}
}

func TestLoadRejectsInvalidSuites(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
	}{
		{
			name: "missing name",
			content: `
tests:
  - script: echo.py
    expected: ["hi"]
`,
		},
		{
			name: "unknown comparison",
			content: `
tests:
  - name: t
    script: echo.py
    expected:
      - levenshtein: "hi"
`,
		},
		{
			name: "unknown combined rule",
			content: `
tests:
  - name: t
    script: echo.py
    expected:
      - combined: {value: "hi", rules: [fuzzy]}
`,
		},
		{
			name: "negative max distance",
			content: `
tests:
  - name: t
    script: echo.py
    expected:
      - almost_string: {value: "hi", max_distance: -1}
`,
		},
		{
			name: "empty expected",
			content: `
tests:
  - name: t
    script: echo.py
    expected: []
`,
		},
		{
			name:    "not yaml",
			content: "tests: [",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeScript(t, dir, "echo.py")
			path := writeSuite(t, dir, tc.content)

			_, err := Load(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			var configErr *grading.ConfigurationError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected a configuration error, got %T: %v", err, err)
			}
		})
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScript(t, dir, "echo.py")
	path := writeSuite(t, dir, `
tests:
  - name: t
    script: echo.py
    timeout: "fast"
    expected: ["hi"]
`)

	_, err := Load(path)
	var configErr *grading.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestLoadRejectsMissingScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeSuite(t, dir, `
tests:
  - name: t
    script: nowhere.py
    expected: ["hi"]
`)

	_, err := Load(path)
	var configErr *grading.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing suite file")
	}
}
