// Package validate compares an observed run outcome against an
// expected-result fixture.
package validate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the expected outcome of a run. The matching key is the
// hub error code; an empty code means the run is expected to succeed.
type Fixture struct {
	ErrorCode string `yaml:"error_code"`
}

// Observed is the outcome actually produced by a run
type Observed struct {
	ErrorCode string
}

// Result is the immutable verdict of a fixture comparison
type Result struct {
	Pass     bool
	Expected string
	Observed string
}

func (r Result) String() string {
	if r.Pass {
		return "validation passed"
	}
	return fmt.Sprintf("validation failed: expected error_code %q, observed %q", r.Expected, r.Observed)
}

// LoadFixture reads an expected-result fixture from path
func LoadFixture(path string) (Fixture, error) {
	var fx Fixture
	data, err := os.ReadFile(path)
	if err != nil {
		return fx, fmt.Errorf("failed to read fixture: %w", err)
	}
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fx, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return fx, nil
}

// Check compares observed against expected. Pure: no I/O, identical
// inputs always produce identical results. Error codes absent on both
// sides is the success case and passes.
func Check(obs Observed, fx Fixture) Result {
	return Result{
		Pass:     obs.ErrorCode == fx.ErrorCode,
		Expected: fx.ErrorCode,
		Observed: obs.ErrorCode,
	}
}
