package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one conformance scenario: a list of setup steps that
// must succeed, followed by the flow whose outcomes are traced.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Setup steps run before the flow and are assumed to succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the traced part of the scenario.
	Flow []Step `yaml:"flow"`
}

// Step is one operation of a scenario.
type Step struct {
	// Op selects the operation: login, save_entry, delete_entry,
	// expect_entry, undo, redo.
	Op string `yaml:"op"`

	// Client and User parameterise login.
	Client   int    `yaml:"client,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`

	// Date and Text parameterise the diary operations. Date uses the
	// canonical form 2006-01-02.
	Date string `yaml:"date,omitempty"`
	Text string `yaml:"text,omitempty"`

	// Absent marks an expect_entry step that wants the day empty.
	Absent bool `yaml:"absent,omitempty"`
}

// Known step operations.
const (
	OpLogin       = "login"
	OpSaveEntry   = "save_entry"
	OpDeleteEntry = "delete_entry"
	OpExpectEntry = "expect_entry"
	OpUndo        = "undo"
	OpRedo        = "redo"
)

// LoadScenario reads and parses a scenario file. Unknown YAML fields
// are rejected so that typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow is required and must be non-empty")
	}
	for i, st := range s.Setup {
		if err := validateStep(&st); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	for i, st := range s.Flow {
		if err := validateStep(&st); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(st *Step) error {
	switch st.Op {
	case OpLogin:
		if st.Client <= 0 && st.User == "" {
			return fmt.Errorf("login needs client and user")
		}
	case OpSaveEntry:
		if st.Date == "" {
			return fmt.Errorf("save_entry needs date")
		}
	case OpDeleteEntry, OpExpectEntry:
		if st.Date == "" {
			return fmt.Errorf("%s needs date", st.Op)
		}
	case OpUndo, OpRedo:
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}
