package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edp1096/toy-reservoir/pkg/util"
)

// Field is a value given either as a scalar (broadcast) or as an explicit
// sequence. A single-element Field is treated as a scalar.
type Field []float64

func Scalar(v float64) Field { return Field{v} }

func (f Field) IsScalar() bool { return len(f) == 1 }

func (f Field) IsSet() bool { return len(f) > 0 }

// Expand normalises the field into exactly n values.
func (f Field) Expand(n int) ([]float64, error) {
	switch {
	case len(f) == 0:
		return nil, ErrMissing
	case f.IsScalar():
		out := make([]float64, n)
		for i := range out {
			out[i] = f[0]
		}
		return out, nil
	case len(f) != n:
		return nil, fmt.Errorf("got %d values, want %d: %w", len(f), n, ErrLengthMismatch)
	}
	out := make([]float64, n)
	copy(out, f)
	return out, nil
}

func (f Field) clone() Field {
	if f == nil {
		return nil
	}
	out := make(Field, len(f))
	copy(out, f)
	return out
}

func (f *Field) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := value.Decode(&v); err != nil {
			return err
		}
		*f = Field{v}
	case yaml.SequenceNode:
		var vs []float64
		if err := value.Decode(&vs); err != nil {
			return err
		}
		*f = vs
	default:
		return fmt.Errorf("line %d: expected scalar or sequence: %w", value.Line, ErrFormat)
	}
	return nil
}

func (f Field) MarshalYAML() (interface{}, error) {
	if f.IsScalar() {
		return f[0], nil
	}
	return []float64(f), nil
}

func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var vs []float64
		if err := json.Unmarshal(data, &vs); err != nil {
			return err
		}
		*f = vs
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Field{v}
	return nil
}

func (f Field) MarshalJSON() ([]byte, error) {
	if f.IsScalar() {
		return json.Marshal(f[0])
	}
	return json.Marshal([]float64(f))
}

// Solver is the "solver" entry: "implicit", "explicit" or
// {"mixed method": {"theta": x}}.
type Solver struct {
	util.Scheme
}

const mixedKey = "mixed method"

type mixedParams struct {
	Theta *float64 `yaml:"theta" json:"theta"`
}

func parseSolverName(name string) (Solver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "implicit":
		return Solver{Scheme: util.Implicit()}, nil
	case "explicit":
		return Solver{Scheme: util.Explicit()}, nil
	}
	return Solver{}, fmt.Errorf("%q: %w", name, ErrSolver)
}

func parseMixed(m map[string]mixedParams) (Solver, error) {
	if len(m) != 1 {
		return Solver{}, fmt.Errorf("expected a single %q entry: %w", mixedKey, ErrSolver)
	}
	params, ok := m[mixedKey]
	if !ok {
		for k := range m {
			return Solver{}, fmt.Errorf("%q: %w", k, ErrSolver)
		}
	}
	if params.Theta == nil {
		return Solver{}, fmt.Errorf("%s theta: %w", mixedKey, ErrMissing)
	}
	return Solver{Scheme: util.Mixed(*params.Theta)}, nil
}

func (s *Solver) UnmarshalYAML(value *yaml.Node) error {
	var err error
	switch value.Kind {
	case yaml.ScalarNode:
		*s, err = parseSolverName(value.Value)
	case yaml.MappingNode:
		var m map[string]mixedParams
		if err = value.Decode(&m); err != nil {
			return err
		}
		*s, err = parseMixed(m)
	default:
		err = fmt.Errorf("line %d: %w", value.Line, ErrSolver)
	}
	return err
}

func (s Solver) MarshalYAML() (interface{}, error) {
	if s.Method == util.MixedMethod {
		theta := s.Theta()
		return map[string]mixedParams{mixedKey: {Theta: &theta}}, nil
	}
	return s.Method.String(), nil
}

func (s *Solver) UnmarshalJSON(data []byte) error {
	var err error
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err = json.Unmarshal(data, &name); err != nil {
			return err
		}
		*s, err = parseSolverName(name)
		return err
	}
	var m map[string]mixedParams
	if err = json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("%v: %w", err, ErrSolver)
	}
	*s, err = parseMixed(m)
	return err
}

func (s Solver) MarshalJSON() ([]byte, error) {
	if s.Method == util.MixedMethod {
		theta := s.Theta()
		return json.Marshal(map[string]mixedParams{mixedKey: {Theta: &theta}})
	}
	return json.Marshal(s.Method.String())
}
