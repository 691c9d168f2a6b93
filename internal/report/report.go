package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"burger/internal/aggregate"
	"burger/internal/pipeline"
)

//go:embed report.schema.json
var schemaSource string

const schemaURL = "https://burger.local/schema/report.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Report is the serialized outcome of one run.
type Report struct {
	Artifact string            `json:"artifact"`
	Classes  map[string]string `json:"classes"`
	Missing  []string          `json:"missing,omitempty"`
	Toppings []ToppingSummary  `json:"toppings"`
}

// ToppingSummary is the serialized form of a pipeline.StageResult.
type ToppingSummary struct {
	Name       string   `json:"name"`
	Written    []string `json:"written"`
	DurationMS float64  `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

// Build assembles a report. expected lists labels whose absence should be
// called out; labels never written are reported as missing, not as errors.
func Build(artifactName string, set *aggregate.Set, expected []string, results []pipeline.StageResult) *Report {
	r := &Report{
		Artifact: artifactName,
		Classes:  set.Snapshot(),
		Toppings: make([]ToppingSummary, 0, len(results)),
	}
	for _, label := range expected {
		if _, ok := r.Classes[label]; !ok {
			r.Missing = append(r.Missing, label)
		}
	}
	sort.Strings(r.Missing)

	for _, res := range results {
		s := ToppingSummary{
			Name:       res.Topping,
			Written:    append([]string{}, res.Written...),
			DurationMS: float64(res.Duration.Microseconds()) / 1000,
		}
		if res.Err != nil {
			s.Error = res.Err.Error()
		}
		r.Toppings = append(r.Toppings, s)
	}
	return r
}

// Validate checks the report against the embedded JSON schema.
func (r *Report) Validate() error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report for schema validation: %w", err)
	}
	return validateRaw(raw)
}

// JSON validates and encodes the report.
func (r *Report) JSON() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(r, "", "  ")
}

// Parse validates data against the schema and decodes it.
func Parse(data []byte) (*Report, error) {
	if err := validateRaw(data); err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}

func validateRaw(raw []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("failed to compile report schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to decode report: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("report schema validation failed: %w", err)
	}
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaSource)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}
