package extractor

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const reportSchemaURL = "report.schema.json"

//go:embed report.schema.json
var reportSchemaJSON []byte

var (
	reportSchemaOnce sync.Once
	reportSchema     *jsonschema.Schema
	reportSchemaErr  error
)

func loadReportSchema() (*jsonschema.Schema, error) {
	reportSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(reportSchemaURL, bytes.NewReader(reportSchemaJSON)); err != nil {
			reportSchemaErr = err
			return
		}
		reportSchema, reportSchemaErr = compiler.Compile(reportSchemaURL)
	})
	return reportSchema, reportSchemaErr
}

// Marshal encodes the report as a JSON array indented with two spaces.
// HTML escaping is off so signatures like "-> Result<T>" stay readable.
func (r Report) Marshal() ([]byte, error) {
	out := make(Report, len(r))
	for i, entry := range r {
		if entry.APIFunctions == nil {
			entry.APIFunctions = []FunctionRecord{}
		}
		out[i] = entry
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks the encoded report against the report JSON Schema.
func (r Report) Validate() error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal report for schema validation: %w", err)
	}
	return validateReportJSON(data)
}

func validateReportJSON(data []byte) error {
	schema, err := loadReportSchema()
	if err != nil {
		return fmt.Errorf("failed to compile report schema: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to normalize report for schema validation: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("report schema validation failed: %w", err)
	}
	return nil
}

// Save writes the report to path. The file is written to a temporary
// sibling and renamed into place, so path is either the complete report or
// untouched.
func (r Report) Save(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := validateReportJSON(data); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// LoadReport reads a report written by Save, validating it against the schema.
func LoadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}
	if err := validateReportJSON(data); err != nil {
		return nil, fmt.Errorf("invalid report %s: %w", path, err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return report, nil
}
