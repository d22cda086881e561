// Package export renders reconciliation plans in machine-readable formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klauern/photosync/internal/plan"
)

// Format represents the output format for an exported plan.
type Format string

const (
	// FormatJSON exports the plan as JSON.
	FormatJSON Format = "json"
	// FormatYAML exports the plan as YAML.
	FormatYAML Format = "yaml"
)

// IsValid returns true if the format is recognized.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// ParseFormat parses a string into a Format.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	if !format.IsValid() {
		return "", fmt.Errorf("unsupported format %q (valid: json, yaml)", s)
	}
	return format, nil
}

// Document is the serialized form of a plan.
type Document struct {
	SourceRoot string           `json:"source_root" yaml:"source_root"`
	TargetRoot string           `json:"target_root" yaml:"target_root"`
	Operations []plan.Operation `json:"operations" yaml:"operations"`
}

// Write renders the plan to w in the given format.
func Write(w io.Writer, sourceRoot, targetRoot string, p plan.Plan, format Format) error {
	doc := Document{
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
		Operations: p,
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode plan as JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode plan as YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	return nil
}
