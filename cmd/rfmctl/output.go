package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var stdout io.Writer = os.Stdout

// writeOutput prints v as json or yaml using its JSON field names, or
// calls text for the human format.
func writeOutput(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		plain, err := toPlain(v)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		if err := enc.Encode(plain); err != nil {
			return fmt.Errorf("rfmctl: encode yaml: %w", err)
		}
		return nil
	default:
		return text(w)
	}
}

func toPlain(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rfmctl: encode output: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("rfmctl: decode output: %w", err)
	}
	return out, nil
}
