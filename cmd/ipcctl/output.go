package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

// writeStructured writes v as one JSON line or one YAML document.
func writeStructured(w io.Writer, format string, v any) error {
	sw := newStructuredWriter(w, format)
	if err := sw.Write(v); err != nil {
		return err
	}

	return sw.Close()
}

// structuredWriter writes a stream of values. YAML values share one encoder
// so every document after the first is preceded by a "---" separator.
type structuredWriter struct {
	w      io.Writer
	format string
	yaml   *yaml.Encoder
}

func newStructuredWriter(w io.Writer, format string) *structuredWriter {
	return &structuredWriter{w: w, format: format}
}

// Write encodes v as the next JSON line or YAML document.
func (sw *structuredWriter) Write(v any) error {
	switch sw.format {
	case formatJSON:
		if err := json.NewEncoder(sw.w).Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case formatYAML:
		if sw.yaml == nil {
			sw.yaml = yaml.NewEncoder(sw.w)
			sw.yaml.SetIndent(2)
		}

		if err := sw.yaml.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("format %q is not structured", sw.format)
	}

	return nil
}

// Close flushes the YAML stream. It is a no-op for JSON.
func (sw *structuredWriter) Close() error {
	if sw.yaml == nil {
		return nil
	}

	enc := sw.yaml
	sw.yaml = nil

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return nil
}
