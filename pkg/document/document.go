// Package document reads extension parameter documents: the list of
// instance parameter definitions an extension publishes, optionally with a
// set of sample values. Documents are JSON or YAML.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-extparams/pkg/parameter"
)

// Document is a parsed extension parameter document.
type Document struct {
	Extension  string
	Version    string
	Source     string
	Parameters []parameter.Definition
	Values     parameter.Values
}

// Key identifies the document as extension@version, or just the extension
// when no version is given.
func (d Document) Key() string {
	return Key(d.Extension, d.Version)
}

// Key builds a document key.
func Key(extension, version string) string {
	extension = strings.TrimSpace(extension)
	version = strings.TrimSpace(version)
	if version == "" {
		return extension
	}
	return extension + "@" + version
}

type documentFile struct {
	Extension  string                     `json:"extension"`
	Version    string                     `json:"version"`
	Parameters []parameter.Definition     `json:"parameters"`
	Values     map[string]json.RawMessage `json:"values"`
}

// Parse decodes a document from JSON or YAML. The payload is checked against
// the document schema before the definitions are decoded. Parameter names,
// placeholders and option labels are stripped of markup.
func Parse(data []byte, source string) (Document, error) {
	raw, err := normalise(data, source)
	if err != nil {
		return Document{}, err
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Document{}, fmt.Errorf("document: parse %s: %w", source, err)
	}
	if err := checkSchema(payload, source); err != nil {
		return Document{}, err
	}

	var file documentFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return Document{}, fmt.Errorf("document: decode %s: %w", source, err)
	}

	values, err := scalarValues(file.Values)
	if err != nil {
		return Document{}, fmt.Errorf("document: %s: %w", source, err)
	}

	doc := Document{
		Extension:  strings.TrimSpace(file.Extension),
		Version:    strings.TrimSpace(file.Version),
		Source:     source,
		Parameters: make([]parameter.Definition, 0, len(file.Parameters)),
		Values:     values,
	}
	for _, def := range file.Parameters {
		doc.Parameters = append(doc.Parameters, sanitizeDefinition(def))
	}
	return doc, nil
}

// ParseValues reads parameter values from a plain object or from the host
// list form {"values": [{"name": ..., "value": ...}]}. JSON and YAML are
// accepted. Scalars are converted to their text form.
func ParseValues(data []byte) (parameter.Values, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return parameter.Values{}, nil
	}
	raw, err := normalise(data, "values")
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document: values must be an object: %w", err)
	}

	if list, ok := fields["values"]; ok && isArray(list) {
		var items []struct {
			Name  string          `json:"name"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(list, &items); err != nil {
			return nil, fmt.Errorf("document: values list: %w", err)
		}
		out := make(parameter.Values, len(items))
		for _, item := range items {
			name := strings.TrimSpace(item.Name)
			if name == "" {
				return nil, errors.New("document: values list entry without a name")
			}
			text, err := scalarText(item.Value)
			if err != nil {
				return nil, fmt.Errorf("document: value %q: %w", name, err)
			}
			out[name] = text
		}
		return out, nil
	}

	values, err := scalarValues(fields)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return values, nil
}

func normalise(data []byte, source string) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("document: file %s is empty", source)
	}
	if json.Valid(data) {
		return data, nil
	}
	converted, err := yamlToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("document: parse %s: invalid JSON or YAML: %w", source, err)
	}
	return converted, nil
}

func sanitizeDefinition(def parameter.Definition) parameter.Definition {
	def.Name = sanitizeLabel(def.Name)
	def.Placeholder = sanitizeLabel(def.Placeholder)
	if spec, ok := def.Spec.(parameter.SelectSpec); ok {
		options := make(parameter.SelectOptions, 0, len(spec.Options))
		for _, opt := range spec.Options {
			options = append(options, parameter.SelectOption{ID: opt.ID, Label: sanitizeLabel(opt.Label)})
		}
		def.Spec = parameter.SelectSpec{Options: options}
	}
	return def
}

func scalarValues(fields map[string]json.RawMessage) (parameter.Values, error) {
	out := make(parameter.Values, len(fields))
	for name, raw := range fields {
		text, err := scalarText(raw)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", name, err)
		}
		out[name] = text
	}
	return out, nil
}

func scalarText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch typed := v.(type) {
	case string:
		return typed, nil
	case json.Number:
		return typed.String(), nil
	case bool:
		if typed {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("expected a scalar, got %s", string(trimmed))
	}
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
