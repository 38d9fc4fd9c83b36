package parameter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// SelectOption is one selectable value and its display label.
type SelectOption struct {
	ID    string
	Label string
}

// SelectOptions is an ordered option list. Documents write it as a JSON
// object (id -> label) whose key order is the display order.
type SelectOptions []SelectOption

// OptionsOf builds SelectOptions from id/label pairs. A trailing id without a
// label is labelled with its id.
func OptionsOf(pairs ...string) SelectOptions {
	out := make(SelectOptions, 0, (len(pairs)+1)/2)
	for i := 0; i < len(pairs); i += 2 {
		opt := SelectOption{ID: pairs[i], Label: pairs[i]}
		if i+1 < len(pairs) {
			opt.Label = pairs[i+1]
		}
		out = append(out, opt)
	}
	return out
}

// IDs returns the option ids in order.
func (o SelectOptions) IDs() []string {
	out := make([]string, 0, len(o))
	for _, opt := range o {
		out = append(out, opt.ID)
	}
	return out
}

// Labels returns the option labels in order.
func (o SelectOptions) Labels() []string {
	out := make([]string, 0, len(o))
	for _, opt := range o {
		out = append(out, opt.Label)
	}
	return out
}

// Contains reports whether id is one of the options.
func (o SelectOptions) Contains(id string) bool {
	for _, opt := range o {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// MarshalJSON writes the options as an object, preserving order.
func (o SelectOptions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, opt := range o {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(opt.ID)
		if err != nil {
			return nil, err
		}
		label, err := json.Marshal(opt.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(label)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an id -> label object keeping document order.
func (o *SelectOptions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("parameter: decode options: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("parameter: options must be an object of id to label")
	}

	out := SelectOptions{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("parameter: decode options: %w", err)
		}
		key, _ := keyTok.(string)

		var label any
		if err := dec.Decode(&label); err != nil {
			return fmt.Errorf("parameter: decode option %q: %w", key, err)
		}
		switch v := label.(type) {
		case string:
			out = append(out, SelectOption{ID: key, Label: v})
		case float64, bool:
			out = append(out, SelectOption{ID: key, Label: fmt.Sprint(v)})
		default:
			return fmt.Errorf("parameter: option %q label must be a string", key)
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("parameter: decode options: %w", err)
	}
	*o = out
	return nil
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
