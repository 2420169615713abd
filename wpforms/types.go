package wpforms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// FlexString decodes a JSON string, number or bool into a string.
// WPForms stores ids as either, depending on where they came from.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = FlexString(toString(v))
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// Toggle decodes the checkbox encodings WPForms uses: true, 1, "1", "on".
type Toggle bool

func (t *Toggle) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch b := v.(type) {
	case bool:
		*t = Toggle(b)
	case float64:
		*t = b != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "", "0", "false", "off", "no":
			*t = false
		default:
			*t = true
		}
	default:
		*t = false
	}
	return nil
}

// Field is one processed form field as handed to providers, e.g.
// {"id": 1, "type": "email", "name": "Email", "value": "a@b.com"}.
// Name fields also carry "first", "middle" and "last".
type Field map[string]any

// String returns the sub-key as a string, "" when absent.
func (f Field) String(key string) string {
	return toString(f[key])
}

func (f Field) Type() string {
	return f.String("type")
}

// Fields maps field id to field. It decodes from a JSON object keyed by
// id, or from a JSON array (what PHP emits for contiguous ids).
type Fields map[string]Field

func (f *Fields) UnmarshalJSON(data []byte) error {
	out := Fields{}
	err := decodeIndexed(data, func(key string, raw json.RawMessage) error {
		var field Field
		if err := json.Unmarshal(raw, &field); err != nil {
			return err
		}
		if field == nil {
			return nil
		}
		if id := field.String("id"); id != "" {
			key = id
		}
		out[key] = field
		return nil
	})
	if err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	*f = out
	return nil
}

// Entry is the raw submitted entry (POST payload) for the form.
type Entry map[string]any

func (e *Entry) UnmarshalJSON(data []byte) error {
	out := Entry{}
	err := decodeIndexed(data, func(key string, raw json.RawMessage) error {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		out[key] = v
		return nil
	})
	if err != nil {
		return fmt.Errorf("decode entry: %w", err)
	}
	*e = out
	return nil
}

// FormData is the saved form configuration. Only what providers read
// is modelled.
type FormData struct {
	ID        FlexString `json:"id"`
	Providers Providers  `json:"providers"`
}

// Providers maps provider slug to that provider's connections, keyed by
// connection id. PHP encodes an empty map at either level as [].
type Providers map[string]map[string]Connection

func (p *Providers) UnmarshalJSON(data []byte) error {
	out := Providers{}
	err := decodeIndexed(data, func(slug string, raw json.RawMessage) error {
		conns := map[string]Connection{}
		err := decodeIndexed(raw, func(id string, rawConn json.RawMessage) error {
			var c Connection
			if err := json.Unmarshal(rawConn, &c); err != nil {
				return err
			}
			conns[id] = c
			return nil
		})
		if err != nil {
			return fmt.Errorf("%s: %w", slug, err)
		}
		out[slug] = conns
		return nil
	})
	if err != nil {
		return fmt.Errorf("decode providers: %w", err)
	}
	*p = out
	return nil
}

// Connection links a form to one provider account and list.
type Connection struct {
	ID        FlexString `json:"connection_id"`
	Name      string     `json:"connection_name"`
	AccountID FlexString `json:"account_id"`
	ListID    FlexString `json:"list_id"`

	// Fields maps a provider tag (email, first_name, last_name) to a form
	// field reference: "<field id>" or "<field id>.<sub key>".
	Fields FieldMap `json:"fields"`

	ConditionalLogic Toggle     `json:"conditional_logic"`
	ConditionalType  string     `json:"conditional_type"`
	Conditionals     RuleGroups `json:"conditionals"`
}

// FieldMap maps provider tags to field references. Numeric references
// decode as strings.
type FieldMap map[string]string

func (m *FieldMap) UnmarshalJSON(data []byte) error {
	out := FieldMap{}
	err := decodeIndexed(data, func(key string, raw json.RawMessage) error {
		var ref FlexString
		if err := json.Unmarshal(raw, &ref); err != nil {
			return err
		}
		out[key] = ref.String()
		return nil
	})
	if err != nil {
		return fmt.Errorf("decode field map: %w", err)
	}
	*m = out
	return nil
}

// Rule is a single conditional logic check against a submitted field.
type Rule struct {
	Field    FlexString `json:"field"`
	Operator string     `json:"operator"`
	Value    FlexString `json:"value"`
}

// RuleGroups are OR-ed; the rules inside one group are AND-ed.
type RuleGroups [][]Rule

func (g *RuleGroups) UnmarshalJSON(data []byte) error {
	var groups RuleGroups
	err := decodeIndexed(data, func(_ string, raw json.RawMessage) error {
		var group []Rule
		err := decodeIndexed(raw, func(_ string, rawRule json.RawMessage) error {
			var r Rule
			if err := json.Unmarshal(rawRule, &r); err != nil {
				return err
			}
			group = append(group, r)
			return nil
		})
		if err != nil {
			return err
		}
		groups = append(groups, group)
		return nil
	})
	if err != nil {
		return fmt.Errorf("decode conditionals: %w", err)
	}
	*g = groups
	return nil
}

// decodeIndexed walks a JSON array or object, calling fn per element.
// Object keys are visited in numeric order when they are numbers.
func decodeIndexed(data []byte, fn func(key string, raw json.RawMessage) error) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" || string(data) == `""` {
		return nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		for i, raw := range items {
			if err := fn(strconv.Itoa(i), raw); err != nil {
				return err
			}
		}
		return nil
	case '{':
		var items map[string]json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		keys := make([]string, 0, len(items))
		for k := range items {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeys)
		for _, k := range keys {
			if err := fn(k, items[k]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("expected array or object, got %q", data[:1])
	}
}

func compareKeys(a, b string) int {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai - bi
	}
	return strings.Compare(a, b)
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		if s {
			return "1"
		}
		return ""
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

// resolve returns the trimmed value a field reference points at.
// ref is "<field id>" or "<field id>.<sub key>"; without a sub key
// defaultKey is used, falling back to "value" for fields that are not
// name fields.
func (f Fields) resolve(ref, defaultKey string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	parts := strings.Split(ref, ".")
	field, ok := f[parts[0]]
	if !ok {
		return ""
	}
	if len(parts) > 1 && parts[1] != "" {
		return strings.TrimSpace(field.String(parts[1]))
	}

	v := strings.TrimSpace(field.String(defaultKey))
	if v == "" && defaultKey != "value" && field.Type() != "" && field.Type() != "name" {
		v = strings.TrimSpace(field.String("value"))
	}
	return v
}
