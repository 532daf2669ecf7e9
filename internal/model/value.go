package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the category of a config value used for schema matching.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindBoolean Kind = "boolean"
	KindList    Kind = "list"
	KindObject  Kind = "object"
	KindNull    Kind = "null"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Value is a JSON-compatible config value tagged with its Kind.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind   Kind
	Str    string
	Int    int64
	Float  float64
	Bool   bool
	List   []Value
	Object map[string]Value
}

// Config maps a widget's config field names to their values.
type Config map[string]Value

// Value constructors.

func String(s string) Value { return Value{Kind: KindString, Str: s} }

func Int(n int64) Value { return Value{Kind: KindInteger, Int: n} }

func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }

func Bool(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

func Null() Value { return Value{Kind: KindNull} }

func List(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{Kind: KindList, List: vs}
}

func Object(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{Kind: KindObject, Object: m}
}

// IsNull reports whether v holds a JSON null (or is the zero Value).
func (v Value) IsNull() bool {
	return v.Kind == KindNull || v.Kind == ""
}

// MarshalJSON encodes v. Floats with an integral value keep a trailing ".0"
// so that they decode back as floats.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindInteger:
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	case KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return nil, fmt.Errorf("unsupported float value %v", v.Float)
		}
		return []byte(formatFloat(v.Float)), nil
	case KindBoolean:
		return json.Marshal(v.Bool)
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindObject:
		if v.Object == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.Object)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes any JSON value, keeping integers and floats apart.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	val, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// ValueOf converts a decoded JSON, TOML or YAML value into a Value.
func ValueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case json.Number:
		s := x.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := x.Int64(); err == nil {
				return Int(n), nil
			}
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", s, err)
		}
		return Float(f), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Float(float64(x)), nil
		}
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case []any:
		list := make([]Value, len(x))
		for i, e := range x {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}
			list[i] = ev
		}
		return List(list...), nil
	case []map[string]any:
		list := make([]Value, len(x))
		for i, e := range x {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}
			list[i] = ev
		}
		return List(list...), nil
	case map[string]any:
		obj := make(map[string]Value, len(x))
		for k, e := range x {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			obj[k] = ev
		}
		return Object(obj), nil
	case map[any]any:
		obj := make(map[string]Value, len(x))
		for k, e := range x {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}
			obj[fmt.Sprint(k)] = ev
		}
		return Object(obj), nil
	}
	return Value{}, fmt.Errorf("unsupported config value of type %T", raw)
}

// ConfigOf converts a decoded object into a Config.
func ConfigOf(m map[string]any) (Config, error) {
	cfg := make(Config, len(m))
	for k, raw := range m {
		v, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("config field %q: %w", k, err)
		}
		cfg[k] = v
	}
	return cfg, nil
}

// ParseConfig decodes a JSON object into a Config.
func ParseConfig(data []byte) (Config, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v.Kind != KindObject {
		return nil, fmt.Errorf("config must be a JSON object, got %s", v.Kind)
	}
	return Config(v.Object), nil
}

// Clone returns a shallow copy of c.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
