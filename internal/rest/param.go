package rest

import (
	"bytes"
	"encoding/json"
)

// Param is a named value slot of a Method.
type Param struct {
	key      string
	value    string
	set      bool
	required bool
}

// Prevalue returns a required param that already carries its value.
func Prevalue(key, value string) Param {
	return Param{key: key, value: value, set: true, required: true}
}

// Required returns a param that must be filled before the method is compiled.
func Required(key string) Param {
	return Param{key: key, required: true}
}

// Optional returns a param that is omitted when left unset.
func Optional(key string) Param {
	return Param{key: key}
}

// Key returns the param name.
func (p Param) Key() string { return p.key }

// Value returns the param value and whether it is set.
func (p Param) Value() (string, bool) { return p.value, p.set }

// IsRequired reports whether the param must be set.
func (p Param) IsRequired() bool { return p.required }

// ParamSet is an ordered collection of params with unique keys.
type ParamSet struct {
	items []Param
}

// NewParamSet returns a set holding params in declaration order.
func NewParamSet(params ...Param) (ParamSet, error) {
	seen := make(map[string]struct{}, len(params))
	items := make([]Param, 0, len(params))
	for _, p := range params {
		if _, ok := seen[p.key]; ok {
			return ParamSet{}, paramErr(ErrDuplicateParam, p.key)
		}
		seen[p.key] = struct{}{}
		items = append(items, p)
	}
	return ParamSet{items: items}, nil
}

// Len returns the number of declared params.
func (s ParamSet) Len() int { return len(s.items) }

// Find returns the param with the given key.
func (s ParamSet) Find(key string) (Param, bool) {
	for _, p := range s.items {
		if p.key == key {
			return p, true
		}
	}
	return Param{}, false
}

// SetValue fills the param with the given key. Each param may be filled once.
func (s *ParamSet) SetValue(key, value string) error {
	for i := range s.items {
		if s.items[i].key != key {
			continue
		}
		if s.items[i].set {
			return paramErr(ErrAlreadySet, key)
		}
		s.items[i].value = value
		s.items[i].set = true
		return nil
	}
	return paramErr(ErrUnknownParam, key)
}

// Serialize returns the set params as a flat map. Unset optional params are
// omitted; an unset required param is an error.
func (s ParamSet) Serialize() (map[string]string, error) {
	out := make(map[string]string, len(s.items))
	for _, p := range s.items {
		if p.set {
			out[p.key] = p.value
		} else if p.required {
			return nil, paramErr(ErrMissingRequiredParam, p.key)
		}
	}
	return out, nil
}

// MarshalJSON encodes the set params as a JSON object in declaration order.
func (s ParamSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, p := range s.items {
		if !p.set {
			if p.required {
				return nil, paramErr(ErrMissingRequiredParam, p.key)
			}
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(p.key)
		v, _ := json.Marshal(p.value)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Clone returns a deep copy of the set.
func (s ParamSet) Clone() ParamSet {
	if s.items == nil {
		return ParamSet{}
	}
	items := make([]Param, len(s.items))
	copy(items, s.items)
	return ParamSet{items: items}
}

// RouteParam is a named placeholder in a path template.
type RouteParam struct {
	key   string
	value string
	set   bool
}

// Route returns an unset route param.
func Route(key string) RouteParam {
	return RouteParam{key: key}
}

// RouteValue returns a route param that already carries its value.
func RouteValue(key, value string) RouteParam {
	return RouteParam{key: key, value: value, set: true}
}

// Key returns the placeholder name.
func (r RouteParam) Key() string { return r.key }

// Value returns the route value and whether it is set.
func (r RouteParam) Value() (string, bool) { return r.value, r.set }
