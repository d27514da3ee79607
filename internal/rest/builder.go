package rest

import (
	"fmt"
	"net/http"
	"sort"
)

// Builder stages the fields of a Method. A configured Builder serves as a
// template: Clone or Specialize it per call instead of mutating it.
type Builder struct {
	baseURL     string
	verb        string
	path        string
	params      []Param
	queryParams []Param
	routeParams []RouteParam
	transform   TransformFunc
	configure   ConfigureFunc
}

// NewBuilder returns an empty builder. The verb defaults to GET.
func NewBuilder() *Builder {
	return &Builder{verb: http.MethodGet}
}

func (b *Builder) SetBaseURL(baseURL string) *Builder {
	b.baseURL = baseURL
	return b
}

func (b *Builder) SetVerb(verb string) *Builder {
	b.verb = verb
	return b
}

func (b *Builder) SetPath(path string) *Builder {
	b.path = path
	return b
}

func (b *Builder) AddRouteParam(p RouteParam) *Builder {
	b.routeParams = append(b.routeParams, p)
	return b
}

func (b *Builder) AddParam(p Param) *Builder {
	b.params = append(b.params, p)
	return b
}

func (b *Builder) AddQueryParam(p Param) *Builder {
	b.queryParams = append(b.queryParams, p)
	return b
}

func (b *Builder) SetTransform(fn TransformFunc) *Builder {
	b.transform = fn
	return b
}

func (b *Builder) SetConfigure(fn ConfigureFunc) *Builder {
	b.configure = fn
	return b
}

// Clone returns an independent copy of the builder.
func (b *Builder) Clone() *Builder {
	c := *b
	c.params = append([]Param(nil), b.params...)
	c.queryParams = append([]Param(nil), b.queryParams...)
	c.routeParams = append([]RouteParam(nil), b.routeParams...)
	return &c
}

// Build validates the declaration and returns a new Method. It never returns
// a partially filled Method.
func (b *Builder) Build() (*Method, error) {
	switch {
	case b.baseURL == "":
		return nil, &BuildError{Field: "base url"}
	case b.path == "":
		return nil, &BuildError{Field: "path"}
	case b.transform == nil:
		return nil, &BuildError{Field: "transform"}
	}

	verb := b.verb
	if verb == "" {
		verb = http.MethodGet
	}

	params, err := NewParamSet(b.params...)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	query, err := NewParamSet(b.queryParams...)
	if err != nil {
		return nil, fmt.Errorf("query params: %w", err)
	}
	seen := make(map[string]struct{}, len(b.routeParams))
	for _, r := range b.routeParams {
		if _, ok := seen[r.key]; ok {
			return nil, fmt.Errorf("route params: %w", paramErr(ErrDuplicateParam, r.key))
		}
		seen[r.key] = struct{}{}
	}

	return &Method{
		baseURL:     b.baseURL,
		verb:        verb,
		path:        b.path,
		params:      params,
		queryParams: query,
		routeParams: append([]RouteParam(nil), b.routeParams...),
		transform:   b.transform,
		configure:   b.configure,
	}, nil
}

// MustBuild is like Build but panics on a mis-declared template.
func (b *Builder) MustBuild() *Method {
	m, err := b.Build()
	if err != nil {
		panic("rest: " + err.Error())
	}
	return m
}

// Patch holds per-call values for a template's declared params.
type Patch struct {
	Params map[string]string
	Query  map[string]string
	Route  map[string]string
}

// Specialize builds a fresh Method from the template and fills it with the
// patch values. The builder itself is left untouched.
func (b *Builder) Specialize(p Patch) (*Method, error) {
	m, err := b.Clone().Build()
	if err != nil {
		return nil, err
	}
	for _, k := range sortedKeys(p.Params) {
		if err := m.SetParamValue(k, p.Params[k]); err != nil {
			return nil, err
		}
	}
	for _, k := range sortedKeys(p.Query) {
		if err := m.SetQueryParamValue(k, p.Query[k]); err != nil {
			return nil, err
		}
	}
	for _, k := range sortedKeys(p.Route) {
		if err := m.SetRouteParamValue(k, p.Route[k]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
