package rest

import (
	"net/http"
)

// Kind identifies which declared call produced a Response.
type Kind string

// Response is the tagged payload returned by a method's transform.
type Response interface {
	Kind() Kind
}

// TransformFunc turns a raw response into a tagged payload.
type TransformFunc func(status int, body []byte, header http.Header) (Response, error)

// ConfigureFunc mutates the outbound request before it is sent.
type ConfigureFunc func(req *http.Request)

// Method is a fully specified REST call. Only the values inside its params
// change after Build, through the write-once setters.
type Method struct {
	baseURL     string
	verb        string
	path        string
	params      ParamSet
	queryParams ParamSet
	routeParams []RouteParam
	transform   TransformFunc
	configure   ConfigureFunc
}

// BaseURL returns the scheme and host prefix of the call.
func (m *Method) BaseURL() string { return m.baseURL }

// Verb returns the HTTP method.
func (m *Method) Verb() string { return m.verb }

// Path returns the path template.
func (m *Method) Path() string { return m.path }

// RouteParams returns a copy of the route placeholders.
func (m *Method) RouteParams() []RouteParam {
	out := make([]RouteParam, len(m.routeParams))
	copy(out, m.routeParams)
	return out
}

// Transform applies the method's response transform.
func (m *Method) Transform(status int, body []byte, header http.Header) (Response, error) {
	return m.transform(status, body, header)
}

// SetParamValue fills a call argument.
func (m *Method) SetParamValue(key, value string) error {
	return m.params.SetValue(key, value)
}

// SetQueryParamValue fills a query-only param.
func (m *Method) SetQueryParamValue(key, value string) error {
	return m.queryParams.SetValue(key, value)
}

// SetRouteParamValue fills a route placeholder.
func (m *Method) SetRouteParamValue(key, value string) error {
	for i := range m.routeParams {
		if m.routeParams[i].key != key {
			continue
		}
		if m.routeParams[i].set {
			return paramErr(ErrAlreadySet, key)
		}
		m.routeParams[i].value = value
		m.routeParams[i].set = true
		return nil
	}
	return paramErr(ErrUnknownParam, key)
}
