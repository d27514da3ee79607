package rest

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Compile substitutes route placeholders and appends query params, returning
// the full URI. For GET, call params are sent in the query string too.
// Query pairs keep declaration order.
func Compile(m *Method) (string, error) {
	path := m.path
	for _, r := range m.routeParams {
		if !r.set {
			return "", paramErr(ErrMissingRouteParam, r.key)
		}
		path = strings.ReplaceAll(path, "{"+r.key+"}", r.value)
	}

	u, err := url.Parse(m.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedURL, m.baseURL+path)
	}

	var pairs []string
	if m.verb == http.MethodGet {
		if pairs, err = appendQuery(pairs, m.params); err != nil {
			return "", err
		}
	}
	if pairs, err = appendQuery(pairs, m.queryParams); err != nil {
		return "", err
	}

	if len(pairs) > 0 {
		q := strings.Join(pairs, "&")
		if u.RawQuery != "" {
			u.RawQuery += "&" + q
		} else {
			u.RawQuery = q
		}
	}
	return u.String(), nil
}

func appendQuery(pairs []string, set ParamSet) ([]string, error) {
	for _, p := range set.items {
		if p.set {
			pairs = append(pairs, url.QueryEscape(p.key)+"="+url.QueryEscape(p.value))
		} else if p.required {
			return nil, paramErr(ErrMissingParam, p.key)
		}
	}
	return pairs, nil
}
