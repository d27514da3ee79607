// Package auth provides CoinGecko API key authentication.
//
// Keys are sent as a request header whose name depends on the plan:
//   - public: no key
//   - demo:   x-cg-demo-api-key against api.coingecko.com
//   - pro:    x-cg-pro-api-key against pro-api.coingecko.com
package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Plan is a CoinGecko API plan.
type Plan string

const (
	PlanPublic Plan = "public"
	PlanDemo   Plan = "demo"
	PlanPro    Plan = "pro"
)

// Header names per plan.
const (
	DemoKeyHeader = "x-cg-demo-api-key"
	ProKeyHeader  = "x-cg-pro-api-key"
)

// Base URLs per plan.
const (
	PublicBaseURL = "https://api.coingecko.com"
	ProBaseURL    = "https://pro-api.coingecko.com"
)

// ParsePlan validates a plan name. Empty means public.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PlanPublic, nil
	case PlanPublic, PlanDemo, PlanPro:
		return p, nil
	default:
		return "", fmt.Errorf("unknown plan %q", s)
	}
}

// BaseURL returns the API host for the plan.
func (p Plan) BaseURL() string {
	if p == PlanPro {
		return ProBaseURL
	}
	return PublicBaseURL
}

// Credentials holds the API key for a plan.
type Credentials struct {
	Plan Plan
	Key  string
}

// LoadCredentials builds credentials from an inline key or a key file.
// keyPath takes precedence when both are set.
func LoadCredentials(plan Plan, key, keyPath string) (*Credentials, error) {
	if keyPath != "" {
		k, err := LoadKey(keyPath)
		if err != nil {
			return nil, fmt.Errorf("load api key: %w", err)
		}
		key = k
	}

	if plan == PlanPublic {
		return &Credentials{Plan: plan}, nil
	}
	if key == "" {
		return nil, fmt.Errorf("API key is required for plan %q", plan)
	}

	return &Credentials{Plan: plan, Key: key}, nil
}

// LoadKey reads an API key from a file, trimming surrounding whitespace.
func LoadKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("key file %s is empty", path)
	}
	return key, nil
}

// HeaderName returns the header carrying the key, or "" for the public plan.
func (c *Credentials) HeaderName() string {
	switch c.Plan {
	case PlanDemo:
		return DemoKeyHeader
	case PlanPro:
		return ProKeyHeader
	default:
		return ""
	}
}

// Configure attaches the key header to req. It matches rest.ConfigureFunc.
func (c *Credentials) Configure(req *http.Request) {
	if c == nil {
		return
	}
	if name := c.HeaderName(); name != "" && c.Key != "" {
		req.Header.Set(name, c.Key)
	}
}
