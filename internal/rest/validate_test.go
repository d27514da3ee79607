package rest

import (
	"errors"
	"net/http"
	"testing"
)

type payload struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
}

func TestValidate(t *testing.T) {
	t.Run("200 decodes body", func(t *testing.T) {
		got, err := Validate[payload](200, []byte(`{"id":"bitcoin","price":1.5}`), http.Header{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "bitcoin" || got.Price != 1.5 {
			t.Errorf("Validate() = %+v", got)
		}
	})

	t.Run("200 malformed body", func(t *testing.T) {
		_, err := Validate[payload](200, []byte(`{"id":`), http.Header{})
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("err = %v, want *ParseError", err)
		}
		if perr.Message == "" {
			t.Error("ParseError.Message should not be empty")
		}
	})

	t.Run("200 wrong shape", func(t *testing.T) {
		_, err := Validate[[]payload](200, []byte(`{"id":"x"}`), http.Header{})
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("err = %v, want *ParseError", err)
		}
	})

	tests := []struct {
		name       string
		retryAfter string
		want       BannedError
	}{
		{"429 with retry-after", "5", BannedError{Seconds: 5, Known: true}},
		{"429 with zero retry-after", "0", BannedError{Seconds: 0, Known: true}},
		{"429 with padded retry-after", " 12 ", BannedError{Seconds: 12, Known: true}},
		{"429 without retry-after", "", BannedError{}},
		{"429 with negative retry-after", "-3", BannedError{}},
		{"429 with http-date retry-after", "Wed, 21 Oct 2015 07:28:00 GMT", BannedError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.retryAfter != "" {
				h.Set("retry-after", tt.retryAfter)
			}
			_, err := Validate[payload](429, []byte(`too many`), h)
			var banned *BannedError
			if !errors.As(err, &banned) {
				t.Fatalf("err = %v, want *BannedError", err)
			}
			if *banned != tt.want {
				t.Errorf("BannedError = %+v, want %+v", *banned, tt.want)
			}
		})
	}

	for _, code := range []int{500, 404, 401, 201, 503} {
		_, err := Validate[payload](code, []byte(`{}`), http.Header{})
		var serr *StatusError
		if !errors.As(err, &serr) || serr.StatusCode != code {
			t.Errorf("Validate(%d) err = %v, want StatusError{%d}", code, err, code)
		}
	}
}

func TestTransform(t *testing.T) {
	fn := testTransform()

	resp, err := fn(200, []byte(`{"value":"ok"}`), http.Header{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr, ok := resp.(testResponse)
	if !ok {
		t.Fatalf("response type = %T, want testResponse", resp)
	}
	if tr.Value != "ok" || resp.Kind() != "test" {
		t.Errorf("response = %+v kind %q", tr, resp.Kind())
	}

	if _, err := fn(500, nil, http.Header{}); err == nil {
		t.Error("expected error for 500")
	}
}
