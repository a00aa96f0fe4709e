package daikin

import (
	"errors"
	"testing"
)

func TestParseFields(t *testing.T) {
	t.Run("parses a field list", func(t *testing.T) {
		fields, err := parseFields("ret=OK,pow=1,mode=3,stemp=25.0,shum=0")
		if err != nil {
			t.Fatalf("parseFields() error = %v", err)
		}
		if fields.Get("pow") != "1" {
			t.Errorf("pow = %q, want 1", fields.Get("pow"))
		}
		if fields.Get("stemp") != "25.0" {
			t.Errorf("stemp = %q, want 25.0", fields.Get("stemp"))
		}
	})

	t.Run("tolerates trailing newline and empty pairs", func(t *testing.T) {
		fields, err := parseFields("ret=OK,htemp=24.0,,\n")
		if err != nil {
			t.Fatalf("parseFields() error = %v", err)
		}
		if fields.Get("htemp") != "24.0" {
			t.Errorf("htemp = %q, want 24.0", fields.Get("htemp"))
		}
	})

	t.Run("rejects missing ret", func(t *testing.T) {
		_, err := parseFields("pow=1,mode=3")
		if !errors.Is(err, ErrBadResponse) {
			t.Errorf("parseFields() error = %v, want ErrBadResponse", err)
		}
	})

	t.Run("rejects non-OK ret", func(t *testing.T) {
		_, err := parseFields("ret=PARAM NG,pow=1")
		if !errors.Is(err, ErrBadResponse) {
			t.Errorf("parseFields() error = %v, want ErrBadResponse", err)
		}
	})
}

func TestFieldsInt(t *testing.T) {
	fields := Fields{"pow": "1", "stemp": "25.0"}

	if n, err := fields.Int("pow"); err != nil || n != 1 {
		t.Errorf("Int(pow) = %d, %v, want 1", n, err)
	}
	if _, err := fields.Int("missing"); !errors.Is(err, ErrBadResponse) {
		t.Errorf("Int(missing) error = %v, want ErrBadResponse", err)
	}
	if _, err := fields.Int("stemp"); !errors.Is(err, ErrBadResponse) {
		t.Errorf("Int(stemp) error = %v, want ErrBadResponse", err)
	}
}

func TestFieldsName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"percent encoded", "%4f%66%66%69%63%65", "Office"},
		{"plain", "Bedroom", "Bedroom"},
		{"bad encoding falls back to raw", "%zz", "%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := Fields{"name": tt.raw}
			if got := fields.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRawValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"24.0", 24.0},
		{"-3.5", -3.5},
		{"25", 25.0},
		{"-", "-"},
		{"--", "--"},
		{"M", "M"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := rawValue(tt.raw); got != tt.want {
				t.Errorf("rawValue(%q) = %v (%T), want %v (%T)", tt.raw, got, got, tt.want, tt.want)
			}
		})
	}
}
