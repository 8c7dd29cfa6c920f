package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in     string
		out    string
		reason Reason
	}{
		{"1", "1", ""},
		{"1.0", "1", ""},
		{"1.23", "1.23", ""},
		{"1,23", "1.23", ""},
		{"12,5", "12.5", ""},
		{"12.5", "12.5", ""},
		{"0.01", "0.01", ""},
		{"1.005", "1.01", ""},   // half-up rounding
		{"12.345", "12.35", ""}, // half-up rounding
		{"12.344", "12.34", ""},
		{" 2.50 ", "2.5", ""},
		{"1000000000", "1000000000", ""},
		{"", "", ReasonEmptyInput},
		{"   ", "", ReasonEmptyInput},
		{"abc", "", ReasonNotANumber},
		{"1.2.3", "", ReasonNotANumber},
		{"0", "", ReasonNonPositive},
		{"-1", "", ReasonNonPositive},
		{"0,004", "", ReasonNonPositive},
		{"1000000000.01", "", ReasonTooLarge},
		{"5000000000", "", ReasonTooLarge},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.reason == "" {
			if err != nil {
				t.Fatalf("%q unexpected error: %v", tc.in, err)
			}
			if !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s", tc.in, tc.out, got)
			}
			continue
		}
		reason, ok := ReasonOf(err)
		if !ok || reason != tc.reason {
			t.Fatalf("%q expected reason %s, got %v", tc.in, tc.reason, err)
		}
	}
}

func TestParseAmountSeparatorsAgree(t *testing.T) {
	for _, pair := range [][2]string{{"12,5", "12.5"}, {"0,99", "0.99"}, {"1234,567", "1234.567"}} {
		a, errA := ParseAmount(pair[0])
		b, errB := ParseAmount(pair[1])
		if errA != nil || errB != nil {
			t.Fatalf("unexpected errors: %v %v", errA, errB)
		}
		if !a.Equal(b) {
			t.Fatalf("%q and %q disagree: %s vs %s", pair[0], pair[1], a, b)
		}
	}
}

func TestParseAmountErrorsMatchSentinels(t *testing.T) {
	_, err := ParseAmount("-3")
	if !errors.Is(err, ErrNonPositive) {
		t.Fatalf("expected ErrNonPositive, got %v", err)
	}
	if errors.Is(err, ErrTooLarge) {
		t.Fatalf("did not expect ErrTooLarge")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != FieldAmount {
		t.Fatalf("expected amount field, got %#v", err)
	}
}

func TestAmountFromFloat(t *testing.T) {
	if got := AmountFromFloat(0.1 + 0.2); !got.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("expected 0.3, got %s", got)
	}
}
