package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyFormatBRL(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1234, "R$ 12,34"},
		{5000, "R$ 50,00"},
		{4550, "R$ 45,50"},
		{5, "R$ 0,05"},
		{0, "R$ 0,00"},
		{150000, "R$ 1500,00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).FormatBRL(); got != tc.want {
			t.Fatalf("%d cents expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	cases := []struct {
		cents int64
		json  string
	}{
		{4550, "45.5"},
		{5000, "50"},
		{1234, "12.34"},
	}
	for _, tc := range cases {
		b, err := json.Marshal(Money{Cents: tc.cents})
		if err != nil {
			t.Fatalf("marshal %d: %v", tc.cents, err)
		}
		if string(b) != tc.json {
			t.Fatalf("%d cents expected %s, got %s", tc.cents, tc.json, b)
		}
		var m Money
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if m.Cents != tc.cents {
			t.Fatalf("round trip %d -> %d", tc.cents, m.Cents)
		}
	}
}

func TestMoneyUnmarshalZero(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte("0"), &m); err != nil {
		t.Fatalf("unmarshal zero: %v", err)
	}
	if m.Cents != 0 {
		t.Fatalf("expected 0 cents, got %d", m.Cents)
	}
}
