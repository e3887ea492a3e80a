package numeric

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"$4.2 billion", 4.2e9, false},
		{"$5 million", 5e6, false},
		{"₹3 crore", 3e7, false},
		{"2 lakh", 2e5, false},
		{"$1,250,000", 1250000, false},
		{"10k", 10000, false},
		{"€7.5M", 7.5e6, false},
		{"42", 42, false},
		{"not money", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12%", 0.12, false},
		{"12.5 %", 0.125, false},
		{"+3%", 0.03, false},
		{"0.5%", 0.005, false},
		{"percent", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePercent(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePercent(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ParsePercent(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseValue_ByCategory(t *testing.T) {
	if v, err := ParseValue("12%", "PERCENT"); err != nil || v != 0.12 {
		t.Errorf("percent category: got %v, %v", v, err)
	}
	if v, err := ParseValue("$5 million", "MONEY"); err != nil || v != 5e6 {
		t.Errorf("money category: got %v, %v", v, err)
	}
	if v, err := ParseValue("3.5", ""); err != nil || v != 3.5 {
		t.Errorf("plain float: got %v, %v", v, err)
	}
}

func TestScaleDescale(t *testing.T) {
	values := map[string]float64{"a": 10, "b": 20, "c": 30}
	scaled, params := Scale(values)

	if scaled["a"] != 0 || scaled["c"] != 1 {
		t.Errorf("min/max not mapped to 0/1: %+v", scaled)
	}
	if scaled["b"] != 0.5 {
		t.Errorf("midpoint = %v, want 0.5", scaled["b"])
	}

	for k, v := range values {
		if got := Descale(scaled[k], params); math.Abs(got-v) > 1e-9 {
			t.Errorf("Descale(%s) = %v, want %v", k, got, v)
		}
	}
}

func TestScale_DegenerateRange(t *testing.T) {
	scaled, _ := Scale(map[string]float64{"x": 7, "y": 7})
	if scaled["x"] != 0.5 || scaled["y"] != 0.5 {
		t.Errorf("equal values should scale to 0.5, got %+v", scaled)
	}
}

func TestEval(t *testing.T) {
	vars := map[string]float64{"revenue": 100, "cost": 40, "rate": 0.1}

	tests := []struct {
		formula string
		want    float64
		wantErr bool
	}{
		{"revenue - cost", 60, false},
		{"(revenue - cost) * rate", 6, false},
		{"revenue / cost", 2.5, false},
		{"-cost + revenue", 60, false},
		{"Revenue - COST", 60, false},
		{"2 * (3 + 4)", 14, false},
		{"revenue / (cost - 40)", 0, true},
		{"unknown_var + 1", 0, true},
		{"revenue +", 0, true},
	}

	for _, tt := range tests {
		got, err := Eval(tt.formula, vars)
		if (err != nil) != tt.wantErr {
			t.Errorf("Eval(%q) error = %v, wantErr %v", tt.formula, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Eval(%q) = %v, want %v", tt.formula, got, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4200000000, "4,200,000,000"},
		{1250, "1,250"},
		{999.5, "999.50"},
		{0.12, "0.12"},
		{-1500, "-1,500"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatScaled(t *testing.T) {
	if got := FormatScaled(0.5); got != "0.500" {
		t.Errorf("FormatScaled(0.5) = %q", got)
	}
}
