package pii

import (
	"fmt"
	"strings"
	"testing"
)

func TestMask_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantMasked string
		wantCount  int
	}{
		{
			name:       "Money_With_Symbol",
			text:       "Revenue was $4.2 billion last year.",
			wantMasked: "Revenue was [MONEY_1] last year.",
			wantCount:  1,
		},
		{
			name:       "Percent",
			text:       "Margins grew 12.5% in Q3.",
			wantMasked: "Margins grew [PERCENT_1] in Q3.",
			wantCount:  1,
		},
		{
			name:       "Range_Takes_Priority_Over_Single",
			text:       "Guidance of $10 million - $12 million stands.",
			wantMasked: "Guidance of [MONEY_RANGE_1] stands.",
			wantCount:  1,
		},
		{
			name:       "Percent_Range",
			text:       "Growth of 5% - 7% is expected.",
			wantMasked: "Growth of [PERCENT_RANGE_1] is expected.",
			wantCount:  1,
		},
		{
			name:       "Organization",
			text:       "Acme Corp reported strong results.",
			wantMasked: "[ORG_1] reported strong results.",
			wantCount:  1,
		},
		{
			name:       "Repeated_Value_Reuses_Placeholder",
			text:       "Costs were $5 million. Yes, $5 million.",
			wantMasked: "Costs were [MONEY_1]. Yes, [MONEY_1].",
			wantCount:  1,
		},
		{
			name:       "Clean_Text_Identity",
			text:       "The quarterly report covers operations and strategy.",
			wantMasked: "The quarterly report covers operations and strategy.",
			wantCount:  0,
		},
		{
			name:       "Empty_Input",
			text:       "",
			wantMasked: "",
			wantCount:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			masked, mapping := Mask(tt.text)
			if masked != tt.wantMasked {
				t.Errorf("Mask() = %q, want %q", masked, tt.wantMasked)
			}
			if mapping.Len() != tt.wantCount {
				t.Errorf("mapping.Len() = %d, want %d", mapping.Len(), tt.wantCount)
			}
		})
	}
}

func TestMask_RoundTrip(t *testing.T) {
	texts := []string{
		"Revenue was $4.2 billion, up 12% from $3.75 billion at Acme Corp.",
		"A range of $1 million - $2 million with growth of 5% - 7%.",
		"Nothing sensitive here at all.",
	}

	for _, text := range texts {
		masked, mapping := Mask(text)
		if got := mapping.Unmask(masked); got != text {
			t.Errorf("round trip failed:\n got: %q\nwant: %q", got, text)
		}
	}
}

func TestMask_DistinctValuesGetDistinctPlaceholders(t *testing.T) {
	masked, mapping := Mask("Compare $5 million against $8 million.")
	if mapping.Len() != 2 {
		t.Fatalf("expected 2 placeholders, got %d", mapping.Len())
	}
	if !strings.Contains(masked, "[MONEY_1]") || !strings.Contains(masked, "[MONEY_2]") {
		t.Errorf("expected numbered placeholders, got %q", masked)
	}
}

func TestUnmaskModelOutput_BarePlaceholders(t *testing.T) {
	_, mapping := Mask("Revenue was $4.2 billion.")

	// models tend to drop the brackets
	got := mapping.UnmaskModelOutput("The revenue MONEY_1 was strong.")
	if got != "The revenue $4.2 billion was strong." {
		t.Errorf("bare placeholder not unmasked: %q", got)
	}

	// strict Unmask must leave the bare token alone
	if got := mapping.Unmask("The revenue MONEY_1 was strong."); got != "The revenue MONEY_1 was strong." {
		t.Errorf("Unmask touched a bare token: %q", got)
	}
}

func TestMask_RoundTrip_LiteralPlaceholderToken(t *testing.T) {
	// A document can legitimately contain a MONEY_1-shaped string. Masking
	// and unmasking must still reproduce the input byte for byte.
	text := "Item code MONEY_1 was sold for $5 last quarter."

	masked, mapping := Mask(text)
	if got := mapping.Unmask(masked); got != text {
		t.Errorf("round trip rewrote the literal token:\n got: %q\nwant: %q", got, text)
	}
}

func TestUnmask_ManyPlaceholdersNoPrefixClobber(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 11; i++ {
		fmt.Fprintf(&sb, "$%d million and ", i)
	}
	text := sb.String()

	masked, mapping := Mask(text)
	if mapping.Len() != 11 {
		t.Fatalf("expected 11 placeholders, got %d", mapping.Len())
	}
	if got := mapping.Unmask(masked); got != text {
		t.Errorf("MONEY_1 clobbered MONEY_10/MONEY_11:\n got %q\nwant %q", got, text)
	}
}

func TestOriginal(t *testing.T) {
	_, mapping := Mask("Margins of 12%.")

	if v, ok := mapping.Original("[PERCENT_1]"); !ok || v != "12%" {
		t.Errorf("Original bracketed = %q, %v", v, ok)
	}
	if v, ok := mapping.Original("PERCENT_1"); !ok || v != "12%" {
		t.Errorf("Original bare = %q, %v", v, ok)
	}
	if _, ok := mapping.Original("[MONEY_1]"); ok {
		t.Error("Original returned a value for an unknown placeholder")
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		placeholder string
		want        string
	}{
		{"[MONEY_1]", "MONEY"},
		{"MONEY_2", "MONEY"},
		{"[MONEY_RANGE_3]", "MONEY_RANGE"},
		{"[PERCENT_1]", "PERCENT"},
		{"not-a-placeholder", ""},
	}
	for _, tt := range tests {
		if got := CategoryOf(tt.placeholder); got != tt.want {
			t.Errorf("CategoryOf(%q) = %q, want %q", tt.placeholder, got, tt.want)
		}
	}
}
