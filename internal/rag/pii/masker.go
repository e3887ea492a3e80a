package pii

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Sensitive span categories, highest priority first. An earlier match blocks
// any later pattern that overlaps it.
const (
	CategoryMoneyRange   = "MONEY_RANGE"
	CategoryPercentRange = "PERCENT_RANGE"
	CategoryPercent      = "PERCENT"
	CategoryMoney        = "MONEY"
	CategoryOrg          = "ORG"
)

const (
	moneyTerm  = `(?:[$₹€£]\s?\d{1,3}(?:,\d{3})*(?:\.\d+)?(?:\s?(?:million|billion|crore|[MBK]))?|\d{1,3}(?:,\d{3})*(?:\.\d+)?\s?(?:million|billion|crore))`
	rangeDash  = `\s?[–-]\s?`
	percent    = `[+\-]?\d+(?:\.\d+)?\s?%`
	orgPattern = `[A-Z][A-Za-z&]*(?:\s[A-Z][A-Za-z&]*)*\s(?:Inc|Corp|Corporation|Ltd|LLC|plc)\.?`
)

type maskPattern struct {
	re       *regexp.Regexp
	category string
}

var patterns = []maskPattern{
	{regexp.MustCompile(moneyTerm + rangeDash + moneyTerm), CategoryMoneyRange},
	{regexp.MustCompile(percent + rangeDash + percent), CategoryPercentRange},
	{regexp.MustCompile(percent), CategoryPercent},
	{regexp.MustCompile(moneyTerm), CategoryMoney},
	{regexp.MustCompile(orgPattern), CategoryOrg},
}

// Mapping records placeholder to original value for one query/response cycle.
// It is created by Mask and must not be reused across queries.
type Mapping struct {
	byValue       map[string]string
	byPlaceholder map[string]string
	counts        map[string]int
}

func newMapping() *Mapping {
	return &Mapping{
		byValue:       make(map[string]string),
		byPlaceholder: make(map[string]string),
		counts:        make(map[string]int),
	}
}

func (m *Mapping) placeholderFor(value string, category string) string {
	if ph, ok := m.byValue[value]; ok {
		return ph
	}
	m.counts[category]++
	ph := fmt.Sprintf("[%s_%d]", category, m.counts[category])
	m.byValue[value] = ph
	m.byPlaceholder[ph] = value
	return ph
}

func (m *Mapping) Len() int {
	return len(m.byPlaceholder)
}

// Original returns the real value behind a placeholder like "[MONEY_1]".
// Bare placeholders without brackets are also accepted, the LLM tends to
// drop them.
func (m *Mapping) Original(placeholder string) (string, bool) {
	if v, ok := m.byPlaceholder[placeholder]; ok {
		return v, true
	}
	if !strings.HasPrefix(placeholder, "[") {
		v, ok := m.byPlaceholder["["+placeholder+"]"]
		return v, ok
	}
	return "", false
}

// Placeholders returns a copy of the placeholder to original map.
func (m *Mapping) Placeholders() map[string]string {
	out := make(map[string]string, len(m.byPlaceholder))
	for k, v := range m.byPlaceholder {
		out[k] = v
	}
	return out
}

// CategoryOf extracts the category from a placeholder, e.g. "[MONEY_2]" -> MONEY.
func CategoryOf(placeholder string) string {
	trimmed := strings.Trim(placeholder, "[]")
	idx := strings.LastIndex(trimmed, "_")
	if idx < 0 {
		return ""
	}
	return trimmed[:idx]
}

type replacement struct {
	start, end  int
	placeholder string
}

// Mask replaces every detected sensitive span with a stable placeholder and
// returns the mapping needed to reverse it. The same literal span always maps
// to the same placeholder within one call. Empty input yields empty output
// and an empty mapping.
func Mask(text string) (string, *Mapping) {
	mapping := newMapping()
	if text == "" {
		return "", mapping
	}

	occupied := make([]bool, len(text))
	var replacements []replacement

	for _, p := range patterns {
		for _, span := range p.re.FindAllStringIndex(text, -1) {
			if overlaps(occupied, span[0], span[1]) {
				continue
			}
			for i := span[0]; i < span[1]; i++ {
				occupied[i] = true
			}
			value := strings.TrimSpace(text[span[0]:span[1]])
			replacements = append(replacements, replacement{
				start:       span[0],
				end:         span[1],
				placeholder: mapping.placeholderFor(value, p.category),
			})
		}
	}

	// Apply from the end so earlier offsets stay valid.
	sort.Slice(replacements, func(i, j int) bool {
		return replacements[i].start > replacements[j].start
	})
	masked := text
	for _, r := range replacements {
		masked = masked[:r.start] + r.placeholder + masked[r.end:]
	}
	return masked, mapping
}

// Unmask restores every bracketed placeholder in text with its original
// value. Applying Unmask to the masked output of Mask returns the input
// exactly, even when the input itself contained a MONEY_1-shaped literal.
func (m *Mapping) Unmask(text string) string {
	return m.unmask(text, false)
}

// UnmaskModelOutput additionally restores bare placeholders whose brackets
// the model dropped. Only safe on model-generated text, never on text that
// round-trips through Mask.
func (m *Mapping) UnmaskModelOutput(text string) string {
	return m.unmask(text, true)
}

func (m *Mapping) unmask(text string, bareTokens bool) string {
	if text == "" || len(m.byPlaceholder) == 0 {
		return text
	}
	// Longest placeholders first so [MONEY_1] never clobbers [MONEY_10].
	placeholders := make([]string, 0, len(m.byPlaceholder))
	for ph := range m.byPlaceholder {
		placeholders = append(placeholders, ph)
	}
	sort.Slice(placeholders, func(i, j int) bool {
		return len(placeholders[i]) > len(placeholders[j])
	})

	out := text
	for _, ph := range placeholders {
		out = strings.ReplaceAll(out, ph, m.byPlaceholder[ph])
	}
	if bareTokens {
		for _, ph := range placeholders {
			out = strings.ReplaceAll(out, strings.Trim(ph, "[]"), m.byPlaceholder[ph])
		}
	}
	return out
}

func overlaps(occupied []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if occupied[i] {
			return true
		}
	}
	return false
}
