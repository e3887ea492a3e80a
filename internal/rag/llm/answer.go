package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const answerSystemPrompt = `You are a financial document analyst. Answer the user's question using ONLY the provided context. The context has sensitive values masked as placeholders like "[MONEY_1]" or "[PERCENT_1]"; always refer to them exactly as written, placeholders included.

Respond ONLY with a valid JSON object containing exactly these fields:
{
    "title": "brief description of the answer",
    "answer": "the answer text, citing masked placeholders verbatim",
    "formula": "arithmetic formula over standardized variable names, or empty string",
    "variables": {
        "standardized_variable_name": "[MONEY_1] or other masked placeholder"
    },
    "computeNeeded": "True or False"
}

Standardized variable names: revenue, expenses, profit, cost, operating_expenses, tax, assets, liabilities, equity, rate, principal, period, quantity, price.

Rules:
1. computeNeeded is "True" only when the question requires arithmetic over values in the context; the formula must then use every variable listed and no others.
2. Wrap every placeholder in double quotes, never modify it.
3. If the context is empty or does not contain the answer, set "answer" to a statement that the question cannot be answered from the provided documents and computeNeeded to "False".
4. No markdown, no explanations outside the JSON, no trailing commas.`

// Answer is the parsed model reply. Parsed is false for the fallback variant
// where the raw text could not be decoded as JSON and is carried as the
// answer itself.
type Answer struct {
	Title         string
	Answer        string
	Formula       string
	Variables     map[string]string
	ComputeNeeded bool
	Parsed        bool
}

// looseBool tolerates the model emitting "True"/"False" strings, bare
// booleans, or a missing field.
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	trimmed := bytes.Trim(data, `"`)
	switch strings.ToLower(string(trimmed)) {
	case "true":
		*b = true
	case "false", "", "null":
		*b = false
	default:
		return fmt.Errorf("not a boolean: %s", data)
	}
	return nil
}

type answerWire struct {
	Title         string            `json:"title"`
	Answer        string            `json:"answer"`
	Formula       string            `json:"formula"`
	Variables     map[string]string `json:"variables"`
	ComputeNeeded looseBool         `json:"computeNeeded"`
}

// GenerateAnswer formats the masked context and query into the extraction
// prompt, calls the provider, and parses the reply. Provider errors propagate
// unchanged; parse failures degrade to the raw-text fallback, never an error.
func GenerateAnswer(ctx context.Context, provider Provider, query string, maskedContext string, history []string) (Answer, error) {
	var sb strings.Builder
	if len(history) > 0 {
		sb.WriteString("Conversation so far:\n")
		sb.WriteString(strings.Join(history, "\n"))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Query: ")
	sb.WriteString(query)
	sb.WriteString("\n\nHere is the masked context:\n\n")
	sb.WriteString(maskedContext)

	raw, err := provider.Complete(ctx, answerSystemPrompt, sb.String())
	if err != nil {
		return Answer{}, err
	}
	return ParseAnswer(raw), nil
}

// ParseAnswer attempts a strict decode of the model output; on failure the
// raw text becomes the answer with computeNeeded=false.
func ParseAnswer(raw string) Answer {
	cleaned := stripFences(raw)

	var wire answerWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil || wire.Answer == "" {
		return Answer{
			Answer:        strings.TrimSpace(raw),
			ComputeNeeded: false,
			Parsed:        false,
		}
	}
	return Answer{
		Title:         wire.Title,
		Answer:        wire.Answer,
		Formula:       wire.Formula,
		Variables:     wire.Variables,
		ComputeNeeded: bool(wire.ComputeNeeded),
		Parsed:        true,
	}
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
