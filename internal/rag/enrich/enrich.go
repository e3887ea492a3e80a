package enrich

import (
	"context"
	"strings"

	"github.com/apatwari/docchat/internal/rag/llm"
	"github.com/apatwari/docchat/pkg/logkit"
)

const enrichSystemPrompt = `You are a query rewriting assistant. Given a user's search query, rewrite it to make it more specific and relevant for document retrieval: expand abbreviations, add close domain synonyms, keep it short. Only output the rewritten query keywords/phrases, nothing else. No explanations, no quotes.`

var logger = logkit.NewLogger("QueryEnricher")

// Enrich rewrites the raw query for better retrieval recall. It never fails
// hard: on any provider error or useless output the raw query comes back
// unchanged with ok=false, which callers surface as a degraded step.
func Enrich(ctx context.Context, provider llm.Provider, query string) (string, bool) {
	log := logger.With("traceId", ctx.Value("traceId"))

	out, err := provider.Complete(ctx, enrichSystemPrompt, "Original Query: "+query)
	if err != nil {
		log.Warn("Enrichment failed, using raw query", "error", err)
		return query, false
	}

	enriched := strings.Trim(strings.TrimSpace(out), `"`)
	if enriched == "" {
		log.Warn("Enrichment produced empty output, using raw query")
		return query, false
	}
	return enriched, true
}
