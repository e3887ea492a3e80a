package rag

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/docmodel"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/internal/metrics"
	"github.com/apatwari/docchat/internal/rag/enrich"
	"github.com/apatwari/docchat/internal/rag/llm"
	"github.com/apatwari/docchat/internal/rag/numeric"
	"github.com/apatwari/docchat/internal/rag/pii"
	"github.com/apatwari/docchat/pkg/logkit"
)

func returnOutput(job jobmodel.Job, ans string) jobmodel.Job {
	job.Payload.Answer = ans
	job.CurrentStep = jobmodel.StepDone
	return job
}

func logOutput(job jobmodel.Job, step jobmodel.PipelineStep, log *logkit.Logger) jobmodel.Job {
	job.CurrentStep = step
	log.Debug("ProcessQuery", "Current Step", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobmodel.Job, err error, message string, canRetry bool) jobmodel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobmodel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobmodel.JobStatusError
	return job
}

func (s *service) executeEnrichStep(ctx context.Context, log *logkit.Logger, job *jobmodel.Job) string {
	*job = logOutput(*job, jobmodel.StepEnriching, log)

	start := time.Now()
	defer func() { metrics.CaptureStageMetrics("enrichment", time.Since(start)) }()

	enriched, ok := enrich.Enrich(ctx, s.llmProvider, job.Payload.Question)
	job.Payload.EnrichedQuery = enriched
	job.Payload.EnrichDegraded = !ok
	return enriched
}

// executeRetrieveStep embeds the enriched query and searches the user's
// collection, filtered to the session's documents. With no documents attached
// there is nothing to search: the step returns no matches without touching
// the embedder or the vector store.
func (s *service) executeRetrieveStep(ctx context.Context, log *logkit.Logger, job *jobmodel.Job, enriched string) ([]docmodel.Match, error) {
	*job = logOutput(*job, jobmodel.StepRetrieving, log)

	docIDs := job.Payload.DocIDs
	if len(docIDs) == 0 {
		log.Debug("ProcessQuery", "Retrieval", "no documents attached, skipping search")
		job.Payload.RetrievedChunks = 0
		return nil, nil
	}

	embStart := time.Now()
	emb, err := s.embedder.GetEmbedding(ctx, enriched)
	metrics.CaptureStageMetrics("embedding", time.Since(embStart))
	if err != nil {
		return nil, err
	}

	topK := job.Payload.TopK
	if topK <= 0 {
		topK = config.DefaultTopK
	}

	searchStart := time.Now()
	defer func() { metrics.CaptureStageMetrics("vector_search", time.Since(searchStart)) }()

	matches, err := s.vectorDB.Search(ctx, job.UserId, emb, docIDs, topK)
	if err != nil {
		return nil, err
	}

	job.Payload.RetrievedChunks = len(matches)
	job.Payload.ProcessedDocIDs = docIDs
	job.Payload.Sources = sourcesFrom(matches)
	return matches, nil
}

// executeMaskStep joins the retrieved chunks into one context block and masks
// every sensitive span before anything leaves the process. The mapping stays
// in memory for this request only; a copy goes to the audit dir when one is
// configured.
func (s *service) executeMaskStep(ctx context.Context, log *logkit.Logger, job *jobmodel.Job, matches []docmodel.Match) (string, *pii.Mapping) {
	*job = logOutput(*job, jobmodel.StepMasking, log)

	start := time.Now()
	defer func() { metrics.CaptureStageMetrics("masking", time.Since(start)) }()

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Content)
	}
	masked, mapping := pii.Mask(strings.Join(parts, "\n\n---\n\n"))

	if s.auditDir != "" && mapping.Len() > 0 {
		traceId := job.TraceId
		go func() {
			if _, err := pii.SaveMapping(s.auditDir, traceId, mapping); err != nil {
				s.logger.Error("Failed to save mask audit record", "error", err)
			}
		}()
	}

	return masked, mapping
}

func (s *service) executeAnswerStep(ctx context.Context, log *logkit.Logger, job *jobmodel.Job, maskedContext string, history []jobmodel.ChatTurn) (llm.Answer, error) {
	*job = logOutput(*job, jobmodel.StepAnswering, log)

	start := time.Now()
	defer func() { metrics.CaptureStageMetrics("llm_generation", time.Since(start)) }()

	flat := make([]string, 0, len(history)*2)
	for _, t := range history {
		flat = append(flat, "User: "+t.Prompt, "Assistant: "+t.Response)
	}

	answer, err := llm.GenerateAnswer(ctx, s.llmProvider, job.Payload.Question, maskedContext, flat)
	if err != nil {
		return llm.Answer{}, err
	}
	job.Payload.MaskedAnswer = answer.Answer
	return answer, nil
}

// executeUnmaskStep restores the original values in the model's answer and,
// when the model asked for a computation, evaluates the formula against the
// true values. The model only ever saw placeholders, so any arithmetic it
// rendered was done on scaled stand-ins; that rendering gets swapped for the
// real result when it can be found, otherwise the result is appended.
func (s *service) executeUnmaskStep(ctx context.Context, log *logkit.Logger, job *jobmodel.Job, answer llm.Answer, mapping *pii.Mapping) string {
	*job = logOutput(*job, jobmodel.StepUnmasking, log)

	start := time.Now()
	defer func() { metrics.CaptureStageMetrics("unmasking", time.Since(start)) }()

	final := mapping.UnmaskModelOutput(answer.Answer)

	if answer.ComputeNeeded && answer.Formula != "" && len(answer.Variables) > 0 {
		result, scaledRendering, err := resolveFormula(answer, mapping)
		if err != nil {
			log.Warn("Could not compute formula, returning answer as is", "error", err)
		} else if scaledRendering != "" && strings.Contains(final, scaledRendering) {
			final = strings.ReplaceAll(final, scaledRendering, numeric.FormatValue(result))
		} else {
			final = final + "\n\nComputed result: " + numeric.FormatValue(result)
		}
	}

	job.Payload.UnmaskedAnswer = final
	return final
}

// resolveFormula parses every variable back to its true numeric value and
// evaluates the formula twice: once on the true values for the result, once
// on min-max scaled values to reconstruct what the model would have rendered.
func resolveFormula(answer llm.Answer, mapping *pii.Mapping) (float64, string, error) {
	values := make(map[string]float64, len(answer.Variables))
	for name, raw := range answer.Variables {
		original, known := mapping.Original(raw)
		if !known {
			original = raw
		}
		v, err := numeric.ParseValue(original, pii.CategoryOf(raw))
		if err != nil {
			return 0, "", fmt.Errorf("variable %q: %w", name, err)
		}
		values[strings.ToLower(name)] = v
		// The model sometimes writes the placeholder itself into the
		// formula instead of the variable name.
		if token := strings.ToLower(strings.Trim(raw, "[]")); pii.CategoryOf(raw) != "" {
			values[token] = v
		}
	}

	formula := strings.NewReplacer("[", "", "]", "").Replace(answer.Formula)

	result, err := numeric.Eval(formula, values)
	if err != nil {
		return 0, "", err
	}

	scaledValues, _ := numeric.Scale(values)
	scaledResult, err := numeric.Eval(formula, scaledValues)
	if err != nil {
		return result, "", nil
	}
	return result, numeric.FormatScaled(scaledResult), nil
}

func sourcesFrom(matches []docmodel.Match) []string {
	seen := make(map[string]bool, len(matches))
	var sources []string
	for _, m := range matches {
		if m.Filename == "" || seen[m.Filename] {
			continue
		}
		seen[m.Filename] = true
		sources = append(sources, m.Filename)
	}
	return sources
}
