package agent

import (
	"context"
	"fmt"
	"strings"

	"docs-agent/config"
	"docs-agent/errors"
	"docs-agent/llmclient"
	"docs-agent/prompts"
	"docs-agent/web/types"

	"go.uber.org/zap"
)

// StatusFunc receives progress messages while an answer is being produced.
// A nil StatusFunc is valid.
type StatusFunc func(message string)

// Result is one answered turn.
type Result struct {
	Answer  string
	Sources []types.Source
	Effort  string
	Cached  bool
}

type Agent struct {
	cfg    *config.Config
	llm    *llmclient.Client
	cache  *AnswerCache
	logger *zap.Logger
}

func NewAgent(cfg *config.Config, llm *llmclient.Client, logger *zap.Logger) (*Agent, error) {
	cache, err := NewAnswerCache(cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("create answer cache: %w", err)
	}
	logger.Info("Agent initialized",
		zap.Int("search_results", cfg.SearchResults),
		zap.Int("answer_sources", cfg.AnswerSources),
		zap.Float64("score_threshold", cfg.ScoreThreshold))
	return &Agent{cfg: cfg, llm: llm, cache: cache, logger: logger}, nil
}

// Answer runs one question through retrieval, re-ranking, and the model,
// enforcing the documentation-only boundary on the output.
func (a *Agent) Answer(ctx context.Context, question string, history []types.AgentMessage, status StatusFunc) (Result, error) {
	notify := func(msg string) {
		if status != nil {
			status(msg)
		}
	}

	// Follow-up answers depend on the surrounding conversation, so they
	// bypass the shared cache entirely: a cached entry could carry another
	// conversation's context, and this turn's answer must not seed one.
	followUp := isFollowUp(question, len(history))
	if !followUp {
		if cached, ok := a.cache.Get(question); ok {
			a.logger.Debug("Answer cache hit", zap.String("question", question))
			return Result{Answer: cached.Answer, Sources: toSources(cached.Sources), Cached: true}, nil
		}
	}

	notify("Searching the documentation")
	hits, err := a.llm.SearchVectorStore(ctx, question, a.cfg.SearchResults)
	if err != nil {
		return Result{}, errors.WrapError(errors.ErrUpstreamUnavailable, err.Error())
	}

	ranked := rerank(hits, a.cfg.ScoreThreshold, a.cfg.AnswerSources)
	if len(ranked) == 0 {
		a.logger.Info("No usable documentation after re-ranking",
			zap.String("question", question),
			zap.Int("raw_hits", len(hits)))
		return Result{Answer: RefusalText}, nil
	}

	trimmed := trimHistory(history, a.cfg.HistoryMaxMessages, a.cfg.HistoryMaxChars)
	effort := classifyEffort(question)
	input := buildInput(question, ranked, trimmed)

	notify("Writing the answer")
	answer, err := a.collectResponse(ctx, input, effort)
	if err != nil {
		return Result{}, err
	}

	if violatesBoundary(answer) {
		escalated := escalateEffort(effort)
		a.logger.Info("Answer rejected by boundary check, retrying",
			zap.String("effort", effort),
			zap.String("escalated_effort", escalated))
		effort = escalated
		answer, err = a.collectResponse(ctx, input, effort)
		if err != nil {
			return Result{}, err
		}
		if violatesBoundary(answer) {
			return Result{Answer: RefusalText, Effort: effort}, nil
		}
	}

	answer = scrubDisclaimers(answer)
	if !followUp {
		a.cache.Put(question, CachedAnswer{Answer: answer, Sources: ranked})
	}

	return Result{Answer: answer, Sources: toSources(ranked), Effort: effort}, nil
}

// GenerateTitle produces a short session title from the opening message.
func (a *Agent) GenerateTitle(ctx context.Context, firstMessage string) (string, error) {
	input := []types.AgentMessage{{Role: "user", Content: firstMessage}}
	title, err := a.llm.CreateResponse(ctx, input, llmclient.ResponseOptions{
		Model:           a.cfg.TitleModel,
		Instructions:    prompts.TitleGenerator(),
		ReasoningEffort: EffortLow,
		MaxOutputTokens: 64,
	})
	if err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}
	title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"`))
	if title == "" {
		return "", errors.WrapError(errors.ErrInvalidInput, "model returned empty title")
	}
	return title, nil
}

// collectResponse drains the model's output stream into a single string.
// The boundary check needs the complete text, so deltas are not forwarded.
// Stream failures surface as errors so refusal stays reserved for genuine
// boundary violations and empty output.
func (a *Agent) collectResponse(ctx context.Context, input []types.AgentMessage, effort string) (string, error) {
	var out strings.Builder
	err := a.llm.StreamResponse(ctx, input, llmclient.ResponseOptions{
		Instructions:    prompts.DocsAssistant(),
		ReasoningEffort: effort,
	}, func(delta string) {
		out.WriteString(delta)
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.WrapError(errors.ErrUpstreamUnavailable, err.Error())
	}
	return out.String(), nil
}

// buildInput assembles the model input: trimmed history, then one user
// message holding the documentation block and the question.
func buildInput(question string, ranked []RankedHit, history []types.AgentMessage) []types.AgentMessage {
	var doc strings.Builder
	doc.WriteString("<documentation>\n")
	for i, hit := range ranked {
		if i > 0 {
			doc.WriteString("\n---\n")
		}
		fmt.Fprintf(&doc, "[%d] %s\n%s\n", i+1, hit.Filename, hit.Text)
	}
	doc.WriteString("</documentation>\n\n")
	doc.WriteString(question)

	input := make([]types.AgentMessage, 0, len(history)+1)
	input = append(input, history...)
	input = append(input, types.AgentMessage{Role: "user", Content: doc.String()})
	return input
}

func toSources(ranked []RankedHit) []types.Source {
	sources := make([]types.Source, 0, len(ranked))
	for _, hit := range ranked {
		sources = append(sources, types.Source{
			FileID:   hit.FileID,
			Filename: hit.Filename,
			Score:    hit.AdjustedScore,
		})
	}
	return sources
}
