// Package mcr implements the reasoning core: natural language in, logic
// clauses and proved answers out.
package mcr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/automenta/mcr-sub003/internal/logic"
	"github.com/automenta/mcr-sub003/internal/prompt"
	"github.com/automenta/mcr-sub003/internal/reason"
	"github.com/automenta/mcr-sub003/internal/sanitize"
	"github.com/automenta/mcr-sub003/internal/session"
)

// LLM generates completions for the pipeline's prompts.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Reasoner proves goals against a clause knowledge base.
type Reasoner interface {
	Solve(ctx context.Context, kb, goal string) ([]reason.Binding, error)
	Validate(kb string) error
}

// Service owns the sessions and runs the assert and query pipelines.
type Service struct {
	mu       sync.RWMutex
	llm      LLM
	reasoner Reasoner
	store    *session.Store
	log      *zap.Logger
}

// New wires a service from its collaborators.
func New(llm LLM, reasoner Reasoner, store *session.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{llm: llm, reasoner: reasoner, store: store, log: log}
}

// SetLLM swaps the language model gateway at runtime and returns the one
// it replaced. In-flight operations finish on the gateway they started
// with.
func (s *Service) SetLLM(client LLM) LLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.llm
	s.llm = client
	return prev
}

func (s *Service) gateway() LLM {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llm
}

// AssertResult reports what one assert added to the session.
type AssertResult struct {
	// Intent is FACT or RULE.
	Intent string `json:"intent"`
	// AddedClauses holds the clauses this assert appended. Empty when the
	// model's output could not be parsed or every clause was a duplicate.
	AddedClauses []string `json:"addedClauses"`
	// TotalClauses is the session's clause count after the assert.
	TotalClauses int `json:"totalClauses"`
}

// QueryOptions tunes a single query.
type QueryOptions struct {
	// Hybrid falls back to a direct model answer when the knowledge base
	// proves nothing.
	Hybrid bool `json:"hybrid"`
}

// QueryResult is the full outcome of one query.
type QueryResult struct {
	GeneratedQuery string           `json:"generatedQuery"`
	Bindings       []reason.Binding `json:"bindings,omitempty"`
	Proved         bool             `json:"proved"`
	Answer         string           `json:"answer"`
	// Hybrid marks an answer produced by the fallback path rather than
	// the knowledge base.
	Hybrid bool `json:"hybrid"`
}

// CreateSession validates the seed clauses, registers a new session with
// them, and returns its id. An empty seed creates an empty session.
func (s *Service) CreateSession(seed string) (string, error) {
	clauses := splitClauses(seed)
	if len(clauses) > 0 {
		if err := s.reasoner.Validate(strings.Join(clauses, "\n")); err != nil {
			return "", fmt.Errorf("seed clauses: %w", err)
		}
	}
	id := s.store.Create(clauses)
	s.log.Info("session created", zap.String("session", id), zap.Int("seedClauses", len(clauses)))
	return id, nil
}

// DeleteSession removes the session. A second delete of the same id fails.
func (s *Service) DeleteSession(id string) error {
	if err := s.store.Delete(id); err != nil {
		return s.mapStoreErr(err)
	}
	s.log.Info("session deleted", zap.String("session", id))
	return nil
}

// Sessions lists every live session.
func (s *Service) Sessions() []session.Session {
	return s.store.List()
}

// KnowledgeBase returns the session's clauses joined as one program text.
func (s *Service) KnowledgeBase(id string) (string, error) {
	snap, err := s.store.Snapshot(id)
	if err != nil {
		return "", s.mapStoreErr(err)
	}
	return strings.Join(snap.Clauses, "\n"), nil
}

// ReplaceKB swaps the session's entire knowledge base for kb after the
// engine accepts it. Rejected programs leave the session untouched.
func (s *Service) ReplaceKB(id, kb string) error {
	clauses := splitClauses(kb)
	if err := s.reasoner.Validate(strings.Join(clauses, "\n")); err != nil {
		return err
	}
	err := s.store.With(id, func([]string) ([]string, error) {
		return clauses, nil
	})
	return s.mapStoreErr(err)
}

// Assert runs the translation pipeline on text and appends the resulting
// clauses to the session. The whole pipeline holds the session's lock, so
// concurrent asserts against one session serialize. A model response with
// no parsable structure adds zero clauses and is not an error.
func (s *Service) Assert(ctx context.Context, id, text string) (AssertResult, error) {
	var res AssertResult
	err := s.store.With(id, func(clauses []string) ([]string, error) {
		kb := strings.Join(clauses, "\n")
		schema := prompt.SchemaSection(logic.Signatures(kb))

		intent, err := s.classify(ctx, text)
		if err != nil {
			return clauses, err
		}
		res.Intent = intent

		var candidates []string
		switch intent {
		case "RULE":
			candidates, err = s.translateRule(ctx, text, schema)
		default:
			candidates, err = s.translateFacts(ctx, text, schema)
		}
		if err != nil {
			if errors.Is(err, sanitize.ErrNoJSON) {
				s.log.Warn("translation produced no clauses",
					zap.String("session", id), zap.String("intent", intent))
				res.TotalClauses = len(clauses)
				return clauses, nil
			}
			return clauses, err
		}

		next := clauses
		for _, c := range candidates {
			if containsClause(next, c) {
				continue
			}
			next = append(next, c)
			res.AddedClauses = append(res.AddedClauses, c)
		}
		if len(res.AddedClauses) > 0 {
			if err := s.reasoner.Validate(strings.Join(next, "\n")); err != nil {
				res.AddedClauses = nil
				return clauses, err
			}
		}
		res.TotalClauses = len(next)
		s.log.Info("assert",
			zap.String("session", id),
			zap.String("intent", intent),
			zap.Int("added", len(res.AddedClauses)))
		return next, nil
	})
	if err != nil {
		return AssertResult{}, s.mapStoreErr(err)
	}
	return res, nil
}

// Query translates question to a goal, proves it against the session's
// knowledge base, and summarizes the outcome. The session's lock is held
// for the whole operation.
func (s *Service) Query(ctx context.Context, id, question string, opts QueryOptions) (QueryResult, error) {
	var res QueryResult
	err := s.store.With(id, func(clauses []string) ([]string, error) {
		kb := strings.Join(clauses, "\n")
		schema := prompt.SchemaSection(logic.Signatures(kb))

		p, err := prompt.Render(prompt.QueryTranslation, map[string]string{
			"question": question,
			"schema":   schema,
		})
		if err != nil {
			return clauses, err
		}
		raw, err := s.gateway().Generate(ctx, p)
		if err != nil {
			return clauses, fmt.Errorf("query translation: %w", err)
		}
		goal := sanitize.Goal(raw)
		if goal == "" {
			return clauses, fmt.Errorf("query translation produced an empty goal")
		}
		res.GeneratedQuery = goal

		bindings, err := s.reasoner.Solve(ctx, kb, goal)
		if err != nil {
			return clauses, err
		}
		res.Bindings = bindings
		res.Proved = len(bindings) > 0

		if !res.Proved && opts.Hybrid {
			answer, err := s.directAnswer(ctx, question)
			if err != nil {
				return clauses, err
			}
			res.Answer = answer
			res.Hybrid = true
			return clauses, nil
		}

		answer, err := s.summarize(ctx, goal, bindings)
		if err != nil {
			return clauses, err
		}
		res.Answer = answer
		return clauses, nil
	})
	if err != nil {
		return QueryResult{}, s.mapStoreErr(err)
	}
	s.log.Info("query",
		zap.String("session", id),
		zap.String("goal", res.GeneratedQuery),
		zap.Bool("proved", res.Proved),
		zap.Bool("hybrid", res.Hybrid))
	return res, nil
}

func (s *Service) classify(ctx context.Context, text string) (string, error) {
	p, err := prompt.Render(prompt.IntentClassifier, map[string]string{"text": text})
	if err != nil {
		return "", err
	}
	raw, err := s.gateway().Generate(ctx, p)
	if err != nil {
		return "", fmt.Errorf("intent classification: %w", err)
	}
	if strings.Contains(strings.ToUpper(raw), "RULE") {
		return "RULE", nil
	}
	return "FACT", nil
}

func (s *Service) translateFacts(ctx context.Context, text, schema string) ([]string, error) {
	p, err := prompt.Render(prompt.FactTranslation, map[string]string{
		"text":   text,
		"schema": schema,
	})
	if err != nil {
		return nil, err
	}
	raw, err := s.gateway().Generate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("fact translation: %w", err)
	}
	facts, err := sanitize.Facts(raw)
	if err != nil {
		return nil, err
	}
	clauses := make([]string, len(facts))
	for i, f := range facts {
		clauses[i] = logic.FactToClause(f)
	}
	return clauses, nil
}

func (s *Service) translateRule(ctx context.Context, text, schema string) ([]string, error) {
	p, err := prompt.Render(prompt.RuleTranslation, map[string]string{
		"text":   text,
		"schema": schema,
	})
	if err != nil {
		return nil, err
	}
	raw, err := s.gateway().Generate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("rule translation: %w", err)
	}
	rule, err := sanitize.Rule(raw)
	if err != nil {
		return nil, err
	}
	return []string{logic.RuleToClause(rule)}, nil
}

func (s *Service) summarize(ctx context.Context, goal string, bindings []reason.Binding) (string, error) {
	p, err := prompt.Render(prompt.ResultSummary, map[string]string{
		"query":  goal,
		"result": resultJSON(bindings),
	})
	if err != nil {
		return "", err
	}
	answer, err := s.gateway().Generate(ctx, p)
	if err != nil {
		return "", fmt.Errorf("result summary: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func (s *Service) directAnswer(ctx context.Context, question string) (string, error) {
	p := "Answer the following question directly and concisely.\n\nQuestion: " +
		question + "\nAnswer:"
	answer, err := s.gateway().Generate(ctx, p)
	if err != nil {
		return "", fmt.Errorf("direct answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func (s *Service) mapStoreErr(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

// resultJSON renders bindings the way the summary prompt expects: "true"
// for a proved ground goal, "false" for no solutions, otherwise the
// binding list as JSON.
func resultJSON(bindings []reason.Binding) string {
	if len(bindings) == 0 {
		return `"false"`
	}
	ground := true
	for _, b := range bindings {
		if len(b) > 0 {
			ground = false
			break
		}
	}
	if ground {
		return `"true"`
	}
	out, err := json.Marshal(bindings)
	if err != nil {
		return `"true"`
	}
	return string(out)
}

func splitClauses(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func containsClause(clauses []string, c string) bool {
	for _, have := range clauses {
		if have == c {
			return true
		}
	}
	return false
}
