// Package reason executes logic queries against a clause knowledge base.
package reason

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ichiban/prolog"
)

var (
	// ErrConsult reports a knowledge base that the engine rejected.
	ErrConsult = errors.New("knowledge base rejected")
	// ErrTimeout reports a query that exceeded the engine deadline.
	ErrTimeout = errors.New("query timed out")
)

// Binding maps variable names from a query goal to their bound values.
type Binding map[string]string

// Engine runs goals against knowledge bases. Each call consults into a
// fresh interpreter so sessions never leak clauses into one another.
type Engine struct {
	// Timeout bounds a single Solve call. Zero means no bound beyond
	// the caller's context.
	Timeout time.Duration
	// MaxSolutions caps the bindings returned per query.
	MaxSolutions int
}

// New returns an engine with the given query timeout and solution cap.
func New(timeout time.Duration, maxSolutions int) *Engine {
	if maxSolutions <= 0 {
		maxSolutions = 100
	}
	return &Engine{Timeout: timeout, MaxSolutions: maxSolutions}
}

// Validate consults the knowledge base into a throwaway interpreter and
// reports whether the engine accepts it.
func (e *Engine) Validate(kb string) error {
	p := prolog.New(nil, nil)
	if err := p.Exec(kb); err != nil {
		return fmt.Errorf("%w: %v", ErrConsult, err)
	}
	return nil
}

// Solve consults kb and runs goal, which must not carry a trailing
// terminator. It returns one Binding per solution, in solution order. A
// proved ground goal yields a single empty Binding; an unprovable goal
// yields none.
func (e *Engine) Solve(ctx context.Context, kb, goal string) ([]Binding, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	p := prolog.New(nil, nil)
	// A goal over a predicate the knowledge base never defines is simply
	// unprovable, not an error.
	if err := p.Exec(":- set_prolog_flag(unknown, fail)."); err != nil {
		return nil, fmt.Errorf("set unknown flag: %w", err)
	}
	if err := p.Exec(kb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConsult, err)
	}

	sols, err := p.QueryContext(ctx, goal+".")
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", goal, err)
	}
	defer sols.Close()

	var out []Binding
	for sols.Next() {
		m := map[string]prolog.TermString{}
		if err := sols.Scan(m); err != nil {
			return nil, fmt.Errorf("scan solution: %w", err)
		}
		b := make(Binding, len(m))
		for k, v := range m {
			b[k] = string(v)
		}
		out = append(out, b)
		if len(out) >= e.MaxSolutions {
			break
		}
	}
	if err := sols.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: goal %q", ErrTimeout, goal)
		}
		return nil, fmt.Errorf("query %q: %w", goal, err)
	}
	return out, nil
}
