// Package logic holds the deterministic half of the translation pipeline:
// the intermediate-representation compiler and the schema extractor.
// Nothing in this package performs I/O or calls a model.
package logic

import (
	"regexp"
	"strings"
)

// Fact is the structured intermediate representation of a single logic fact,
// as produced by the fact-translation model call.
type Fact struct {
	Functor string   `json:"functor"`
	Args    []string `json:"args"`
}

// Rule is the structured intermediate representation of a logic rule:
// a head fact and one or more body literals.
type Rule struct {
	Head Fact   `json:"head"`
	Body []Fact `json:"body"`
}

// functorPattern is the required shape of a predicate functor.
var functorPattern = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*$`)

// ValidFunctor reports whether s can serve as a predicate functor.
func ValidFunctor(s string) bool {
	return functorPattern.MatchString(s)
}

// FactToClause compiles a structured fact into clause text, e.g.
// {parent [elizabeth charles]} -> "parent(elizabeth,charles).".
// It performs no semantic validation; arity consistency is the reasoning
// engine's problem at execution time.
func FactToClause(f Fact) string {
	return compileHead(f) + "."
}

// RuleToClause compiles a structured rule into clause text, e.g.
// "grandparent(GP,GC) :- parent(P,GC), parent(GP,P).".
func RuleToClause(r Rule) string {
	body := make([]string, len(r.Body))
	for i, lit := range r.Body {
		body[i] = compileHead(lit)
	}
	return compileHead(r.Head) + " :- " + strings.Join(body, ", ") + "."
}

// compileHead renders a fact without the clause terminator. A zero-arg
// fact compiles to the bare functor, not "functor()".
func compileHead(f Fact) string {
	if len(f.Args) == 0 {
		return f.Functor
	}
	return f.Functor + "(" + strings.Join(f.Args, ",") + ")"
}
