// Package prompt holds the fixed set of parametrized templates used by the
// reasoning core. The registry is immutable configuration assembled at init
// and is therefore safe for concurrent use.
package prompt

import (
	"fmt"
	"strings"
)

// Template names. The set is closed: exactly five templates exist.
const (
	IntentClassifier = "intent_classifier"
	FactTranslation  = "fact_translation"
	RuleTranslation  = "rule_translation"
	QueryTranslation = "query_translation"
	ResultSummary    = "result_summary"
)

var templates = map[string]string{
	IntentClassifier: `Classify the user's statement as FACT or RULE.
A FACT states something concrete about specific entities.
A RULE defines a general relationship ("A grandparent is the parent of a parent").
Respond with exactly one word: FACT or RULE.

Statement: "{text}"
Classification:`,

	FactTranslation: `You are an expert translating natural language into logic facts.
Convert the user's statement into a strict JSON array of facts, each an object
{"functor": string, "args": [string, ...]}.
Rules:
- functor and args are lowercase atoms (snake_case for multi-word names)
- decompose compound statements into multiple facts
- reuse predicates from the schema when they fit
- output ONLY the JSON array, no prose, no code fences
{schema}
User: "Elizabeth and Philip are the parents of Charles and Anne."
Output:
[{"functor":"parent","args":["elizabeth","charles"]},
 {"functor":"parent","args":["elizabeth","anne"]},
 {"functor":"parent","args":["philip","charles"]},
 {"functor":"parent","args":["philip","anne"]}]
---
User: "{text}"
Output:`,

	RuleTranslation: `You are an expert translating natural language definitions into logic rules.
Convert the user's definition into ONE strict JSON object:
{"head": {"functor": string, "args": [string, ...]},
 "body": [{"functor": string, "args": [string, ...]}, ...]}.
Rules:
- variables are capitalized (GP, X, Who); atoms are lowercase
- reuse predicates from the schema when they fit
- output ONLY the JSON object, no prose, no code fences
{schema}
User: "A grandparent is the parent of a parent."
Output:
{"head":{"functor":"grandparent","args":["GP","GC"]},"body":[{"functor":"parent","args":["GP","P"]},{"functor":"parent","args":["P","GC"]}]}
---
User: "{text}"
Output:`,

	QueryTranslation: `Translate the question into a single logic query goal.
RULES:
1. Output ONLY the goal. No terminator period, no explanation.
2. Every piece of requested information gets a named, capitalized variable
   (X, Who, Color). NEVER use the anonymous variable _.
3. Use the exact lowercase atoms from the schema for entities; normalize
   names ("Prince George" becomes george).
{schema}
User: "Who are the grandparents of George?"
Output: grandparent(Grandparent, george)
---
User: "{question}"
Output:`,

	ResultSummary: `Based strictly on the logic query and its JSON result, provide a clear,
conversational natural language answer. A result of "false" means the query
is false or cannot be answered from the knowledge base.

Query: {query}
Result (JSON): {result}

Answer:`,
}

// Render substitutes the named placeholders into the template by literal
// string replacement and returns the finished prompt. Unknown template
// names are a programming error and fail loudly.
func Render(name string, vars map[string]string) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", name)
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl), nil
}

// SchemaSection formats predicate signatures as prompt context. It returns
// the empty string for an empty knowledge base so templates stay clean on
// fresh sessions.
func SchemaSection(signatures []string) string {
	if len(signatures) == 0 {
		return ""
	}
	return "--- SCHEMA ---\n% KB contains: " + strings.Join(signatures, ", ") + "\n"
}
