// Package sanitize is the quarantine zone between untrusted model output and
// the deterministic compiler. It extracts the first well-formed JSON value
// from free text, decodes it into the structured intermediate representation,
// and normalizes atom casing. Nothing downstream of this package ever sees
// raw model text.
package sanitize

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"github.com/automenta/mcr-sub003/internal/logic"
)

// ErrNoJSON is returned when no parseable JSON value could be recovered
// from the model output. Callers treat this as "zero clauses produced",
// never as a hard failure.
var ErrNoJSON = errors.New("no well-formed JSON value in model output")

// FirstJSONValue returns the first substring of s that parses as a JSON
// object or array, tolerating surrounding prose and markdown code fences.
func FirstJSONValue(s string) (string, error) {
	for _, candidate := range findJSONCandidates(s) {
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}
	return "", ErrNoJSON
}

// Facts decodes model output from the fact-translation call into structured
// facts. The payload may be a JSON array of facts or a single fact object.
// Entries with an invalid functor are dropped; arguments are normalized to
// lowercase atoms (a fact argument can never be a variable).
func Facts(raw string) ([]logic.Fact, error) {
	payload, err := FirstJSONValue(raw)
	if err != nil {
		return nil, err
	}

	var decoded []logic.Fact
	if strings.HasPrefix(payload, "[") {
		if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
			return nil, ErrNoJSON
		}
	} else {
		var one logic.Fact
		if err := json.Unmarshal([]byte(payload), &one); err != nil {
			return nil, ErrNoJSON
		}
		decoded = []logic.Fact{one}
	}

	facts := decoded[:0]
	for _, f := range decoded {
		f.Functor = NormalizeAtom(f.Functor)
		if !logic.ValidFunctor(f.Functor) {
			continue
		}
		for i, arg := range f.Args {
			f.Args[i] = NormalizeAtom(arg)
		}
		facts = append(facts, f)
	}
	if len(facts) == 0 {
		return nil, ErrNoJSON
	}
	return facts, nil
}

// Rule decodes model output from the rule-translation call into a structured
// rule: a single JSON object with "head" and "body". Functors are validated;
// arguments are left untouched because rule arguments may be capitalized
// variables.
func Rule(raw string) (logic.Rule, error) {
	payload, err := FirstJSONValue(raw)
	if err != nil {
		return logic.Rule{}, err
	}

	var r logic.Rule
	if strings.HasPrefix(payload, "[") {
		// Some models wrap the single rule in an array; take the first element.
		var rules []logic.Rule
		if err := json.Unmarshal([]byte(payload), &rules); err != nil || len(rules) == 0 {
			return logic.Rule{}, ErrNoJSON
		}
		r = rules[0]
	} else if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return logic.Rule{}, ErrNoJSON
	}

	r.Head.Functor = NormalizeAtom(r.Head.Functor)
	if !logic.ValidFunctor(r.Head.Functor) || len(r.Body) == 0 {
		return logic.Rule{}, ErrNoJSON
	}
	for i := range r.Body {
		r.Body[i].Functor = NormalizeAtom(r.Body[i].Functor)
		if !logic.ValidFunctor(r.Body[i].Functor) {
			return logic.Rule{}, ErrNoJSON
		}
	}
	return r, nil
}

// NormalizeAtom turns free-text entity names into well-formed lowercase
// atoms: "Prince George" -> "prince_george". Values that already look like
// numbers or snake_case atoms pass through unchanged.
func NormalizeAtom(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	if s == "" {
		return s
	}
	fields := strings.Fields(s)
	return strings.ToLower(strings.Join(fields, "_"))
}

// Goal cleans a model-generated logic goal: strips code fences, backticks,
// surrounding whitespace, and any trailing clause terminator. The reasoning
// engine adds its own terminator at execution time.
func Goal(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```prolog")
		s = strings.TrimPrefix(s, "```")
		if i := strings.Index(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	s = strings.Trim(s, "` \t\r\n")
	// A goal is a single line; ignore any trailing commentary.
	if i := strings.IndexFunc(s, func(r rune) bool { return r == '\n' }); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}
