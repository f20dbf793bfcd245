package logic

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var headPattern = regexp.MustCompile(`^([a-z][a-zA-Z0-9_]*)\(`)

// Signatures derives the sorted, deduplicated "name/arity" signatures of
// every predicate defined in the given knowledge-base text. Lines that do
// not look like clauses (blank lines, comments, model debris) are skipped
// silently; this function never fails.
func Signatures(kb string) []string {
	set := make(map[string]struct{})
	for _, line := range strings.Split(kb, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		head := line
		if i := strings.Index(line, ":-"); i >= 0 {
			head = line[:i]
		}
		m := headPattern.FindStringSubmatch(head)
		if m == nil {
			continue
		}
		arity := 0
		if !strings.Contains(head, "()") {
			arity = strings.Count(head, ",") + 1
		}
		set[m[1]+"/"+strconv.Itoa(arity)] = struct{}{}
	}
	sigs := make([]string, 0, len(set))
	for s := range set {
		sigs = append(sigs, s)
	}
	sort.Strings(sigs)
	return sigs
}
