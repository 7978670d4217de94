package runtime

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/galacean/engine-sub008/internal/ast"
	"github.com/galacean/engine-sub008/internal/builtins"
	"github.com/galacean/engine-sub008/internal/diagnostic"
)

// reportUndefined records an undefined identifier, with a hint when a
// visible name is close enough.
func (c *Context) reportUndefined(n ast.Node, name string) {
	msg := "Not found variable/function definition: " + name
	if c.opts.Suggestions {
		if hint := closestMatch(name, c.visibleNames()); hint != "" {
			msg += fmt.Sprintf(", did you mean %q?", hint)
		}
	}
	c.diags.Error(diagnostic.CodeUndefinedSymbol, toRange(n.Pos()), msg)
}

// visibleNames returns the sorted, unique names an identifier could refer
// to at the current position.
func (c *Context) visibleNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if f := c.frame(); f != nil {
		for _, scope := range f.scopes {
			for name := range scope {
				add(name)
			}
		}
	}
	for _, name := range c.scopes.Names() {
		add(name)
	}
	for _, name := range builtins.Names() {
		add(name)
	}
	sort.Strings(names)
	return names
}

// closestMatch finds the candidate closest to target. Subsequence matches
// rank first; otherwise a small edit distance is accepted.
func closestMatch(target string, candidates []string) string {
	if len(target) < 2 || len(candidates) == 0 {
		return ""
	}

	if len(target) >= 3 {
		ranks := fuzzy.RankFindFold(target, candidates)
		if len(ranks) > 0 {
			sort.Stable(ranks)
			return ranks[0].Target
		}
	}

	limit := len(target) / 2
	if limit > 3 {
		limit = 3
	}
	best, bestDistance := "", limit+1
	lower := strings.ToLower(target)
	for _, candidate := range candidates {
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(candidate)); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}
