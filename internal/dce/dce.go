// Package dce implements dead code elimination for ShaderLab globals.
//
// DCE works by:
// 1. Marking the globals the entry point mentions while its body renders
// 2. Rendering each newly marked global, which may mark further globals
// 3. Repeating until the work-list is empty (transitive closure)
// 4. Emitting only marked globals, sorted by source position
//
// A global is enqueued at most once between resets, so draining performs
// at most one render per visible global.
package dce

import (
	"sort"

	"github.com/galacean/engine-sub008/internal/symtab"
)

// Tracker is the work-list of globals waiting to be rendered.
type Tracker struct {
	queue    []*symtab.Global
	enqueued map[*symtab.Global]bool
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{enqueued: make(map[*symtab.Global]bool)}
}

// Mark flags g as referenced and enqueues it the first time it is seen.
// It reports whether g was newly enqueued.
func (t *Tracker) Mark(g *symtab.Global) bool {
	if g == nil {
		return false
	}
	g.Referenced = true
	if t.enqueued[g] || g.Rendered {
		return false
	}
	t.enqueued[g] = true
	t.queue = append(t.queue, g)
	return true
}

// Pending returns the number of globals waiting to be rendered.
func (t *Tracker) Pending() int {
	return len(t.queue)
}

// Drain renders queued globals until the queue is empty. render may call
// Mark, which extends the queue. It returns the number of renders.
func (t *Tracker) Drain(render func(g *symtab.Global) string) int {
	count := 0
	for len(t.queue) > 0 {
		g := t.queue[0]
		t.queue = t.queue[1:]
		g.Text = render(g)
		g.Rendered = true
		count++
	}
	return count
}

// Reset forgets every enqueued global.
func (t *Tracker) Reset() {
	t.queue = nil
	t.enqueued = make(map[*symtab.Global]bool)
}

// Live returns the referenced globals of pool sorted by source position.
// Entries appearing more than once in pool are returned once.
func Live(pool []*symtab.Global) []*symtab.Global {
	seen := make(map[*symtab.Global]bool)
	var live []*symtab.Global
	for _, g := range pool {
		if g.Referenced && !seen[g] {
			seen[g] = true
			live = append(live, g)
		}
	}
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].Node.Pos().Before(live[j].Node.Pos())
	})
	return live
}
