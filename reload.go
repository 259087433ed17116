package glshade

import (
	"sort"

	"github.com/gogpu/glshade/source"
)

// UpdateSourceData compares old and next for every cached stage filename
// and invalidates the stages whose text changed, along with the programs
// linked from them, then makes next the current provider. Unchanged
// stages, including fallback aliases whose broken text is unchanged, stay
// cached. It returns the invalidated filenames in sorted order.
//
// A file that cannot be read from either provider counts as unchanged when
// both fail and as changed when only one does.
func (m *Manager) UpdateSourceData(old, next source.Provider) []string {
	if m.released {
		return nil
	}
	filenames := m.stages.Keys()
	sort.Strings(filenames)

	var changed []string
	for _, f := range filenames {
		if sourceChanged(old, next, f) {
			changed = append(changed, f)
		}
	}
	for _, f := range changed {
		m.invalidate(f)
	}
	m.src = next
	if len(changed) > 0 {
		m.logger().Info("glshade: sources changed", "stages", changed)
	}
	return changed
}

// Reload is UpdateSourceData against the current provider.
func (m *Manager) Reload(next source.Provider) []string {
	return m.UpdateSourceData(m.src, next)
}

func sourceChanged(old, next source.Provider, filename string) bool {
	a, errA := old.Source(filename)
	b, errB := next.Source(filename)
	if errA != nil || errB != nil {
		return (errA == nil) != (errB == nil)
	}
	return a != b
}

// Group reloads several managers that share one source tree, typically one
// Manager per GPU context.
type Group struct {
	managers []*Manager
}

// Add registers m with the group.
func (g *Group) Add(m *Manager) {
	g.managers = append(g.managers, m)
}

// Len returns the number of live managers in the group.
func (g *Group) Len() int {
	n := 0
	for _, m := range g.managers {
		if !m.released {
			n++
		}
	}
	return n
}

// Reload applies next to every live manager and forgets released ones.
// It returns the number of stages invalidated across all managers.
func (g *Group) Reload(next source.Provider) int {
	live := g.managers[:0]
	total := 0
	for _, m := range g.managers {
		if m.released {
			continue
		}
		total += len(m.Reload(next))
		live = append(live, m)
	}
	clear(g.managers[len(live):])
	g.managers = live
	return total
}
