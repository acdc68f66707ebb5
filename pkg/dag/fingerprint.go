package dag

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a stable hex digest of the graph structure: package
// names, directories and edges including their dev flag. Two graphs with the
// same fingerprint answer every query identically, so the value is suitable as
// a cache key for derived results. Diagnostics do not contribute.
func (g *Graph) Fingerprint() string {
	d := xxhash.New()
	for _, name := range g.names {
		p := g.packages[name]
		_, _ = d.WriteString(name)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(p.dir)
		_, _ = d.WriteString("\x00")
		for _, dep := range p.deps {
			_, _ = d.WriteString(dep)
			if p.IsDevDep(dep) {
				_, _ = d.WriteString("\x01")
			} else {
				_, _ = d.WriteString("\x00")
			}
		}
		_, _ = d.WriteString("\x02")
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
