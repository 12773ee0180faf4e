package merge

import (
	"github.com/strtools/str/encoding/trvcf"
)

// canonicalAlleles is the unified allele list for one locus group: the
// validated REF plus the deduplicated union of every contributing
// record's ALTs, ordered by first occurrence in input order.  The
// ordering is deliberate: it is fully deterministic and keeps the
// first input's allele indices unchanged in the common two-file case.
type canonicalAlleles struct {
	ref  string
	alts []string
	rank map[string]int // ALT string -> canonical index (1-based)
}

// unifyAlleles validates REF agreement across the group and builds the
// canonical allele list.
func unifyAlleles(g *locusGroup) (*canonicalAlleles, error) {
	ref := g.entries[0].rec.Ref
	if err := g.refConflict(ref); err != nil {
		return nil, err
	}
	c := &canonicalAlleles{ref: ref, rank: make(map[string]int)}
	for _, e := range g.entries {
		for _, alt := range e.rec.Alts {
			if _, ok := c.rank[alt]; ok {
				continue
			}
			c.alts = append(c.alts, alt)
			c.rank[alt] = len(c.alts)
		}
	}
	return c, nil
}

// refConflict returns a RefMismatchError naming every contributing file
// when any record's REF differs from ref, else nil.
func (g *locusGroup) refConflict(ref string) error {
	conflict := false
	for _, e := range g.entries {
		if e.rec.Ref != ref {
			conflict = true
			break
		}
	}
	if !conflict {
		return nil
	}
	err := &RefMismatchError{Pos: g.pos}
	for _, e := range g.entries {
		err.Files = append(err.Files, e.in.Name)
		err.Refs = append(err.Refs, e.rec.Ref)
	}
	return err
}

// indexMap returns rec's local-to-canonical allele index map: entry 0
// is always 0 (REF), entry i >= 1 is the canonical index of rec's i-th
// ALT.  Every local ALT is present in the canonical list by
// construction.
func (c *canonicalAlleles) indexMap(rec *trvcf.Record) []int {
	m := make([]int, rec.NAlleles())
	for i, alt := range rec.Alts {
		m[i+1] = c.rank[alt]
	}
	return m
}
