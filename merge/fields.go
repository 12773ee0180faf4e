package merge

import (
	"github.com/strtools/str/encoding/trvcf"
	"github.com/strtools/str/genotyper"
	"v.io/x/lib/vlog"
)

// mergeInfo merges the group's locus-level annotations.  Only fields
// the schema recognizes are consulted; anything else is dropped, a
// lossy-but-safe policy that keeps the output field set closed.
// Required fields must be value-identical across the group.  Optional
// fields that disagree (or are only partially present) are dropped
// with a warning rather than failing the run.
func mergeInfo(schema genotyper.Schema, g *locusGroup) ([]trvcf.InfoPair, error) {
	var out []trvcf.InfoPair
	for _, f := range schema.Info {
		first, firstOK := g.entries[0].rec.InfoValue(f.Name)
		agree := true
		anyPresent := firstOK
		for _, e := range g.entries[1:] {
			v, ok := e.rec.InfoValue(f.Name)
			anyPresent = anyPresent || ok
			if ok != firstOK || v != first {
				agree = false
			}
		}
		if !anyPresent {
			continue
		}
		if agree {
			out = append(out, trvcf.InfoPair{Key: f.Name, Value: first})
			continue
		}
		if !f.Required {
			vlog.VI(1).Infof("%s: INFO %s differs across inputs; dropping", g.pos, f.Name)
			continue
		}
		err := &LocusFieldConflictError{Pos: g.pos, Field: f.Name}
		for _, e := range g.entries {
			v, ok := e.rec.InfoValue(f.Name)
			if !ok {
				v = trvcf.MissingValue
			}
			err.Files = append(err.Files, e.in.Name)
			err.Values = append(err.Values, v)
		}
		return nil, err
	}
	return out, nil
}

// mergeSamples builds the merged record's sample entries: every
// input's samples in input order, so columns line up with the run's
// fixed sample list.  Inputs with a record at the locus have their
// genotypes and allele-indexed FORMAT values rewritten through the
// record's index map; inputs without one get diploid no-calls.  A
// field a source record lacks stays missing for that sample; partial
// availability across files is expected.
func mergeSamples(schema genotyper.Schema, inputs []*Input, g *locusGroup, maps [][]int, nCanonical int) ([]trvcf.SampleCall, error) {
	present := make(map[*Input]int, len(g.entries))
	for gi, e := range g.entries {
		present[e.in] = gi
	}
	var out []trvcf.SampleCall
	for _, in := range inputs {
		gi, ok := present[in]
		if !ok {
			for range in.Samples {
				out = append(out, trvcf.SampleCall{GT: trvcf.NoCallGenotype(2)})
			}
			continue
		}
		e := g.entries[gi]
		m := maps[gi]
		for si := range e.rec.Samples {
			src := &e.rec.Samples[si]
			gt, err := remapGenotype(e.in.Name, g.pos, src.GT, m)
			if err != nil {
				return nil, err
			}
			call := trvcf.SampleCall{GT: gt}
			for _, f := range schema.Format {
				v, ok := src.Fields[f.Name]
				if !ok {
					continue
				}
				if f.AlleleIndexed {
					if v, ok = remapAlleleIndexed(e.in.Name, g.pos, f.Name, v, m, nCanonical); !ok {
						continue
					}
				}
				if call.Fields == nil {
					call.Fields = make(map[string]string)
				}
				call.Fields[f.Name] = v
			}
			out = append(out, call)
		}
	}
	return out, nil
}
