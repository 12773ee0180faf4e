package merge

import (
	"strings"

	"github.com/strtools/str/encoding/trvcf"
	"v.io/x/lib/vlog"
)

// remapGenotype rewrites a genotype call from a record's local allele
// numbering to the canonical numbering, element-wise.  No-call entries
// pass through untouched, and the separator bytes (phasing) are kept
// verbatim.
func remapGenotype(file string, pos Position, gt trvcf.Genotype, m []int) (trvcf.Genotype, error) {
	out := trvcf.Genotype{Alleles: make([]int, len(gt.Alleles)), Seps: gt.Seps}
	for i, a := range gt.Alleles {
		if a == trvcf.NoCall {
			out.Alleles[i] = trvcf.NoCall
			continue
		}
		if a >= len(m) {
			// The reader rejects these; a custom RecordReader may not.
			return trvcf.Genotype{}, &MalformedRecordError{
				File: file,
				Pos:  pos,
				Err:  errAlleleIndex(a, len(m)),
			}
		}
		out.Alleles[i] = m[a]
	}
	return out, nil
}

// remapAlleleIndexed re-orders a comma-separated per-allele value list
// so entry i describes canonical allele i.  Canonical alleles the
// source record never observed get ".".  A list whose length does not
// match the source's allele count cannot be remapped faithfully and is
// replaced by a missing value.
func remapAlleleIndexed(file string, pos Position, field, val string, m []int, nCanonical int) (string, bool) {
	in := strings.Split(val, ",")
	if len(in) != len(m) {
		vlog.VI(1).Infof("%s: %s: FORMAT %s has %d entries, want %d; dropping",
			file, pos, field, len(in), len(m))
		return "", false
	}
	out := make([]string, nCanonical)
	for i := range out {
		out[i] = trvcf.MissingValue
	}
	for i, v := range in {
		out[m[i]] = v
	}
	return strings.Join(out, ","), true
}
