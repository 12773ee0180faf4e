// Package trvcf contains code for reading and writing VCF files produced
// by tandem-repeat genotypers.  The package is deliberately lossless about
// the parts of a record the merge cares about: INFO values and per-sample
// FORMAT values are kept as raw strings, and genotype separators are
// preserved so phasing survives a round trip.
package trvcf

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MissingValue is the VCF placeholder for an absent value.
const MissingValue = "."

// NoCall is the allele index used for a '.' entry in a genotype.
const NoCall = -1

// Genotype is one sample's call: a sequence of allele indices into the
// record's allele list (0 = REF, i >= 1 = i-th ALT, NoCall = '.'), plus
// the separator bytes between consecutive indices ('/' or '|').
// len(Seps) == len(Alleles)-1 for any non-empty genotype.
type Genotype struct {
	Alleles []int
	Seps    []byte
}

// ParseGenotype parses a VCF GT value such as "0/1", "0|2", "." or "1".
func ParseGenotype(s string) (Genotype, error) {
	if s == "" {
		return Genotype{}, errors.New("empty GT value")
	}
	var gt Genotype
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '/' && s[i] != '|' {
			continue
		}
		field := s[start:i]
		if field == MissingValue {
			gt.Alleles = append(gt.Alleles, NoCall)
		} else {
			n, err := strconv.Atoi(field)
			if err != nil || n < 0 {
				return Genotype{}, errors.Errorf("malformed GT value %q", s)
			}
			gt.Alleles = append(gt.Alleles, n)
		}
		if i < len(s) {
			gt.Seps = append(gt.Seps, s[i])
		}
		start = i + 1
	}
	return gt, nil
}

// String reconstructs the VCF GT value, including phasing separators.
func (g Genotype) String() string {
	if len(g.Alleles) == 0 {
		return MissingValue
	}
	var sb strings.Builder
	for i, a := range g.Alleles {
		if i > 0 {
			sb.WriteByte(g.Seps[i-1])
		}
		if a == NoCall {
			sb.WriteByte('.')
		} else {
			sb.WriteString(strconv.Itoa(a))
		}
	}
	return sb.String()
}

// NoCallGenotype returns an unphased no-call of the given ploidy ("./.").
func NoCallGenotype(ploidy int) Genotype {
	gt := Genotype{Alleles: make([]int, ploidy)}
	for i := range gt.Alleles {
		gt.Alleles[i] = NoCall
	}
	if ploidy > 1 {
		gt.Seps = make([]byte, ploidy-1)
		for i := range gt.Seps {
			gt.Seps[i] = '/'
		}
	}
	return gt
}

// SampleCall is one sample's entry in a record: the genotype plus the
// remaining FORMAT values, keyed by FORMAT ID.  Absent fields are simply
// not present in the map.
type SampleCall struct {
	GT     Genotype
	Fields map[string]string
}

// InfoPair is one INFO entry.  Flag-type entries have an empty Value.
type InfoPair struct {
	Key   string
	Value string
}

// Record is one parsed VCF data line.
type Record struct {
	Chrom  string
	Pos    int // 1-based
	ID     string
	Ref    string
	Alts   []string // empty when ALT is "."
	Qual   string
	Filter string
	Info   []InfoPair
	Format []string // FORMAT IDs in column order; empty when no samples
	Samples []SampleCall
}

// InfoValue returns the raw value of the given INFO key.
func (r *Record) InfoValue(key string) (string, bool) {
	for _, p := range r.Info {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// NAlleles returns the number of alleles at the record, REF included.
func (r *Record) NAlleles() int { return 1 + len(r.Alts) }
