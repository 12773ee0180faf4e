package merge

import (
	"fmt"
	"strings"
)

// Position is one genomic locus: a contig name plus a 1-based
// coordinate.  Ordering between Positions is defined by the run's
// contig ranking, not by the name.
type Position struct {
	Chrom string
	Pos   int
}

func (p Position) String() string { return fmt.Sprintf("%s:%d", p.Chrom, p.Pos) }

// All merge errors are fatal to the run; none is recovered from
// mid-locus.  Each carries enough context (position, files, values) to
// diagnose the offending inputs.

// UnsortedInputError reports a record positioned before its
// predecessor in the same input.
type UnsortedInputError struct {
	File string
	Prev Position
	Next Position
}

func (e *UnsortedInputError) Error() string {
	return fmt.Sprintf("%s: unsorted input: %s follows %s", e.File, e.Next, e.Prev)
}

// RefMismatchError reports disagreeing REF alleles at one locus.
type RefMismatchError struct {
	Pos   Position
	Files []string
	Refs  []string
}

func (e *RefMismatchError) Error() string {
	return fmt.Sprintf("%s: REF mismatch across inputs: %s have %s",
		e.Pos, strings.Join(e.Files, ","), strings.Join(e.Refs, ","))
}

// LocusFieldConflictError reports a required locus-level field whose
// value differs across the inputs covering one locus.
type LocusFieldConflictError struct {
	Pos    Position
	Field  string
	Files  []string
	Values []string
}

func (e *LocusFieldConflictError) Error() string {
	return fmt.Sprintf("%s: INFO field %s conflicts across inputs: %s have %s",
		e.Pos, e.Field, strings.Join(e.Files, ","), strings.Join(e.Values, ","))
}

// UnsupportedGenotyperError reports an unusable or inconsistent
// genotyper configuration.
type UnsupportedGenotyperError struct {
	Detail string
}

func (e *UnsupportedGenotyperError) Error() string {
	return "unsupported genotyper: " + e.Detail
}

// MalformedRecordError reports a record violating structural
// assumptions (unknown contig, allele-count mismatch and the like).
// Parse-level failures from the record reader are wrapped in it so the
// merge surfaces every malformed input the same way.
type MalformedRecordError struct {
	File string
	Pos  Position
	Err  error
}

func (e *MalformedRecordError) Error() string {
	if e.Pos.Chrom == "" {
		return fmt.Sprintf("%s: malformed record: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s: %s: malformed record: %v", e.File, e.Pos, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MalformedRecordError) Unwrap() error { return e.Err }

func errAlleleIndex(idx, nAlleles int) error {
	return fmt.Errorf("genotype index %d out of range (%d alleles)", idx, nAlleles)
}

func errContigNotRanked(chrom string) error {
	return fmt.Errorf("contig %s not in the contig ranking (missing ##contig line?)", chrom)
}
