// Package genotyper enumerates the supported tandem-repeat genotyping
// tools and the annotation fields each one is known to emit.  The field
// tables are compatibility data: they must match the upstream tools'
// output exactly and are reproduced verbatim.
package genotyper

import (
	"github.com/pkg/errors"
)

// Type identifies one supported genotyper.
type Type int

const (
	// Unknown is the zero Type; it requests header auto-detection.
	Unknown Type = iota
	// GangSTR (https://github.com/gymreklab/GangSTR)
	GangSTR
	// HipSTR (https://github.com/tfwillems/HipSTR)
	HipSTR
	// ExpansionHunter (https://github.com/Illumina/ExpansionHunter)
	ExpansionHunter
	// PopSTR (https://github.com/DecodeGenetics/popSTR)
	PopSTR
	// AdVNTR (https://github.com/mehrdadbakhtiari/adVNTR)
	AdVNTR
)

var typeNames = [...]string{"unknown", "gangstr", "hipstr", "eh", "popstr", "advntr"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "invalid"
	}
	return typeNames[t]
}

// Types lists the supported genotypers.
var Types = []Type{GangSTR, HipSTR, ExpansionHunter, PopSTR, AdVNTR}

// Parse maps a genotyper name (as accepted on the command line) to its
// Type.
func Parse(name string) (Type, error) {
	for _, t := range Types {
		if name == t.String() {
			return t, nil
		}
	}
	return Unknown, errors.Errorf("unsupported genotyper %q (supported: gangstr, hipstr, eh, popstr, advntr)", name)
}

// InfoField describes one locus-level (INFO) field a genotyper emits.
// Required fields are run-level constants: their values must agree
// across every input covering a locus, and disagreement is fatal.
// Non-required fields are dropped with a warning when inputs disagree.
type InfoField struct {
	Name     string
	Required bool
}

// FormatField describes one per-sample (FORMAT) field.  AlleleIndexed
// marks comma-separated per-allele lists (entry 0 = REF, entry i = the
// record's i-th ALT) that must be re-ordered to the merged allele
// numbering; all other fields are copied verbatim.
type FormatField struct {
	Name          string
	AlleleIndexed bool
}

// Schema is one genotyper's recognized field set.  Fields absent from
// the schema are dropped from merged output, never guessed at.
type Schema struct {
	Tool   Type
	Info   []InfoField
	Format []FormatField
}

// FormatKeys returns the FORMAT IDs in schema order, GT excluded.
func (s Schema) FormatKeys() []string {
	keys := make([]string, len(s.Format))
	for i, f := range s.Format {
		keys[i] = f.Name
	}
	return keys
}

var schemas = map[Type]Schema{
	GangSTR: {
		Tool: GangSTR,
		Info: []InfoField{
			{"END", true},
			{"RU", true},
			{"PERIOD", true},
			{"GRID", false},
			{"EXPTHRESH", true},
			{"STUTTERUP", false},
			{"STUTTERDOWN", false},
			{"STUTTERP", false},
		},
		Format: []FormatField{
			{Name: "DP"}, {Name: "Q"}, {Name: "REPCN"}, {Name: "REPCI"},
			{Name: "RC"}, {Name: "ENCLREADS"}, {Name: "FLNKREADS"},
			{Name: "ML"}, {Name: "INS"}, {Name: "STDERR"}, {Name: "QEXP"},
		},
	},
	HipSTR: {
		Tool: HipSTR,
		Info: []InfoField{
			{"START", true},
			{"END", true},
			{"PERIOD", true},
		},
		Format: []FormatField{
			{Name: "GB"}, {Name: "Q"}, {Name: "PQ"}, {Name: "DP"},
			{Name: "DSNP"}, {Name: "PSNP"}, {Name: "PDP"}, {Name: "GLDIFF"},
			{Name: "DFLANKINDEL"}, {Name: "DSTUTTER"},
			{Name: "ALLREADS"}, {Name: "MALLREADS"},
		},
	},
	ExpansionHunter: {
		Tool: ExpansionHunter,
		Info: []InfoField{
			{"END", true},
			{"REF", false},
			{"REPID", true},
			{"RL", false},
			{"RU", true},
			{"SVTYPE", false},
			{"VARID", true},
		},
		Format: []FormatField{
			{Name: "ADFL"}, {Name: "ADIR"}, {Name: "ADSP"}, {Name: "LC"},
			{Name: "REPCI"}, {Name: "REPCN"}, {Name: "SO"},
		},
	},
	PopSTR: {
		Tool: PopSTR,
		Info: []InfoField{
			{"Motif", true},
		},
		Format: []FormatField{
			{Name: "AD", AlleleIndexed: true}, {Name: "DP"}, {Name: "PL"},
		},
	},
	AdVNTR: {
		Tool: AdVNTR,
		Info: []InfoField{
			{"END", true},
			{"VID", true},
			{"RU", true},
			{"RC", false},
		},
		Format: []FormatField{
			{Name: "DP"}, {Name: "SR"}, {Name: "FR"}, {Name: "ML"},
		},
	},
}

// SchemaFor returns the field schema for t.
func SchemaFor(t Type) (Schema, error) {
	s, ok := schemas[t]
	if !ok {
		return Schema{}, errors.Errorf("unsupported genotyper %v", t)
	}
	return s, nil
}
