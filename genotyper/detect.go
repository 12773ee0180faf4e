package genotyper

import (
	"strings"

	"github.com/pkg/errors"
)

// Header meta prefixes consulted during detection.  Tool provenance
// shows up under ##source or ##command depending on the tool and
// version.
var detectPrefixes = []string{"##source=", "##command=", "##commandline="}

// markers maps a lowercased substring of a provenance line to a Type.
// Order matters: the first match wins within one line.
var markers = []struct {
	substr string
	tool   Type
}{
	{"hipstr", HipSTR},
	{"gangstr", GangSTR},
	{"expansionhunter", ExpansionHunter},
	{"expansion hunter", ExpansionHunter},
	{"popstr", PopSTR},
	{"advntr", AdVNTR},
}

// Detect infers the genotyper that produced a VCF from its header meta
// lines.  It fails when no provenance line names a supported tool, or
// when lines name more than one.
func Detect(meta []string) (Type, error) {
	found := Unknown
	for _, line := range meta {
		lower := strings.ToLower(line)
		match := false
		for _, p := range detectPrefixes {
			if strings.HasPrefix(lower, p) {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		for _, m := range markers {
			if !strings.Contains(lower, m.substr) {
				continue
			}
			if found != Unknown && found != m.tool {
				return Unknown, errors.Errorf("header names multiple genotypers (%v and %v)", found, m.tool)
			}
			found = m.tool
			break
		}
	}
	if found == Unknown {
		return Unknown, errors.New("could not detect genotyper from header; pass one explicitly")
	}
	return found, nil
}
