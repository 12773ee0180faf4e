package merge

import (
	"v.io/x/lib/vlog"
)

// ResolveSampleNames computes the merged output's sample column, the
// concatenation of every input's samples in input order.  With
// updateFromFile set, every name is suffixed with its input's
// identifier, which guarantees uniqueness across inputs.  Without it,
// names pass through as-is and collisions are the caller's problem;
// they are logged once since downstream tools tend to choke on them.
// The mapping is fixed per run, not per locus.
func ResolveSampleNames(inputs []*Input, updateFromFile bool) []string {
	var names []string
	seen := make(map[string]string) // name -> first input carrying it
	for _, in := range inputs {
		for _, s := range in.Samples {
			name := s
			if updateFromFile {
				name = s + "_" + in.Name
			} else if prev, ok := seen[name]; ok {
				vlog.Infof("sample %q appears in both %s and %s; use -update-sample-from-file to disambiguate",
					name, prev, in.Name)
			}
			seen[name] = in.Name
			names = append(names, name)
		}
	}
	return names
}
