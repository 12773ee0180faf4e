package merge

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/strtools/str/encoding/trvcf"
	"github.com/strtools/str/genotyper"
	"v.io/x/lib/vlog"
)

// Opts controls a file-level merge run.
type Opts struct {
	// Genotyper forces the tool schema (gangstr, hipstr, eh, popstr,
	// advntr).  Empty requests header auto-detection.
	Genotyper string
	// UpdateSampleFromFile suffixes every sample name with its input
	// file's identifier, disambiguating collisions across inputs.
	UpdateSampleFromFile bool
	// Command is recorded in the output header's ##command line.
	Command string
}

// DefaultOpts is the default option set for Files.
var DefaultOpts = Opts{Command: "merge-str"}

// Files merges the VCFs at paths into one multi-sample VCF at outPath,
// which is bgzf-compressed when it ends in ".gz".  Inputs must be
// position-sorted and all produced by the same genotyper.
func Files(ctx context.Context, outPath string, paths []string, opts Opts) (*Stats, error) {
	if len(paths) < 2 {
		return nil, fmt.Errorf("need at least two inputs to merge, got %d", len(paths))
	}
	requested := genotyper.Unknown
	if opts.Genotyper != "" {
		var err error
		if requested, err = genotyper.Parse(opts.Genotyper); err != nil {
			return nil, &UnsupportedGenotyperError{Detail: err.Error()}
		}
	}

	e := errors.Once{}
	inputs := make([]*Input, 0, len(paths))
	headers := make([]*trvcf.Header, 0, len(paths))
	names := make([]string, 0, len(paths))
	for _, path := range paths {
		r, err := trvcf.Open(ctx, path)
		if err != nil {
			e.Set(err)
			break
		}
		defer func() { e.Set(r.Close()) }() // r is per-iteration; closed when Files returns
		name := inputName(path)
		inputs = append(inputs, &Input{Name: name, Samples: r.Header().Samples, Reader: r})
		headers = append(headers, r.Header())
		names = append(names, name)
	}
	if err := e.Err(); err != nil {
		return nil, err
	}

	schema, err := ResolveGenotyper(requested, headers, names)
	if err != nil {
		return nil, err
	}
	vlog.VI(1).Infof("merging %d %s VCFs into %s", len(paths), schema.Tool, outPath)
	ranks, err := ContigRanks(headers, names)
	if err != nil {
		return nil, err
	}
	samples := ResolveSampleNames(inputs, opts.UpdateSampleFromFile)

	m, err := NewMerger(inputs, ranks, schema)
	if err != nil {
		return nil, err
	}
	w, err := trvcf.Create(ctx, outPath, runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	e.Set(w.WriteHeader(MergedHeader(headers[0], schema, samples, opts.Command)))
	if e.Err() == nil {
		e.Set(m.Merge(w))
	}
	e.Set(w.Close())
	if err := e.Err(); err != nil {
		return nil, err
	}
	total := m.Stats().Total()
	vlog.VI(1).Infof("merged %d records into %d loci (%d multi-input)",
		total.Records, total.Loci, total.MultiInput)
	return m.Stats(), nil
}

// inputName derives an input's identifier from its path: the basename
// with the .vcf/.vcf.gz suffix removed.
func inputName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".vcf")
	return name
}
