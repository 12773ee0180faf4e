// Package merge implements the locus merge engine: a k-way walk over
// sorted per-sample TR VCF streams that unifies alleles per locus,
// rewrites genotype indices into the unified numbering, and merges
// annotations into one multi-sample record per locus.
package merge

import (
	"io"

	"github.com/pkg/errors"
	"github.com/strtools/str/encoding/trvcf"
	"github.com/strtools/str/genotyper"
	"v.io/x/lib/vlog"
)

// RecordWriter is the output contract: records arrive one at a time in
// ascending position order, after a one-time header. trvcf.Writer
// satisfies it.
type RecordWriter interface {
	WriteRecord(*trvcf.Record) error
}

// ContigStats counts merge activity on one contig.
type ContigStats struct {
	Name string
	// Loci is the number of merged records emitted.
	Loci int
	// Records is the number of source records consumed.
	Records int
	// MultiInput is the number of loci covered by more than one input.
	MultiInput int
}

// Stats accumulates per-contig counters over a run, in contig rank
// order.
type Stats struct {
	Contigs []ContigStats
}

// Total returns the counters summed over all contigs.
func (s *Stats) Total() ContigStats {
	t := ContigStats{Name: "TOTAL"}
	for _, c := range s.Contigs {
		t.Loci += c.Loci
		t.Records += c.Records
		t.MultiInput += c.MultiInput
	}
	return t
}

// The driver holds at most one locus group at a time, so memory stays
// bounded by the number of inputs regardless of genome size.
type state int

const (
	stateRunning  state = iota // cursors remain, no group buffered
	stateDraining              // one group buffered, about to be emitted
	stateDone                  // all cursors exhausted
)

// Merger produces merged records one locus at a time, in ascending
// position order, until every input is exhausted.
type Merger struct {
	schema  genotyper.Schema
	inputs  []*Input
	agg     *aggregator
	state   state
	pending *locusGroup
	stats   Stats
	statIdx map[string]int
}

// NewMerger validates the inputs and primes the k-way merge.  ranks is
// the contig ranking shared by all inputs (see ContigRanks).
func NewMerger(inputs []*Input, ranks map[string]int, schema genotyper.Schema) (*Merger, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no inputs to merge")
	}
	agg, err := newAggregator(inputs, ranks)
	if err != nil {
		return nil, err
	}
	return &Merger{schema: schema, inputs: inputs, agg: agg, statIdx: make(map[string]int)}, nil
}

// Next returns the next merged record, or io.EOF after the last locus.
// Any other error is fatal; the Merger must not be used afterwards.
func (m *Merger) Next() (*trvcf.Record, error) {
	for {
		switch m.state {
		case stateRunning:
			g, err := m.agg.next()
			if err != nil {
				m.state = stateDone
				return nil, err
			}
			if g == nil {
				m.state = stateDone
				continue
			}
			m.pending = g
			m.state = stateDraining
		case stateDraining:
			g := m.pending
			m.pending = nil
			m.state = stateRunning
			rec, err := m.emit(g)
			if err != nil {
				m.state = stateDone
				return nil, err
			}
			return rec, nil
		default:
			return nil, io.EOF
		}
	}
}

// Merge drives the Merger to completion, handing every record to w.
func (m *Merger) Merge(w RecordWriter) error {
	for {
		rec, err := m.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.WriteRecord(rec); err != nil {
			return err
		}
	}
}

// Stats returns the counters accumulated so far.
func (m *Merger) Stats() *Stats { return &m.stats }

// emit turns one locus group into a merged record: allele union, then
// genotype and field remapping, then per-sample concatenation.
func (m *Merger) emit(g *locusGroup) (*trvcf.Record, error) {
	canonical, err := unifyAlleles(g)
	if err != nil {
		return nil, err
	}
	maps := make([][]int, len(g.entries))
	for i, e := range g.entries {
		maps[i] = canonical.indexMap(e.rec)
	}
	info, err := mergeInfo(m.schema, g)
	if err != nil {
		return nil, err
	}
	samples, err := mergeSamples(m.schema, m.inputs, g, maps, canonical.len())
	if err != nil {
		return nil, err
	}
	m.count(g)
	vlog.VI(2).Infof("%s: %d inputs, %d alleles, %d samples",
		g.pos, len(g.entries), canonical.len(), len(samples))
	return &trvcf.Record{
		Chrom:   g.pos.Chrom,
		Pos:     g.pos.Pos,
		ID:      groupID(g),
		Ref:     canonical.ref,
		Alts:    canonical.alts,
		Qual:    trvcf.MissingValue,
		Filter:  trvcf.MissingValue,
		Info:    info,
		Format:  append([]string{"GT"}, m.schema.FormatKeys()...),
		Samples: samples,
	}, nil
}

func (m *Merger) count(g *locusGroup) {
	idx, ok := m.statIdx[g.pos.Chrom]
	if !ok {
		idx = len(m.stats.Contigs)
		m.statIdx[g.pos.Chrom] = idx
		m.stats.Contigs = append(m.stats.Contigs, ContigStats{Name: g.pos.Chrom})
	}
	c := &m.stats.Contigs[idx]
	c.Loci++
	c.Records += len(g.entries)
	if len(g.entries) > 1 {
		c.MultiInput++
	}
}

// groupID picks the merged record's ID: the first input's non-missing
// ID, else missing.
func groupID(g *locusGroup) string {
	for _, e := range g.entries {
		if e.rec.ID != "" && e.rec.ID != trvcf.MissingValue {
			return e.rec.ID
		}
	}
	return trvcf.MissingValue
}

func (c *canonicalAlleles) len() int { return 1 + len(c.alts) }

// ContigRanks derives the run's contig ranking from the first input's
// header and verifies the remaining inputs agree with it.  Later
// inputs may omit contigs, but may neither introduce new ones nor
// contradict the first input's relative order.
func ContigRanks(headers []*trvcf.Header, names []string) (map[string]int, error) {
	if len(headers) == 0 {
		return nil, errors.New("no input headers")
	}
	first := headers[0]
	if len(first.Contigs) == 0 {
		return nil, errors.Errorf("%s: header has no ##contig lines; cannot order loci", names[0])
	}
	ranks := make(map[string]int, len(first.Contigs))
	for i, c := range first.Contigs {
		ranks[c] = i
	}
	for hi, h := range headers[1:] {
		prev := -1
		for _, c := range h.Contigs {
			r, ok := ranks[c]
			if !ok {
				return nil, errors.Errorf("%s: contig %s not declared by %s", names[hi+1], c, names[0])
			}
			if r <= prev {
				return nil, errors.Errorf("%s: contig order disagrees with %s at %s", names[hi+1], names[0], c)
			}
			prev = r
		}
	}
	return ranks, nil
}

// ResolveGenotyper returns the run's genotyper schema.  With requested
// set it is used directly; otherwise every header must auto-detect to
// one and the same tool.
func ResolveGenotyper(requested genotyper.Type, headers []*trvcf.Header, names []string) (genotyper.Schema, error) {
	tool := requested
	if tool == genotyper.Unknown {
		for i, h := range headers {
			t, err := genotyper.Detect(h.Meta)
			if err != nil {
				return genotyper.Schema{}, &UnsupportedGenotyperError{
					Detail: names[i] + ": " + err.Error(),
				}
			}
			if tool != genotyper.Unknown && t != tool {
				return genotyper.Schema{}, &UnsupportedGenotyperError{
					Detail: names[i] + " was produced by " + t.String() +
						", earlier inputs by " + tool.String(),
				}
			}
			tool = t
		}
	}
	schema, err := genotyper.SchemaFor(tool)
	if err != nil {
		return genotyper.Schema{}, &UnsupportedGenotyperError{Detail: err.Error()}
	}
	return schema, nil
}

// MergedHeader builds the output header: provenance, the recognized
// INFO/FORMAT descriptor lines carried from the first input, the
// contig lines defining the position order, and the resolved sample
// column.
func MergedHeader(first *trvcf.Header, schema genotyper.Schema, samples []string, command string) *trvcf.Header {
	out := &trvcf.Header{Samples: samples}
	out.AddMeta("##fileformat=VCFv4.1")
	if command != "" {
		out.AddMeta("##command=" + command)
	}
	for _, f := range schema.Info {
		if line, ok := first.MetaByID("INFO", f.Name); ok {
			out.AddMeta(line)
		}
	}
	if line, ok := first.MetaByID("FORMAT", "GT"); ok {
		out.AddMeta(line)
	} else {
		out.AddMeta(`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`)
	}
	for _, f := range schema.Format {
		if line, ok := first.MetaByID("FORMAT", f.Name); ok {
			out.AddMeta(line)
		}
	}
	for _, c := range first.Contigs {
		if line, ok := first.MetaByID("contig", c); ok {
			out.AddMeta(line)
		}
	}
	return out
}
