package merge

import (
	"io"

	"github.com/biogo/store/llrb"
	"github.com/strtools/str/encoding/trvcf"
	"v.io/x/lib/vlog"
)

// RecordReader is the stream-cursor contract: a forward, position-sorted
// sequence of parsed records, io.EOF after the last one.
// trvcf.Reader satisfies it.
type RecordReader interface {
	Read() (*trvcf.Record, error)
}

// Input is one source VCF stream plus the identity the merge knows it
// by.  Name disambiguates sample names and appears in error messages.
type Input struct {
	Name    string
	Samples []string
	Reader  RecordReader
}

// coord is a Position projected through the run's contig ranking, so
// comparisons are integer-only.
type coord struct {
	rank int
	pos  int
}

func (c coord) compare(o coord) int {
	if c.rank != o.rank {
		if c.rank < o.rank {
			return -1
		}
		return 1
	}
	if c.pos != o.pos {
		if c.pos < o.pos {
			return -1
		}
		return 1
	}
	return 0
}

// cursor tracks one input's head record.  head == nil means exhausted.
type cursor struct {
	seq     int // position in the input list; the ordering tie-break
	in      *Input
	ranks   map[string]int
	head    *trvcf.Record
	headPos coord
	started bool
}

// Compare orders cursors by head position, then input order.  The seq
// tie-break keeps DeleteMin deterministic when several inputs sit at
// the same locus.
func (c *cursor) Compare(o llrb.Comparable) int {
	oc := o.(*cursor)
	if r := c.headPos.compare(oc.headPos); r != 0 {
		return r
	}
	return c.seq - oc.seq
}

// advance reads the cursor's next record, verifying the within-stream
// sort invariant.  Returns false when the input is exhausted.
func (c *cursor) advance() (bool, error) {
	rec, err := c.in.Reader.Read()
	if err == io.EOF {
		c.head = nil
		return false, nil
	}
	if err != nil {
		return false, &MalformedRecordError{File: c.in.Name, Err: err}
	}
	rank, ok := c.ranks[rec.Chrom]
	if !ok {
		return false, &MalformedRecordError{
			File: c.in.Name,
			Pos:  Position{rec.Chrom, rec.Pos},
			Err:  errContigNotRanked(rec.Chrom),
		}
	}
	next := coord{rank, rec.Pos}
	if c.started && next.compare(c.headPos) < 0 {
		return false, &UnsortedInputError{
			File: c.in.Name,
			Prev: Position{c.head.Chrom, c.head.Pos},
			Next: Position{rec.Chrom, rec.Pos},
		}
	}
	c.head = rec
	c.headPos = next
	c.started = true
	return true, nil
}

// groupEntry is one input's contribution to a locus group.
type groupEntry struct {
	in  *Input
	rec *trvcf.Record
}

// locusGroup is every record, at most one per input, at one position.
type locusGroup struct {
	pos     Position
	entries []groupEntry
}

// aggregator drives the k-way selection over cursor heads.  Like the
// llrb-based shard merge this is built on, the cursor with the smallest
// head tends to stay near the top of the tree, so selection is cheap
// when one input dominates a region.
type aggregator struct {
	leaves llrb.Tree
}

func newAggregator(inputs []*Input, ranks map[string]int) (*aggregator, error) {
	a := &aggregator{}
	for i, in := range inputs {
		c := &cursor{seq: i, in: in, ranks: ranks}
		ok, err := c.advance()
		if err != nil {
			return nil, err
		}
		if !ok {
			vlog.VI(1).Infof("%s: no records", in.Name)
			continue
		}
		a.leaves.Insert(c)
	}
	vlog.VI(1).Infof("aggregating %d inputs, %d nonempty", len(inputs), a.leaves.Len())
	return a, nil
}

// next returns the group at the globally smallest pending position,
// advancing exactly the cursors that contributed to it.  A nil group
// means every input is exhausted.
func (a *aggregator) next() (*locusGroup, error) {
	if a.leaves.Len() == 0 {
		return nil, nil
	}
	minPos := a.leaves.Min().(*cursor).headPos
	var popped []*cursor
	for a.leaves.Len() > 0 {
		c := a.leaves.Min().(*cursor)
		if c.headPos.compare(minPos) != 0 {
			break
		}
		a.leaves.DeleteMin()
		popped = append(popped, c)
	}
	g := &locusGroup{
		pos:     Position{popped[0].head.Chrom, popped[0].head.Pos},
		entries: make([]groupEntry, len(popped)),
	}
	for i, c := range popped {
		g.entries[i] = groupEntry{in: c.in, rec: c.head}
	}
	for _, c := range popped {
		ok, err := c.advance()
		if err != nil {
			return nil, err
		}
		if ok {
			a.leaves.Insert(c)
		}
	}
	return g, nil
}
