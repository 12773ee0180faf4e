package trvcf

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// maxLineSize bounds one VCF line.  Multi-sample STR VCFs can carry very
// long per-sample read-count strings.
const maxLineSize = 64 << 20

// Reader reads records out of one VCF stream in file order.
type Reader struct {
	path    string
	header  *Header
	scanner *bufio.Scanner
	closers []io.Closer
	nLine   int
}

// NewReader parses the header from r and returns a Reader positioned at
// the first record.  path is used only in error and log messages.
func NewReader(r io.Reader, path string) (*Reader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineSize)
	h := &Header{}
	sawChromLine := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "##") {
			h.AddMeta(line)
			continue
		}
		if strings.HasPrefix(line, "#") {
			if err := h.parseSampleLine(line); err != nil {
				return nil, errors.Wrap(err, path)
			}
			sawChromLine = true
			break
		}
		return nil, errors.Errorf("%s: record line before #CHROM header line", path)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	if !sawChromLine {
		return nil, errors.Errorf("%s: missing #CHROM header line", path)
	}
	return &Reader{path: path, header: h, scanner: scanner}, nil
}

// Open opens a VCF at the given path, transparently decompressing bgzf
// or plain gzip payloads, and parses its header.
func Open(ctx context.Context, path string) (*Reader, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	closer := func() error { return in.Close(ctx) }
	br := bufio.NewReaderSize(in.Reader(ctx), 1<<16)
	var src io.Reader = br
	var decompressor io.Closer
	magic, err := br.Peek(4)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		if magic[3]&0x04 != 0 {
			// gzip with FEXTRA set: bgzf block stream.
			bz, err := bgzf.NewReader(br, 0)
			if err != nil {
				_ = closer()
				return nil, errors.Wrap(err, path)
			}
			src, decompressor = bz, bz
		} else {
			log.Printf("%s: plain gzip, not bgzf; reading anyway", path)
			gz, err := gzip.NewReader(br)
			if err != nil {
				_ = closer()
				return nil, errors.Wrap(err, path)
			}
			src, decompressor = gz, gz
		}
	}
	r, err := NewReader(src, path)
	if err != nil {
		if decompressor != nil {
			_ = decompressor.Close()
		}
		_ = closer()
		return nil, err
	}
	if decompressor != nil {
		r.closers = append(r.closers, decompressor)
	}
	r.closers = append(r.closers, closerFunc(closer))
	return r, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Path returns the path (or label) the reader was opened with.
func (r *Reader) Path() string { return r.path }

// Header returns the parsed header.
func (r *Reader) Header() *Header { return r.header }

// Read returns the next record, or io.EOF after the last one.
func (r *Reader) Read() (*Record, error) {
	for r.scanner.Scan() {
		r.nLine++
		line := r.scanner.Text()
		if line == "" {
			continue
		}
		rec, err := r.parseRecord(line)
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, r.path)
	}
	return nil, io.EOF
}

// Close releases the underlying file and decompressor, if any.
func (r *Reader) Close() error {
	var err error
	for _, c := range r.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func (r *Reader) lineErrorf(format string, args ...interface{}) error {
	return errors.Errorf("%s: record %d: "+format,
		append([]interface{}{r.path, r.nLine}, args...)...)
}

func (r *Reader) parseRecord(line string) (*Record, error) {
	cols := strings.Split(line, "\t")
	nSamples := len(r.header.Samples)
	if nSamples > 0 && len(cols) != 9+nSamples {
		return nil, r.lineErrorf("%d columns, want %d", len(cols), 9+nSamples)
	}
	if nSamples == 0 && len(cols) < 8 {
		return nil, r.lineErrorf("%d columns, want >= 8", len(cols))
	}
	pos, err := strconv.Atoi(cols[1])
	if err != nil || pos <= 0 {
		return nil, r.lineErrorf("bad POS %q", cols[1])
	}
	rec := &Record{
		Chrom:  cols[0],
		Pos:    pos,
		ID:     cols[2],
		Ref:    cols[3],
		Qual:   cols[5],
		Filter: cols[6],
	}
	if rec.Ref == "" || rec.Ref == MissingValue {
		return nil, r.lineErrorf("missing REF")
	}
	if cols[4] != MissingValue && cols[4] != "" {
		rec.Alts = strings.Split(cols[4], ",")
	}
	if cols[7] != MissingValue && cols[7] != "" {
		for _, ent := range strings.Split(cols[7], ";") {
			if eq := strings.IndexByte(ent, '='); eq >= 0 {
				rec.Info = append(rec.Info, InfoPair{Key: ent[:eq], Value: ent[eq+1:]})
			} else {
				rec.Info = append(rec.Info, InfoPair{Key: ent})
			}
		}
	}
	if nSamples == 0 {
		return rec, nil
	}
	rec.Format = strings.Split(cols[8], ":")
	rec.Samples = make([]SampleCall, nSamples)
	for i := 0; i < nSamples; i++ {
		if err := r.parseSample(rec, &rec.Samples[i], cols[9+i]); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func (r *Reader) parseSample(rec *Record, call *SampleCall, col string) (err error) {
	call.GT = Genotype{Alleles: []int{NoCall}}
	if col == MissingValue || col == "" {
		return nil
	}
	vals := strings.SplitN(col, ":", len(rec.Format))
	for i, v := range vals {
		if rec.Format[i] == "GT" {
			if call.GT, err = ParseGenotype(v); err != nil {
				return r.lineErrorf("%v", err)
			}
			// A genotype index must be valid for the record's own
			// allele list before any remapping happens.
			for _, a := range call.GT.Alleles {
				if a >= rec.NAlleles() {
					return r.lineErrorf("GT index %d out of range (%d alleles)", a, rec.NAlleles())
				}
			}
			continue
		}
		if v == MissingValue || v == "" {
			continue
		}
		if call.Fields == nil {
			call.Fields = make(map[string]string)
		}
		call.Fields[rec.Format[i]] = v
	}
	return nil
}
