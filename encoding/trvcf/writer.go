package trvcf

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bgzf"
)

// Writer writes a VCF header followed by records.  Create bgzf-compresses
// when the output path ends in ".gz".
type Writer struct {
	buf  *bufio.Writer
	bgzf *bgzf.Writer
	out  file.File
	ctx  context.Context
}

// NewWriter returns a Writer emitting uncompressed text to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

// Create creates a Writer at path.  parallelism bounds bgzf compression
// concurrency, as in bgzf.NewWriter.
func Create(ctx context.Context, path string, parallelism int) (*Writer, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	w := &Writer{out: out, ctx: ctx}
	if strings.HasSuffix(path, ".gz") {
		w.bgzf = bgzf.NewWriter(out.Writer(ctx), parallelism)
		w.buf = bufio.NewWriter(w.bgzf)
	} else {
		w.buf = bufio.NewWriter(out.Writer(ctx))
	}
	return w, nil
}

// WriteHeader writes the meta lines and the #CHROM column line.  It must
// be called exactly once, before the first WriteRecord.
func (w *Writer) WriteHeader(h *Header) error {
	for _, line := range h.Meta {
		w.buf.WriteString(line)
		w.buf.WriteByte('\n')
	}
	w.buf.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO")
	if len(h.Samples) > 0 {
		w.buf.WriteString("\tFORMAT")
		for _, s := range h.Samples {
			w.buf.WriteByte('\t')
			w.buf.WriteString(s)
		}
	}
	return w.buf.WriteByte('\n')
}

// WriteRecord appends one record.  Records must arrive in the order they
// are to appear in the file; no reordering happens here.
func (w *Writer) WriteRecord(rec *Record) error {
	w.buf.WriteString(rec.Chrom)
	w.buf.WriteByte('\t')
	w.buf.WriteString(strconv.Itoa(rec.Pos))
	w.buf.WriteByte('\t')
	w.buf.WriteString(orMissing(rec.ID))
	w.buf.WriteByte('\t')
	w.buf.WriteString(rec.Ref)
	w.buf.WriteByte('\t')
	if len(rec.Alts) == 0 {
		w.buf.WriteByte('.')
	} else {
		w.buf.WriteString(strings.Join(rec.Alts, ","))
	}
	w.buf.WriteByte('\t')
	w.buf.WriteString(orMissing(rec.Qual))
	w.buf.WriteByte('\t')
	w.buf.WriteString(orMissing(rec.Filter))
	w.buf.WriteByte('\t')
	if len(rec.Info) == 0 {
		w.buf.WriteByte('.')
	} else {
		for i, p := range rec.Info {
			if i > 0 {
				w.buf.WriteByte(';')
			}
			w.buf.WriteString(p.Key)
			if p.Value != "" {
				w.buf.WriteByte('=')
				w.buf.WriteString(p.Value)
			}
		}
	}
	if len(rec.Format) > 0 {
		w.buf.WriteByte('\t')
		w.buf.WriteString(strings.Join(rec.Format, ":"))
		for si := range rec.Samples {
			w.buf.WriteByte('\t')
			w.writeSample(rec, &rec.Samples[si])
		}
	}
	return w.buf.WriteByte('\n')
}

func (w *Writer) writeSample(rec *Record, call *SampleCall) {
	for i, key := range rec.Format {
		if i > 0 {
			w.buf.WriteByte(':')
		}
		if key == "GT" {
			w.buf.WriteString(call.GT.String())
			continue
		}
		if v, ok := call.Fields[key]; ok {
			w.buf.WriteString(v)
		} else {
			w.buf.WriteByte('.')
		}
	}
}

// Close flushes buffered data and closes the compressor and file.
func (w *Writer) Close() error {
	err := w.buf.Flush()
	if w.bgzf != nil {
		if e := w.bgzf.Close(); e != nil && err == nil {
			err = e
		}
	}
	if w.out != nil {
		if e := w.out.Close(w.ctx); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func orMissing(s string) string {
	if s == "" {
		return MissingValue
	}
	return s
}
