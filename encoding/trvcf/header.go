package trvcf

import (
	"strings"

	"github.com/pkg/errors"
)

// Header holds the meta lines and sample column of a VCF file.  Contig
// order is taken from the ##contig lines and defines the position total
// order used by the merge.
type Header struct {
	// Meta holds every "##" line verbatim, in file order.
	Meta []string
	// Contigs holds the ##contig IDs in file order.
	Contigs []string
	// Samples holds the sample column names from the #CHROM line.
	Samples []string

	contigRank map[string]int
}

// ContigRank returns the 0-based rank of a contig in the header's
// ##contig ordering.
func (h *Header) ContigRank(name string) (int, bool) {
	r, ok := h.contigRank[name]
	return r, ok
}

// MetaByID returns the first meta line of the form
// "##<kind>=<ID=<id>,..." (e.g. kind "INFO", id "RU").
func (h *Header) MetaByID(kind, id string) (string, bool) {
	prefix := "##" + kind + "=<ID=" + id + ","
	exact := "##" + kind + "=<ID=" + id + ">"
	for _, line := range h.Meta {
		if strings.HasPrefix(line, prefix) || line == exact {
			return line, true
		}
	}
	return "", false
}

func (h *Header) addContig(id string) {
	if h.contigRank == nil {
		h.contigRank = make(map[string]int)
	}
	if _, ok := h.contigRank[id]; ok {
		return
	}
	h.contigRank[id] = len(h.Contigs)
	h.Contigs = append(h.Contigs, id)
}

// AddMeta appends a meta line, registering it as a contig if applicable.
func (h *Header) AddMeta(line string) {
	h.Meta = append(h.Meta, line)
	if id, ok := contigID(line); ok {
		h.addContig(id)
	}
}

// contigID extracts the ID from a ##contig meta line.
func contigID(line string) (string, bool) {
	const prefix = "##contig=<"
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	body := strings.TrimSuffix(line[len(prefix):], ">")
	for _, kv := range strings.Split(body, ",") {
		if strings.HasPrefix(kv, "ID=") {
			return kv[len("ID="):], true
		}
	}
	return "", false
}

// parseSampleLine parses the "#CHROM\tPOS\t..." column header line.
func (h *Header) parseSampleLine(line string) error {
	cols := strings.Split(line, "\t")
	if len(cols) < 8 {
		return errors.Errorf("malformed #CHROM line: %d columns", len(cols))
	}
	if len(cols) > 9 {
		h.Samples = cols[9:]
	}
	return nil
}
