package trvcf_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/strtools/str/encoding/trvcf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGenotype(t *testing.T) {
	tests := []struct {
		in      string
		alleles []int
		seps    string
		wantErr bool
	}{
		{"0/1", []int{0, 1}, "/", false},
		{"0|2", []int{0, 2}, "|", false},
		{"2/0", []int{2, 0}, "/", false},
		{".", []int{-1}, "", false},
		{"./.", []int{-1, -1}, "/", false},
		{"1", []int{1}, "", false},
		{"0/1/2", []int{0, 1, 2}, "//", false},
		{"0|1/2", []int{0, 1, 2}, "|/", false},
		{"", nil, "", true},
		{"a/b", nil, "", true},
		{"-1/0", nil, "", true},
	}
	for _, tt := range tests {
		gt, err := trvcf.ParseGenotype(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.alleles, gt.Alleles, tt.in)
		assert.Equal(t, tt.seps, string(gt.Seps), tt.in)
		assert.Equal(t, tt.in, gt.String(), tt.in)
	}
}

const testVCF = `##fileformat=VCFv4.1
##source=GangSTR-2.4
##INFO=<ID=RU,Number=1,Type=String,Description="Repeat motif">
##INFO=<ID=PERIOD,Number=1,Type=Integer,Description="Repeat period (length of motif)">
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
##FORMAT=<ID=DP,Number=1,Type=Integer,Description="Read depth">
##contig=<ID=1,length=249250621>
##contig=<ID=2,length=243199373>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	SAMPLE1	SAMPLE2
1	100	.	A	AT,ATAT	.	.	RU=A;PERIOD=1	GT:DP	0/1:20	1|2:15
2	50	str2	GC	.	.	PASS	RU=GC;PERIOD=2	GT:DP	0/0:9	.:.
`

func TestReader(t *testing.T) {
	r, err := trvcf.NewReader(strings.NewReader(testVCF), "test.vcf")
	require.NoError(t, err)
	h := r.Header()
	assert.Equal(t, []string{"1", "2"}, h.Contigs)
	assert.Equal(t, []string{"SAMPLE1", "SAMPLE2"}, h.Samples)
	rank, ok := h.ContigRank("2")
	assert.True(t, ok)
	assert.Equal(t, 1, rank)
	_, ok = h.ContigRank("chrX")
	assert.False(t, ok)
	line, ok := h.MetaByID("INFO", "RU")
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(line, "##INFO=<ID=RU,"))
	_, ok = h.MetaByID("INFO", "END")
	assert.False(t, ok)

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "1", rec.Chrom)
	assert.Equal(t, 100, rec.Pos)
	assert.Equal(t, "A", rec.Ref)
	assert.Equal(t, []string{"AT", "ATAT"}, rec.Alts)
	assert.Equal(t, 3, rec.NAlleles())
	ru, ok := rec.InfoValue("RU")
	assert.True(t, ok)
	assert.Equal(t, "A", ru)
	_, ok = rec.InfoValue("END")
	assert.False(t, ok)
	require.Equal(t, 2, len(rec.Samples))
	assert.Equal(t, "0/1", rec.Samples[0].GT.String())
	assert.Equal(t, "20", rec.Samples[0].Fields["DP"])
	assert.Equal(t, "1|2", rec.Samples[1].GT.String())

	rec, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, "2", rec.Chrom)
	assert.Equal(t, "str2", rec.ID)
	assert.Equal(t, 0, len(rec.Alts))
	// "." sample column is a no-call with no fields.
	assert.Equal(t, ".", rec.Samples[1].GT.String())
	assert.Equal(t, 0, len(rec.Samples[1].Fields))

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderErrors(t *testing.T) {
	header := "##fileformat=VCFv4.1\n##contig=<ID=1>\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n"
	tests := []struct {
		name string
		body string
		want string
	}{
		{"gt out of range", "1\t100\t.\tA\tAT\t.\t.\t.\tGT\t0/2\n", "out of range"},
		{"bad pos", "1\tx\t.\tA\tAT\t.\t.\t.\tGT\t0/1\n", "bad POS"},
		{"missing ref", "1\t100\t.\t.\tAT\t.\t.\t.\tGT\t0/1\n", "missing REF"},
		{"column count", "1\t100\t.\tA\tAT\t.\t.\t.\n", "columns"},
	}
	for _, tt := range tests {
		r, err := trvcf.NewReader(strings.NewReader(header+tt.body), tt.name)
		require.NoError(t, err, tt.name)
		_, err = r.Read()
		require.Error(t, err, tt.name)
		assert.Contains(t, err.Error(), tt.want, tt.name)
	}

	_, err := trvcf.NewReader(strings.NewReader("1\t100\t.\tA\tAT\t.\t.\t.\n"), "no header")
	assert.Error(t, err)
	_, err = trvcf.NewReader(strings.NewReader("##fileformat=VCFv4.1\n"), "no chrom line")
	assert.Error(t, err)
}

func TestWriterRoundTrip(t *testing.T) {
	r, err := trvcf.NewReader(strings.NewReader(testVCF), "test.vcf")
	require.NoError(t, err)
	var buf bytes.Buffer
	w := trvcf.NewWriter(&buf)
	require.NoError(t, w.WriteHeader(r.Header()))
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.NoError(t, w.WriteRecord(rec))
	}
	require.NoError(t, w.Close())
	assert.Equal(t, testVCF, buf.String())
}
