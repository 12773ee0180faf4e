package merge_test

import (
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/strtools/str/encoding/trvcf"
	"github.com/strtools/str/genotyper"
	"github.com/strtools/str/merge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkHeader(t *testing.T, text string) *trvcf.Header {
	r, err := trvcf.NewReader(strings.NewReader(text), "header")
	require.NoError(t, err)
	return r.Header()
}

func TestContigRanks(t *testing.T) {
	h1 := mkHeader(t, "##contig=<ID=1>\n##contig=<ID=2>\n##contig=<ID=X>\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	h2 := mkHeader(t, "##contig=<ID=1>\n##contig=<ID=X>\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	ranks, err := merge.ContigRanks([]*trvcf.Header{h1, h2}, []string{"f1", "f2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"1": 0, "2": 1, "X": 2}, ranks)

	// Contradictory relative order.
	h3 := mkHeader(t, "##contig=<ID=X>\n##contig=<ID=1>\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	_, err = merge.ContigRanks([]*trvcf.Header{h1, h3}, []string{"f1", "f3"})
	assert.Error(t, err)

	// Contig unknown to the first input.
	h4 := mkHeader(t, "##contig=<ID=1>\n##contig=<ID=MT>\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	_, err = merge.ContigRanks([]*trvcf.Header{h1, h4}, []string{"f1", "f4"})
	assert.Error(t, err)

	// No contig lines at all.
	h5 := mkHeader(t, "##fileformat=VCFv4.1\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	_, err = merge.ContigRanks([]*trvcf.Header{h5}, []string{"f5"})
	assert.Error(t, err)
}

func TestResolveGenotyper(t *testing.T) {
	gangstr := mkHeader(t, "##source=GangSTR-2.4\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	hipstr := mkHeader(t, "##command=HipSTR --bams x.bam\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	plain := mkHeader(t, "##fileformat=VCFv4.1\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")

	s, err := merge.ResolveGenotyper(genotyper.Unknown, []*trvcf.Header{gangstr, gangstr}, []string{"f1", "f2"})
	require.NoError(t, err)
	assert.Equal(t, genotyper.GangSTR, s.Tool)

	// Mixing genotypers across inputs is a configuration error.
	_, err = merge.ResolveGenotyper(genotyper.Unknown, []*trvcf.Header{gangstr, hipstr}, []string{"f1", "f2"})
	require.Error(t, err)
	_, ok := err.(*merge.UnsupportedGenotyperError)
	assert.True(t, ok, "%T: %v", err, err)

	// Undetectable headers fail unless the tool is given explicitly.
	_, err = merge.ResolveGenotyper(genotyper.Unknown, []*trvcf.Header{plain}, []string{"f1"})
	require.Error(t, err)
	s, err = merge.ResolveGenotyper(genotyper.HipSTR, []*trvcf.Header{plain}, []string{"f1"})
	require.NoError(t, err)
	assert.Equal(t, genotyper.HipSTR, s.Tool)
}

func TestMergedHeader(t *testing.T) {
	first := mkHeader(t, strings.Join([]string{
		"##fileformat=VCFv4.1",
		"##source=GangSTR-2.4",
		`##INFO=<ID=RU,Number=1,Type=String,Description="Repeat motif">`,
		`##INFO=<ID=WEIRD,Number=1,Type=String,Description="Not in any schema">`,
		`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
		`##FORMAT=<ID=DP,Number=1,Type=Integer,Description="Depth">`,
		"##contig=<ID=1,length=1000>",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1",
	}, "\n") + "\n")
	schema, err := genotyper.SchemaFor(genotyper.GangSTR)
	require.NoError(t, err)
	h := merge.MergedHeader(first, schema, []string{"S1", "S2"}, "merge-str -out out.vcf")

	assert.Equal(t, []string{"S1", "S2"}, h.Samples)
	assert.Equal(t, []string{"1"}, h.Contigs)
	joined := strings.Join(h.Meta, "\n")
	assert.Contains(t, joined, "##fileformat=")
	assert.Contains(t, joined, "##command=merge-str -out out.vcf")
	assert.Contains(t, joined, "##INFO=<ID=RU,")
	assert.Contains(t, joined, "##FORMAT=<ID=GT,")
	assert.Contains(t, joined, "##FORMAT=<ID=DP,")
	assert.Contains(t, joined, "##contig=<ID=1,")
	// Unrecognized descriptor lines are dropped with their fields.
	assert.NotContains(t, joined, "WEIRD")
}

func TestFiles(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	write := func(name, text string) string {
		path := filepath.Join(tempDir, name)
		require.NoError(t, ioutil.WriteFile(path, []byte(text), 0644))
		return path
	}
	info := "END=110;RU=A;PERIOD=1"
	p1 := write("a.vcf", vcfText("GangSTR-2.4", []string{"SAMPLE1"},
		"1\t100\t.\tA\tAT\t.\t.\t"+info+"\tGT:DP\t0/1:20",
		"2\t50\t.\tG\tGT\t.\t.\t"+info+"\tGT:DP\t0/0:9"))
	p2 := write("b.vcf", vcfText("GangSTR-2.4", []string{"SAMPLE1"},
		"1\t100\t.\tA\tATAT\t.\t.\t"+info+"\tGT:DP\t0/1:15"))
	outPath := filepath.Join(tempDir, "merged.vcf")

	ctx := vcontext.Background()
	stats, err := merge.Files(ctx, outPath, []string{p1, p2}, merge.Opts{
		UpdateSampleFromFile: true,
		Command:              "merge-str test",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total().Loci)
	assert.Equal(t, 3, stats.Total().Records)

	r, err := trvcf.Open(ctx, outPath)
	require.NoError(t, err)
	defer r.Close() // nolint: errcheck
	assert.Equal(t, []string{"SAMPLE1_a", "SAMPLE1_b"}, r.Header().Samples)
	assert.Equal(t, []string{"1", "2"}, r.Header().Contigs)

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, 100, rec.Pos)
	assert.Equal(t, []string{"AT", "ATAT"}, rec.Alts)
	assert.Equal(t, "0/1", rec.Samples[0].GT.String())
	assert.Equal(t, "0/2", rec.Samples[1].GT.String())
	assert.Equal(t, "20", rec.Samples[0].Fields["DP"])

	rec, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, "2", rec.Chrom)
	assert.Equal(t, 50, rec.Pos)
	// b.vcf has no record here: only a.vcf's sample is called.
	assert.Equal(t, "0/0", rec.Samples[0].GT.String())
	assert.Equal(t, "./.", rec.Samples[1].GT.String())

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestFilesRejectsMixedGenotypers(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	p1 := filepath.Join(tempDir, "a.vcf")
	p2 := filepath.Join(tempDir, "b.vcf")
	require.NoError(t, ioutil.WriteFile(p1, []byte(vcfText("GangSTR-2.4", []string{"S1"})), 0644))
	require.NoError(t, ioutil.WriteFile(p2, []byte(vcfText("HipSTR-v0.6.2", []string{"S2"})), 0644))
	_, err := merge.Files(vcontext.Background(), filepath.Join(tempDir, "out.vcf"), []string{p1, p2}, merge.DefaultOpts)
	require.Error(t, err)
	_, ok := err.(*merge.UnsupportedGenotyperError)
	assert.True(t, ok, "%T: %v", err, err)
}
