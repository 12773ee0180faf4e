package main

/*
merge-str merges per-sample tandem-repeat genotyping VCFs produced by a
single supported genotyper (GangSTR, HipSTR, ExpansionHunter, popSTR or
adVNTR) into one multi-sample VCF, unifying the allele set at every
locus and rewriting genotype indices accordingly.

Inputs must be position-sorted; bgzip compression is handled
transparently.  The output is bgzf-compressed when -out ends in ".gz".
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/strtools/str/merge"
)

var (
	out          = flag.String("out", "merged.vcf.gz", "Output VCF path; a .gz suffix selects bgzf compression")
	tool         = flag.String("genotyper", merge.DefaultOpts.Genotyper, "Genotyper that produced the inputs: gangstr, hipstr, eh, popstr or advntr; empty = auto-detect from headers")
	updateSample = flag.Bool("update-sample-from-file", merge.DefaultOpts.UpdateSampleFromFile, "Suffix each sample name with its input file's name (disambiguates samples genotyped in several inputs)")
	statsPath    = flag.String("stats", "", "Optional TSV path for per-contig merge counters")
)

func mergeSTRUsage() {
	fmt.Printf("Usage: %s [OPTIONS] in1.vcf.gz in2.vcf.gz ...\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = mergeSTRUsage
	shutdown := grail.Init()
	defer shutdown()

	paths := flag.Args()
	if len(paths) < 2 {
		log.Fatalf("At least two input VCFs required, got '%s'", strings.Join(paths, " "))
	}
	ctx := vcontext.Background()
	opts := merge.Opts{
		Genotyper:            *tool,
		UpdateSampleFromFile: *updateSample,
		Command:              strings.Join(os.Args, " "),
	}
	stats, err := merge.Files(ctx, *out, paths, opts)
	if err != nil {
		log.Fatalf("%v", err)
	}
	total := stats.Total()
	log.Printf("%s: %d loci from %d source records (%d covered by >1 input)",
		*out, total.Loci, total.Records, total.MultiInput)
	if *statsPath != "" {
		if err := writeStats(*statsPath, stats); err != nil {
			log.Fatalf("write %v: %v", *statsPath, err)
		}
	}
	log.Debug.Printf("exiting")
}

func writeStats(path string, stats *merge.Stats) (err error) {
	ctx := vcontext.Background()
	dst, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, dst, &err)
	tsvw := tsv.NewWriter(dst.Writer(ctx))
	tsvw.WriteString("#CONTIG\tLOCI\tRECORDS\tMULTI_INPUT")
	if err = tsvw.EndLine(); err != nil {
		return err
	}
	rows := append([]merge.ContigStats(nil), stats.Contigs...)
	rows = append(rows, stats.Total())
	for _, row := range rows {
		tsvw.WriteString(row.Name)
		tsvw.WriteUint32(uint32(row.Loci))
		tsvw.WriteUint32(uint32(row.Records))
		tsvw.WriteUint32(uint32(row.MultiInput))
		if err = tsvw.EndLine(); err != nil {
			return err
		}
	}
	return tsvw.Flush()
}
