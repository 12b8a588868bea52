/*
  elduderino streams a coordinate-sorted SAM text file, groups its
  read pairs into PCR/optical duplicate families by position, UMI,
  CIGAR, and flowcell tile coordinate, and writes one consensus FASTQ
  pair per surviving family. For more information, see DESIGN.md.
*/
package main

import (
	"flag"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/grailbio/elduderino/cmd/elduderino/ioloc"
	"github.com/grailbio/elduderino/dedupe"
	"github.com/grailbio/elduderino/dedupestats"
	"github.com/grailbio/elduderino/encoding/fastq"
	"github.com/grailbio/elduderino/samtext"
)

var (
	input            = flag.String("input", "-", "Input SAM filename, local path, .sam.gz, s3:// URI, or '-' for stdin")
	output           = flag.String("output", "-", "Output FASTQ filename, local path, s3:// URI, or '-' for stdout")
	scratchDir       = flag.String("scratch-dir", "/tmp", "Directory for S3 download/upload scratch files")
	umiMode          = flag.String("umi", "none", "UMI grouping mode: none|barcode-split|connor-merge|thruplex|thruplex_hv|prism")
	knownUMIs        = flag.String("known-umis", "", "Path to a newline-separated list of known UMI sequences, enabling snap correction")
	minFamilySize    = flag.Int("min-family-size", 1, "Families smaller than this are dropped instead of emitted")
	opticalDistance  = flag.String("optical-distance", "auto", "Pixel distance threshold for optical duplicates: 'auto', 'disable', or an integer")
	statsFile        = flag.String("stats", "", "Output path for JSON duplication statistics, local or s3://")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a, " "))
	}

	opts := dedupe.DefaultOpts()
	opts.MinFamilySize = *minFamilySize

	opts.UMIMode = parseUMIMode(*umiMode)

	if *knownUMIs != "" {
		localPath, cleanup, err := ioloc.ResolveInput(*knownUMIs, *scratchDir)
		if err != nil {
			log.Fatalf(err.Error())
		}
		defer cleanup()
		data, err := ioutil.ReadFile(localPath)
		if err != nil {
			log.Fatalf("reading known-umis file: %v", err)
		}
		opts.KnownUMIs = data
	}

	opticalMode, opticalPixels, err := parseOpticalDistance(*opticalDistance)
	if err != nil {
		log.Fatalf(err.Error())
	}
	opts.OpticalMode = opticalMode
	opts.OpticalDistancePixels = opticalPixels

	localInput, cleanupInput, err := ioloc.ResolveInput(*input, *scratchDir)
	if err != nil {
		log.Fatalf(err.Error())
	}
	defer cleanupInput()

	buf, closeBuf, err := samtext.LoadBuffer(localInput)
	if err != nil {
		log.Fatalf(err.Error())
	}
	defer closeBuf()

	sink, err := ioloc.ResolveOutput(*output, *scratchDir)
	if err != nil {
		log.Fatalf(err.Error())
	}
	writer := fastq.NewWriter(sink)

	stats := dedupestats.New()
	if err := dedupe.Run(buf, writer, opts, stats); err != nil {
		sink.Close()
		log.Fatalf(err.Error())
	}
	if err := sink.Close(); err != nil {
		log.Fatalf("closing output: %v", err)
	}

	if *statsFile != "" {
		if err := writeStats(stats, *statsFile, *scratchDir); err != nil {
			log.Fatalf(err.Error())
		}
	}
	log.Debug.Printf("exiting")
}

func writeStats(stats *dedupestats.Statistics, loc, scratchDir string) error {
	sink, err := ioloc.ResolveOutput(loc, scratchDir)
	if err != nil {
		return err
	}
	if err := stats.WriteJSON(sink); err != nil {
		sink.Close()
		return err
	}
	return sink.Close()
}

func parseUMIMode(s string) dedupe.UMIMode {
	switch s {
	case "none":
		return dedupe.UMINone
	case "barcode-split", "thruplex_hv", "prism":
		return dedupe.UMIBarcodeSplit
	case "connor-merge", "thruplex":
		return dedupe.UMIConnorMerge
	default:
		log.Fatalf("unrecognized -umi value %q", s)
		return dedupe.UMINone
	}
}

func parseOpticalDistance(s string) (dedupe.OpticalMode, int, error) {
	switch s {
	case "auto", "":
		return dedupe.OpticalAuto, 0, nil
	case "disable", "disabled":
		return dedupe.OpticalDisabled, 0, nil
	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			log.Fatalf("-optical-distance must be 'auto', 'disable', or an integer, got %q", s)
		}
		return dedupe.OpticalFixed, n, nil
	}
}
