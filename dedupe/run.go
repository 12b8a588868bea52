package dedupe

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/elduderino/dedupe/consensus"
	"github.com/grailbio/elduderino/dedupe/optical"
	"github.com/grailbio/elduderino/dedupe/pair"
	umicorrect "github.com/grailbio/elduderino/dedupe/umi"
	"github.com/grailbio/elduderino/dedupestats"
	"github.com/grailbio/elduderino/encoding/fastq"
	"github.com/grailbio/elduderino/samtext"
)

// Run executes the full deduplication pipeline of spec §2 over buf, a
// complete coordinate-sorted SAM text stream, writing consensus FASTQ
// pairs to w and accumulating counters into stats. Run is the single
// entry point both cmd/elduderino and package tests use.
func Run(buf []byte, w *fastq.Writer, opts *Opts, stats *dedupestats.Statistics) error {
	opticalEnabled, opticalDistance := resolveOpticalDistance(opts, buf)

	var corrector *umicorrect.SnapCorrector
	if len(opts.KnownUMIs) > 0 {
		corrector = umicorrect.NewSnapCorrector(opts.KnownUMIs)
	}

	arena := consensus.NewArena()
	reader := samtext.NewReader(buf)
	pr := newPairer()

	var ix *index
	ix = newIndex(func(fp []byte, pairs []pair.ReadPair) error {
		return refineFamily(pairs, opts, corrector, opticalEnabled, opticalDistance, arena, stats, w)
	})

	for {
		seg, ok, err := reader.Next()
		if err != nil {
			return errors.E(ErrMalformedRecord, err)
		}
		if !ok {
			break
		}
		if seg.Flag.Any(samtext.NonPrimary) {
			continue
		}
		if seg.Flag.Has(samtext.BothUnmapped) {
			continue
		}
		if err := ix.checkSorted(seg.RName, seg.Pos); err != nil {
			return err
		}
		stats.TotalReads++

		rp, complete, err := pr.Add(seg)
		if err != nil {
			return err
		}
		if !complete {
			continue
		}
		if err := ix.Insert(seg.RName, seg.Pos, rp); err != nil {
			return err
		}
	}
	return ix.Finish()
}

func resolveOpticalDistance(opts *Opts, buf []byte) (enabled bool, distance int) {
	switch opts.OpticalMode {
	case OpticalDisabled:
		return false, 0
	case OpticalFixed:
		return true, opts.OpticalDistancePixels
	default:
		det := optical.NewDetector()
		for _, q := range samtext.SampleQNames(buf, optical.SampleSize) {
			det.Observe(q)
		}
		d, ok := det.Distance()
		if !ok {
			log.Debug.Printf("optical auto-detection: too few Illumina-shaped read names, disabling")
			return false, 0
		}
		log.Debug.Printf("optical auto-detection: distance=%d", d)
		return true, d
	}
}

// refineFamily runs the family refiner (spec §4.4) over one flushed
// fingerprint bucket: UMI grouping, the CIGAR vote, optical
// sub-clustering, and finally overlap trim plus consensus emission
// for each surviving UMI sub-family.
func refineFamily(pairs []pair.ReadPair, opts *Opts, corrector *umicorrect.SnapCorrector,
	opticalEnabled bool, opticalDistance int, arena *consensus.Arena, stats *dedupestats.Statistics, w *fastq.Writer) error {

	if corrector != nil {
		for i := range pairs {
			correctBarcodes(&pairs[i], corrector)
		}
	}

	groups, err := groupByUMI(opts.UMIMode, pairs)
	if err != nil {
		return err
	}
	for _, group := range groups {
		survivors, familySize := cigarVote(group)
		stats.AddFamilySize(familySize)
		if len(survivors) == 0 {
			log.Debug.Printf("cigar vote dropped family of size %d", familySize)
			continue
		}
		if err := emitFamily(survivors, opts, opticalEnabled, opticalDistance, arena, stats, w); err != nil {
			return err
		}
	}
	return nil
}

// emitFamily collapses any optical sub-clusters, then runs overlap
// trim and inter-read consensus over what remains, emitting one
// FASTQ pair if the surviving family meets MinFamilySize.
func emitFamily(pairs []pair.ReadPair, opts *Opts, opticalEnabled bool, opticalDistance int,
	arena *consensus.Arena, stats *dedupestats.Statistics, w *fastq.Writer) error {

	if len(pairs) > 1 {
		stats.PCRDuplicates += uint64(len(pairs) - 1)
	}

	if opticalEnabled {
		clusters := optical.Cluster(pairs, opticalDistance)
		collapsed := make([]pair.ReadPair, 0, len(clusters))
		for _, cluster := range clusters {
			if len(cluster) <= 1 {
				collapsed = append(collapsed, cluster...)
				continue
			}
			stats.OpticalDuplicates += uint64(len(cluster) - 1)
			rep, err := collapseCluster(cluster, arena, stats)
			if err != nil {
				return err
			}
			collapsed = append(collapsed, rep)
		}
		pairs = collapsed
	}

	r0, r1 := pairs[0].Segment[0].Flag.Any(samtext.Read1), pairs[0].Segment[1].Flag.Any(samtext.Read1)
	if r0 == r1 {
		return badPairFlags(pairs[0].Segment[0].QName)
	}

	if err := consensus.Trim(pairs, arena, stats); err != nil {
		return err
	}

	var cons [2]consensus.Read
	for slot := 0; slot < 2; slot++ {
		c, err := consensus.Compute(pairs, slot, consensus.Sum, false, arena, stats)
		if err != nil {
			return err
		}
		cons[slot] = c
	}
	return consensus.Emit(w, &pairs[0], cons, len(pairs), opts.MinFamilySize)
}

// collapseCluster folds an optical-duplicate cluster into a single
// representative pair via the max-aggregation consensus sub-routine
// of spec §4.4(c)/§4.6, contributing that representative back to the
// outer family.
func collapseCluster(cluster []pair.ReadPair, arena *consensus.Arena, stats *dedupestats.Statistics) (pair.ReadPair, error) {
	var cons [2]consensus.Read
	for slot := 0; slot < 2; slot++ {
		c, err := consensus.Compute(cluster, slot, consensus.Max, true, arena, stats)
		if err != nil {
			return pair.ReadPair{}, err
		}
		cons[slot] = c
	}
	rep := cluster[0]
	rep.Segment[0].Seq, rep.Segment[0].Qual = cons[0].Seq, cons[0].Qual
	rep.Segment[1].Seq, rep.Segment[1].Qual = cons[1].Seq, cons[1].Qual
	return rep, nil
}

func correctBarcodes(p *pair.ReadPair, corrector *umicorrect.SnapCorrector) {
	for i := range p.Segment {
		seg := &p.Segment[i]
		if seg.BarcodeA != nil {
			corrected, _, _ := corrector.CorrectUMI(string(seg.BarcodeA))
			seg.BarcodeA = []byte(corrected)
		}
		if seg.BarcodeB != nil {
			corrected, _, _ := corrector.CorrectUMI(string(seg.BarcodeB))
			seg.BarcodeB = []byte(corrected)
		}
	}
}
