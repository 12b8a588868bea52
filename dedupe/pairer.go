package dedupe

import (
	"github.com/grailbio/elduderino/dedupe/pair"
	"github.com/grailbio/elduderino/internal/bucket"
	"github.com/grailbio/elduderino/samtext"
)

// pairer is the mate pairer of spec §4.2: a mapping from read-name
// bytes to the first-seen mate, yielding a ReadPair when the second
// mate arrives. It fails if the same name is ever seen a third time.
type pairer struct {
	names   *bucket.Map
	fileIdx uint64
}

func newPairer() *pairer {
	return &pairer{names: bucket.NewMap(bucket.SeaHash, 1024)}
}

// Add records seg's sighting. If seg is the first sighting of its
// read name, Add stores it and returns ok=false. If seg is the second
// sighting, Add returns the completed ReadPair and ok=true. A third
// sighting of the same name is reported as ErrUnexpectedThirdMate.
func (pr *pairer) Add(seg samtext.Segment) (rp pair.ReadPair, ok bool, err error) {
	idx := pr.fileIdx
	pr.fileIdx++

	if stored, found := pr.names.Pop(seg.QName); found {
		return pair.NewReadPair(stored.(samtext.Segment), seg, idx), true, nil
	}
	if !pr.names.Put(seg.QName, seg) {
		return pair.ReadPair{}, false, unexpectedThirdMate(seg.QName)
	}
	return pair.ReadPair{}, false, nil
}
