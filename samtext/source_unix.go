// +build linux darwin

package samtext

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/grailbio/base/errors"
)

// mmapFile memory-maps path read-only, mirroring the original C
// implementation's mmap-backed input buffer. The returned closer must
// be called once the caller is done with all Segments borrowed from
// the mapping.
func mmapFile(path string) (data []byte, closer func() error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.E(err, "opening SAM input", path)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, errors.E(err, "stat SAM input", path)
	}
	size := fi.Size()
	if size == 0 {
		return nil, func() error { return nil }, nil
	}

	data, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, errors.E(err, "mmap SAM input", path)
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
