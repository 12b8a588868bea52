// +build !linux,!darwin

package samtext

import "io/ioutil"

// mmapFile falls back to a plain read on platforms without a mmap
// syscall wired up here.
func mmapFile(path string) (data []byte, closer func() error, err error) {
	data, err = ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
