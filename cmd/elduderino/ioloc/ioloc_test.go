package ioloc

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsS3(t *testing.T) {
	assert.True(t, IsS3("s3://bucket/key"))
	assert.False(t, IsS3("/local/path"))
	assert.False(t, IsS3("-"))
}

func TestSplitS3(t *testing.T) {
	bucket, key, err := splitS3("s3://my-bucket/path/to/object.sam")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "path/to/object.sam", key)

	_, _, err = splitS3("s3://missing-key-bucket")
	assert.Error(t, err)
}

func TestResolveInputLocalPathPassesThrough(t *testing.T) {
	localPath, cleanup, err := ResolveInput("/some/local/file.sam", "/tmp")
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, "/some/local/file.sam", localPath)
}

func TestResolveOutputLocalPathCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.fastq")

	sink, err := ResolveOutput(path, dir)
	require.NoError(t, err)
	_, err = sink.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestResolveOutputStdoutSink(t *testing.T) {
	sink, err := ResolveOutput("-", "/tmp")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, sink.File)
}
