// Package ioloc resolves an input or output location named on the
// command line, which may be a local filesystem path, "-" for
// stdin/stdout, or an s3://bucket/key URI, to a concrete local path
// cmd/elduderino's pipeline can operate on. It uses the same
// aws-sdk-go dependency the teacher repo already pulls in for its
// S3-backed BAM pipelines.
package ioloc

import (
	"io/ioutil"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/grailbio/base/errors"
)

// IsS3 reports whether loc names an s3://bucket/key location.
func IsS3(loc string) bool {
	return strings.HasPrefix(loc, "s3://")
}

func splitS3(loc string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(loc, "s3://")
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return "", "", errors.E(errors.Invalid, "malformed s3:// location, missing key", loc)
	}
	return rest[:slash], rest[slash+1:], nil
}

// ResolveInput returns a local path that can be opened with
// samtext.LoadBuffer for the given input location. For a local path or
// "-", loc is returned unchanged. For an s3:// URI, the object is
// downloaded to a scratch file under dir and that file's path is
// returned, along with a cleanup func the caller should defer.
func ResolveInput(loc, dir string) (localPath string, cleanup func(), err error) {
	if !IsS3(loc) {
		return loc, func() {}, nil
	}
	bucket, key, err := splitS3(loc)
	if err != nil {
		return "", nil, err
	}
	f, err := ioutil.TempFile(dir, "elduderino-input-*")
	if err != nil {
		return "", nil, errors.E(err, "creating scratch file for", loc)
	}
	cleanup = func() { os.Remove(f.Name()) }
	sess, err := session.NewSession(aws.NewConfig())
	if err != nil {
		f.Close()
		cleanup()
		return "", nil, errors.E(err, "creating AWS session")
	}
	downloader := s3manager.NewDownloader(sess)
	if _, err := downloader.Download(f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		f.Close()
		cleanup()
		return "", nil, errors.E(err, "downloading", loc)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, errors.E(err, "closing scratch file for", loc)
	}
	return f.Name(), cleanup, nil
}

// OutputSink is a local file (or stdout) that Close, for an s3://
// destination, uploads to its final location before releasing the
// underlying scratch file.
type OutputSink struct {
	*os.File
	upload func(f *os.File) error
	tmp    string
}

// Close flushes and, for an s3:// destination, uploads the sink's
// contents before removing the scratch file.
func (s *OutputSink) Close() error {
	if s.upload == nil {
		return s.File.Close()
	}
	if _, err := s.File.Seek(0, 0); err != nil {
		s.File.Close()
		return errors.E(err, "rewinding scratch file for upload")
	}
	uploadErr := s.upload(s.File)
	s.File.Close()
	os.Remove(s.tmp)
	return uploadErr
}

// ResolveOutput returns a writer for the given output location: stdout
// for "-", a direct local file for a local path, or a scratch file
// that is uploaded to S3 on Close for an s3:// URI.
func ResolveOutput(loc, dir string) (*OutputSink, error) {
	if loc == "-" {
		return &OutputSink{File: os.Stdout}, nil
	}
	if !IsS3(loc) {
		f, err := os.Create(loc)
		if err != nil {
			return nil, errors.E(err, "creating output", loc)
		}
		return &OutputSink{File: f}, nil
	}

	bucket, key, err := splitS3(loc)
	if err != nil {
		return nil, err
	}
	f, err := ioutil.TempFile(dir, "elduderino-output-*")
	if err != nil {
		return nil, errors.E(err, "creating scratch file for", loc)
	}
	sess, err := session.NewSession(aws.NewConfig())
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, errors.E(err, "creating AWS session")
	}
	uploader := s3manager.NewUploader(sess)
	upload := func(body *os.File) error {
		_, err := uploader.Upload(&s3manager.UploadInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   body,
		})
		if err != nil {
			return errors.E(err, "uploading", loc)
		}
		return nil
	}
	return &OutputSink{File: f, upload: upload, tmp: f.Name()}, nil
}
