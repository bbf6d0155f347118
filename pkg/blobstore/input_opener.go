package blobstore

import (
	"context"
	"io"
	"io/ioutil"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/buildbarn/bb-treehash/pkg/blobstore/buffer"
	"github.com/buildbarn/bb-treehash/pkg/util"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Bucket drivers that may be referenced through URLs.
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// InputOpener opens named inputs for hashing.
type InputOpener interface {
	Open(ctx context.Context, name string) (buffer.ChunkReader, error)
}

// BucketOpener opens a storage bucket by URL. blob.OpenBucket is the
// default implementation.
type BucketOpener func(ctx context.Context, bucketURL string) (*blob.Bucket, error)

type inputOpener struct {
	stdin          io.Reader
	bucketOpener   BucketOpener
	chunkPolicy    buffer.ChunkPolicy
	maximumRetries int
}

// NewInputOpener creates an InputOpener that supports three kinds of
// names:
//
//   - "-", referring to standard input,
//   - URLs such as "s3://bucket/key?region=eu-west-1", referring to an
//     object in a storage bucket supported by gocloud.dev,
//   - anything else, referring to a local file.
//
// Reads from storage buckets that fail with a transient error are
// resumed up to maximumRetries times.
func NewInputOpener(stdin io.Reader, bucketOpener BucketOpener, chunkPolicy buffer.ChunkPolicy, maximumRetries int) InputOpener {
	return &inputOpener{
		stdin:          stdin,
		bucketOpener:   bucketOpener,
		chunkPolicy:    chunkPolicy,
		maximumRetries: maximumRetries,
	}
}

func (o *inputOpener) Open(ctx context.Context, name string) (buffer.ChunkReader, error) {
	if name == "-" {
		return buffer.NewReaderChunkReader(ioutil.NopCloser(o.stdin), o.chunkPolicy), nil
	}
	if strings.Contains(name, "://") {
		return o.openBucketObject(ctx, name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, util.StatusWrapfWithCode(err, convertOSErrorCode(err), "Failed to open %#v", name)
	}
	return buffer.NewReaderChunkReader(f, o.chunkPolicy), nil
}

func convertOSErrorCode(err error) codes.Code {
	switch {
	case os.IsNotExist(err):
		return codes.NotFound
	case os.IsPermission(err):
		return codes.PermissionDenied
	default:
		return codes.Unavailable
	}
}

func convertGCErrorCode(err error) codes.Code {
	switch gcerrors.Code(err) {
	case gcerrors.NotFound:
		return codes.NotFound
	case gcerrors.PermissionDenied:
		return codes.PermissionDenied
	case gcerrors.InvalidArgument:
		return codes.InvalidArgument
	default:
		return codes.Unavailable
	}
}

// splitObjectURL splits the URL of an object into the URL of the bucket
// and the key of the object in the bucket. For local directories, the
// last path component is used as the key. For all other schemes, the
// host name is the bucket and the path is the key.
func splitObjectURL(name string) (string, string, error) {
	u, err := url.Parse(name)
	if err != nil {
		return "", "", util.StatusWrapfWithCode(err, codes.InvalidArgument, "Invalid object URL %#v", name)
	}
	var key string
	if u.Scheme == "file" {
		key = path.Base(u.Path)
		u.Path = path.Dir(u.Path)
	} else {
		key = strings.TrimPrefix(u.Path, "/")
		u.Path = ""
	}
	if key == "" || key == "." || key == "/" {
		return "", "", status.Errorf(codes.InvalidArgument, "Object URL %#v does not contain a key", name)
	}
	return u.String(), key, nil
}

func (o *inputOpener) openBucketObject(ctx context.Context, name string) (buffer.ChunkReader, error) {
	bucketURL, key, err := splitObjectURL(name)
	if err != nil {
		return nil, err
	}
	bucket, err := o.bucketOpener(ctx, bucketURL)
	if err != nil {
		return nil, util.StatusWrapfWithCode(err, convertGCErrorCode(err), "Failed to open bucket %#v", bucketURL)
	}

	// Fail early if the object does not exist, as opposed to
	// returning the error upon the first read.
	if _, err := bucket.Attributes(ctx, key); err != nil {
		bucket.Close()
		return nil, util.StatusWrapfWithCode(err, convertGCErrorCode(err), "Failed to obtain attributes of %#v", name)
	}

	return &bucketChunkReader{
		ChunkReader: buffer.NewErrorHandlingChunkReader(
			func(offset int64) (buffer.ChunkReader, error) {
				r, err := bucket.NewRangeReader(ctx, key, offset, -1, nil)
				if err != nil {
					return nil, util.StatusWrapfWithCode(err, convertGCErrorCode(err), "Failed to read %#v at offset %d", name, offset)
				}
				return buffer.NewReaderChunkReader(r, o.chunkPolicy), nil
			},
			buffer.NewRetryingErrorHandler(o.maximumRetries)),
		bucket: bucket,
	}, nil
}

// bucketChunkReader closes the bucket once reading completes.
type bucketChunkReader struct {
	buffer.ChunkReader
	bucket *blob.Bucket
}

func (r *bucketChunkReader) Close() {
	r.ChunkReader.Close()
	r.bucket.Close()
}
