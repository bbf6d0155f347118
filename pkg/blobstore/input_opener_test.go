package blobstore_test

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/buildbarn/bb-treehash/pkg/blobstore"
	"github.com/buildbarn/bb-treehash/pkg/blobstore/buffer"
	"github.com/buildbarn/bb-treehash/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func readAll(t *testing.T, r buffer.ChunkReader) []byte {
	var data []byte
	for {
		chunk, err := r.Read()
		if err == io.EOF {
			r.Close()
			return data
		}
		require.NoError(t, err)
		data = append(data, chunk...)
	}
}

func TestInputOpener(t *testing.T) {
	ctx := context.Background()

	bucket := memblob.OpenBucket(nil)
	require.NoError(t, bucket.WriteAll(ctx, "dir/object", []byte("Bucket contents"), nil))
	var bucketURLs []string
	bucketOpener := func(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
		bucketURLs = append(bucketURLs, bucketURL)
		return bucket, nil
	}

	inputOpener := blobstore.NewInputOpener(
		bytes.NewBufferString("Standard input"),
		bucketOpener,
		buffer.ChunkSizeAtMost(4),
		3)

	t.Run("Stdin", func(t *testing.T) {
		r, err := inputOpener.Open(ctx, "-")
		require.NoError(t, err)
		require.Equal(t, []byte("Standard input"), readAll(t, r))
	})

	t.Run("File", func(t *testing.T) {
		dir, err := ioutil.TempDir("", "input_opener")
		require.NoError(t, err)
		defer os.RemoveAll(dir)
		p := filepath.Join(dir, "file")
		require.NoError(t, ioutil.WriteFile(p, []byte("File contents"), 0o644))

		r, err := inputOpener.Open(ctx, p)
		require.NoError(t, err)
		require.Equal(t, []byte("File contents"), readAll(t, r))
	})

	t.Run("FileNotFound", func(t *testing.T) {
		_, err := inputOpener.Open(ctx, "/nonexistent/file")
		require.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("BucketObject", func(t *testing.T) {
		r, err := inputOpener.Open(ctx, "mem://bucket/dir/object?param=1")
		require.NoError(t, err)
		require.Equal(t, []byte("Bucket contents"), readAll(t, r))
		require.Equal(t, []string{"mem://bucket?param=1"}, bucketURLs)
	})

	t.Run("BucketObjectNotFound", func(t *testing.T) {
		bucket = memblob.OpenBucket(nil)
		_, err := inputOpener.Open(ctx, "mem://bucket/nonexistent")
		require.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("NoKey", func(t *testing.T) {
		_, err := inputOpener.Open(ctx, "s3://bucket/")
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Object URL \"s3://bucket/\" does not contain a key"), err)
	})
}
