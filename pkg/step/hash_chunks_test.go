package step_test

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"testing"

	"github.com/buildbarn/bb-treehash/internal/mock"
	"github.com/buildbarn/bb-treehash/pkg/blobstore/buffer"
	"github.com/buildbarn/bb-treehash/pkg/step"
	"github.com/buildbarn/bb-treehash/pkg/testutil"
	"github.com/golang/mock/gomock"
	"github.com/lazybeaver/xorshift"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newSteps(t *testing.T, descriptions ...string) []*step.Step {
	var steps []*step.Step
	for _, description := range descriptions {
		s, err := step.NewStepFromString(description)
		require.NoError(t, err)
		steps = append(steps, s)
	}
	return steps
}

func TestHashChunks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	descriptions := []string{"sha1", "tree:tiger", "tree.4096.2:sha2.512:base64", "blake3:base58"}

	t.Run("Success", func(t *testing.T) {
		random := xorshift.NewXorShift64Star(42)
		data := make([]byte, 100000)
		for i := range data {
			data[i] = byte(random.Next())
		}

		// Every step should yield the same digest as when data
		// is written into it directly.
		steps := newSteps(t, descriptions...)
		r := buffer.NewReaderChunkReader(ioutil.NopCloser(bytes.NewReader(data)), buffer.ChunkSizeDontCare)
		require.NoError(t, step.HashChunks(context.Background(), r, steps))

		for i, s := range newSteps(t, descriptions...) {
			s.Write(data)
			require.Equal(t, s.Sum(), steps[i].Sum())
			require.Equal(t, int64(len(data)), steps[i].GetDigest().GetSizeBytes())
		}
	})

	t.Run("Empty", func(t *testing.T) {
		steps := newSteps(t, descriptions...)
		require.NoError(t, step.HashChunks(context.Background(), buffer.NewErrorChunkReader(io.EOF), steps))
		require.Equal(t, "DA39A3EE5E6B4B0D3255BFEF95601890AFD80709", steps[0].Sum())
	})

	t.Run("ReadFailure", func(t *testing.T) {
		r := mock.NewMockChunkReader(ctrl)
		gomock.InOrder(
			r.EXPECT().Read().Return([]byte("Hello"), nil),
			r.EXPECT().Read().Return(nil, status.Error(codes.Unavailable, "Connection reset")),
		)
		err := step.HashChunks(context.Background(), r, newSteps(t, descriptions...))
		testutil.RequireEqualStatus(t, status.Error(codes.Unavailable, "Connection reset"), err)
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := mock.NewMockChunkReader(ctrl)
		err := step.HashChunks(ctx, r, newSteps(t, descriptions...))
		testutil.RequireEqualStatus(t, status.Error(codes.Canceled, "context canceled"), err)
	})

	t.Run("NoSteps", func(t *testing.T) {
		r := mock.NewMockChunkReader(ctrl)
		gomock.InOrder(
			r.EXPECT().Read().Return([]byte("Hello"), nil),
			r.EXPECT().Read().Return(nil, io.EOF),
		)
		require.NoError(t, step.HashChunks(context.Background(), r, nil))
	})
}
