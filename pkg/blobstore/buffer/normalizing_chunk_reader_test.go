package buffer_test

import (
	"io"
	"testing"

	"github.com/buildbarn/bb-treehash/internal/mock"
	"github.com/buildbarn/bb-treehash/pkg/blobstore/buffer"
	"github.com/buildbarn/bb-treehash/pkg/testutil"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNormalizingChunkReader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Exactly", func(t *testing.T) {
		// Small chunks should be concatenated, while large
		// chunks should be split up.
		base := mock.NewMockChunkReader(ctrl)
		gomock.InOrder(
			base.EXPECT().Read().Return([]byte("He"), nil),
			base.EXPECT().Read().Return(nil, nil),
			base.EXPECT().Read().Return([]byte("llo, world"), nil),
			base.EXPECT().Read().Return([]byte("!"), nil),
			base.EXPECT().Read().Return(nil, io.EOF),
		)
		r := buffer.NewNormalizingChunkReader(base, buffer.ChunkSizeExactly(4))

		for _, expected := range []string{"Hell", "o, w", "orld", "!"} {
			chunk, err := r.Read()
			require.NoError(t, err)
			require.Equal(t, []byte(expected), chunk)
		}
		_, err := r.Read()
		require.Equal(t, io.EOF, err)
		_, err = r.Read()
		require.Equal(t, io.EOF, err)

		base.EXPECT().Close()
		r.Close()
	})

	t.Run("AtMost", func(t *testing.T) {
		base := mock.NewMockChunkReader(ctrl)
		gomock.InOrder(
			base.EXPECT().Read().Return([]byte("He"), nil),
			base.EXPECT().Read().Return([]byte("llo"), nil),
			base.EXPECT().Read().Return(nil, status.Error(codes.Internal, "Disk on fire")),
		)
		r := buffer.NewNormalizingChunkReader(base, buffer.ChunkSizeAtMost(2))

		for _, expected := range []string{"He", "ll", "o"} {
			chunk, err := r.Read()
			require.NoError(t, err)
			require.Equal(t, []byte(expected), chunk)
		}
		_, err := r.Read()
		testutil.RequireEqualStatus(t, status.Error(codes.Internal, "Disk on fire"), err)
	})
}
