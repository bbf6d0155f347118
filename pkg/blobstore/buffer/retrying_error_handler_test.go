package buffer_test

import (
	"testing"

	"github.com/buildbarn/bb-treehash/pkg/blobstore/buffer"
	"github.com/buildbarn/bb-treehash/pkg/testutil"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRetryingErrorHandler(t *testing.T) {
	t.Run("Unavailable", func(t *testing.T) {
		errorHandler := buffer.NewRetryingErrorHandler(2)
		defer errorHandler.Done()

		require.NoError(t, errorHandler.OnError(status.Error(codes.Unavailable, "Connection reset")))
		require.NoError(t, errorHandler.OnError(status.Error(codes.Unavailable, "Connection reset")))
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.Unavailable, "Maximum number of retries reached: Connection reset"),
			errorHandler.OnError(status.Error(codes.Unavailable, "Connection reset")))
	})

	t.Run("NonTransient", func(t *testing.T) {
		errorHandler := buffer.NewRetryingErrorHandler(2)
		defer errorHandler.Done()

		testutil.RequireEqualStatus(
			t,
			status.Error(codes.NotFound, "Object not found"),
			errorHandler.OnError(status.Error(codes.NotFound, "Object not found")))
	})

	t.Run("NoRetries", func(t *testing.T) {
		errorHandler := buffer.NewRetryingErrorHandler(0)
		defer errorHandler.Done()

		testutil.RequireEqualStatus(
			t,
			status.Error(codes.Unavailable, "Maximum number of retries reached: Connection reset"),
			errorHandler.OnError(status.Error(codes.Unavailable, "Connection reset")))
	})
}
