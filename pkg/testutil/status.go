package testutil

import (
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/status"
)

// RequireEqualStatus asserts that two errors have the same gRPC status.
// Comparing status errors using require.Equal() is unreliable, as
// protobuf messages contain caches that are populated lazily.
func RequireEqualStatus(t *testing.T, expected error, actual error) {
	require.Truef(
		t,
		proto.Equal(status.Convert(expected).Proto(), status.Convert(actual).Proto()),
		"Expected status %s, got %s", status.Convert(expected).Proto(), status.Convert(actual).Proto())
}
