package util_test

import (
	"context"
	"errors"
	"testing"

	"github.com/buildbarn/bb-treehash/pkg/testutil"
	"github.com/buildbarn/bb-treehash/pkg/util"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusWrap(t *testing.T) {
	testutil.RequireEqualStatus(
		t,
		status.Error(codes.NotFound, "Failed to open \"input\": File not found"),
		util.StatusWrapf(status.Error(codes.NotFound, "File not found"), "Failed to open %#v", "input"))
	testutil.RequireEqualStatus(
		t,
		status.Error(codes.Unavailable, "Failed to read input: broken pipe"),
		util.StatusWrapWithCode(errors.New("broken pipe"), codes.Unavailable, "Failed to read input"))
}

func TestStatusFromContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, util.StatusFromContext(ctx))
	cancel()
	testutil.RequireEqualStatus(t, status.Error(codes.Canceled, "context canceled"), util.StatusFromContext(ctx))
}
