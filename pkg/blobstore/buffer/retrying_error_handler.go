package buffer

import (
	"github.com/buildbarn/bb-treehash/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type retryingErrorHandler struct {
	remainingRetries int
}

// NewRetryingErrorHandler creates an ErrorHandler that permits a
// stream to be reopened a limited number of times, but only for
// transient failures.
func NewRetryingErrorHandler(maximumRetries int) ErrorHandler {
	return &retryingErrorHandler{
		remainingRetries: maximumRetries,
	}
}

func (eh *retryingErrorHandler) OnError(err error) error {
	if status.Code(err) != codes.Unavailable {
		return err
	}
	if eh.remainingRetries <= 0 {
		return util.StatusWrap(err, "Maximum number of retries reached")
	}
	eh.remainingRetries--
	return nil
}

func (eh *retryingErrorHandler) Done() {}
