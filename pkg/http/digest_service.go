package http

import (
	"encoding/json"
	"net/http"

	"github.com/buildbarn/bb-treehash/pkg/blobstore/buffer"
	"github.com/buildbarn/bb-treehash/pkg/step"
	"github.com/buildbarn/bb-treehash/pkg/util"
	"github.com/golang/protobuf/jsonpb"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StepDigest is the digest computed by a single step, as returned by
// DigestService.
type StepDigest struct {
	Step   string `json:"step"`
	Digest string `json:"digest"`
	// Only set for algorithms defined by the Remote Execution
	// protocol, encoded as a build.bazel.remote.execution.v2.Digest.
	RemoteExecutionDigest json.RawMessage `json:"remote_execution_digest,omitempty"`
}

// DigestResponse is the JSON message returned by DigestService upon
// success.
type DigestResponse struct {
	SizeBytes int64        `json:"size_bytes"`
	Digests   []StepDigest `json:"digests"`
}

// ErrorResponse is the JSON message returned by DigestService upon
// failure.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DigestService is an HTTP service that hashes request bodies. Steps
// are provided through the "step" query parameter, which may be
// repeated to compute multiple digests of the same request body in a
// single pass.
type DigestService struct {
	parser        step.Parser
	authenticator Authenticator
	maximumSteps  int
	uuidGenerator func() (uuid.UUID, error)
	logger        logrus.FieldLogger
}

// NewDigestService creates a DigestService.
func NewDigestService(parser step.Parser, authenticator Authenticator, maximumSteps int, uuidGenerator func() (uuid.UUID, error), logger logrus.FieldLogger) *DigestService {
	return &DigestService{
		parser:        parser,
		authenticator: authenticator,
		maximumSteps:  maximumSteps,
		uuidGenerator: uuidGenerator,
		logger:        logger,
	}
}

// RegisterRoutes adds the routes of the service to a router.
func (s *DigestService) RegisterRoutes(router *mux.Router) {
	router.Handle("/api/v1/digest", s).Methods(http.MethodPost)
}

func (s *DigestService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID, err := s.uuidGenerator()
	if err != nil {
		writeError(w, util.StatusWrapWithCode(err, codes.Internal, "Failed to generate request ID"))
		return
	}
	w.Header().Set("X-Request-Id", requestID.String())
	logger := s.logger.WithFields(logrus.Fields{
		"request_id":  requestID.String(),
		"remote_addr": r.RemoteAddr,
	})

	response, err := s.digest(r)
	if err != nil {
		logger.WithField("code", status.Code(err).String()).Warn(status.Convert(err).Message())
		writeError(w, err)
		return
	}
	logger.WithField("size_bytes", response.SizeBytes).Info("Computed digests")
	writeJSON(w, http.StatusOK, response)
}

func (s *DigestService) digest(r *http.Request) (*DigestResponse, error) {
	defer r.Body.Close()

	if err := s.authenticator.Authenticate(r); err != nil {
		return nil, err
	}

	descriptions := r.URL.Query()["step"]
	if len(descriptions) == 0 {
		return nil, status.Error(codes.InvalidArgument, "No steps provided")
	}
	if len(descriptions) > s.maximumSteps {
		return nil, status.Errorf(codes.InvalidArgument, "At most %d steps may be provided, while %d were provided", s.maximumSteps, len(descriptions))
	}
	steps := make([]*step.Step, 0, len(descriptions))
	for _, description := range descriptions {
		st, err := s.parser.NewStepFromString(description)
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}

	chunkReader := buffer.NewReaderChunkReader(r.Body, buffer.ChunkSizeDontCare)
	if err := step.HashChunks(r.Context(), chunkReader, steps); err != nil {
		return nil, util.StatusWrap(err, "Failed to hash request body")
	}

	response := &DigestResponse{
		Digests: make([]StepDigest, 0, len(steps)),
	}
	marshaler := jsonpb.Marshaler{OrigName: true}
	for _, st := range steps {
		d := st.GetDigest()
		response.SizeBytes = d.GetSizeBytes()
		stepDigest := StepDigest{
			Step:   st.String(),
			Digest: d.Format(st.GetFormat()),
		}
		if partialDigest := st.GetRemoteExecutionDigest(); partialDigest != nil {
			encoded, err := marshaler.MarshalToString(partialDigest)
			if err != nil {
				return nil, util.StatusWrapWithCode(err, codes.Internal, "Failed to marshal Remote Execution digest")
			}
			stepDigest.RemoteExecutionDigest = json.RawMessage(encoded)
		}
		response.Digests = append(response.Digests, stepDigest)
	}
	return response, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	s := status.Convert(err)
	writeJSON(w, HTTPStatusFromCode(s.Code()), &ErrorResponse{
		Code:    s.Code().String(),
		Message: s.Message(),
	})
}
