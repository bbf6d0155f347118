package step

import (
	"fmt"
	"hash"
	"strconv"
	"strings"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/buildbarn/bb-treehash/pkg/digest"
	"github.com/buildbarn/bb-treehash/pkg/digest/hashtree"
	"github.com/buildbarn/bb-treehash/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Step computes a single digest of a stream and formats it. A step
// either applies a hashing algorithm to the stream directly, or
// computes the root digest of a hash tree that uses the hashing
// algorithm for both leaves and interior nodes.
//
// Steps are described using strings of the following form:
//
//	["tree" ["." blocksize ["." levels]] ":"] algorithm ["." params] [":" format]
//
// Examples are "sha1", "tree:tiger:base32" and "tree.4096.2:sha2.512".
type Step struct {
	function             digest.Function
	isTree               bool
	blockSizeBytes       int
	maximumStorageLevels int
	format               digest.Format
	generator            *digest.Generator
}

// Parser of step descriptions. Its fields provide the values of
// optional components that are omitted from descriptions.
type Parser struct {
	DefaultBlockSizeBytes       int
	DefaultMaximumStorageLevels int
	DefaultFormat               string

	// Largest block size that hash tree steps may use. Blocks are
	// buffered in memory, so this bounds the memory usage of a
	// step. Zero means no limit.
	MaximumBlockSizeBytes int

	// Let hashers of steps report Prometheus metrics.
	EnableMetrics bool
}

// DefaultParser uses blocks of 1 KiB, no additional storage levels and
// the hexadecimal output format. Blocks may be at most 16 MiB in size.
var DefaultParser = Parser{
	DefaultBlockSizeBytes:       1024,
	DefaultMaximumStorageLevels: 0,
	DefaultFormat:               "hex",
	MaximumBlockSizeBytes:       16 * 1024 * 1024,
}

// NewStepFromString parses a step description using DefaultParser.
func NewStepFromString(s string) (*Step, error) {
	return DefaultParser.NewStepFromString(s)
}

func parseTreeParameters(s string, blockSizeBytes *int, maximumStorageLevels *int) error {
	fields := strings.Split(s, ".")
	if fields[0] != "tree" || len(fields) > 3 {
		return status.Errorf(codes.InvalidArgument, "Expected \"tree[.blocksize[.levels]]\", but got %#v", s)
	}
	if len(fields) > 1 {
		v, err := strconv.ParseInt(fields[1], 10, 0)
		if err != nil {
			return status.Errorf(codes.InvalidArgument, "Invalid block size %#v: expected numerical digits", fields[1])
		}
		*blockSizeBytes = int(v)
	}
	if len(fields) > 2 {
		v, err := strconv.ParseInt(fields[2], 10, 0)
		if err != nil {
			return status.Errorf(codes.InvalidArgument, "Invalid number of storage levels %#v: expected numerical digits", fields[2])
		}
		*maximumStorageLevels = int(v)
	}
	return nil
}

// NewStepFromString parses a step description. Failures are reported
// as InvalidArgument errors that contain the description.
func (p *Parser) NewStepFromString(s string) (*Step, error) {
	step, err := p.newStepFromString(s)
	if err != nil {
		return nil, util.StatusWrapf(err, "Invalid step %#v", s)
	}
	return step, nil
}

func (p *Parser) newStepFromString(s string) (*Step, error) {
	fields := strings.Split(s, ":")
	isTree := false
	blockSizeBytes := p.DefaultBlockSizeBytes
	maximumStorageLevels := p.DefaultMaximumStorageLevels
	if len(fields) > 1 && (fields[0] == "tree" || strings.HasPrefix(fields[0], "tree.")) {
		if err := parseTreeParameters(fields[0], &blockSizeBytes, &maximumStorageLevels); err != nil {
			return nil, err
		}
		isTree = true
		fields = fields[1:]
	}

	formatName := p.DefaultFormat
	switch len(fields) {
	case 1:
	case 2:
		formatName = fields[1]
	default:
		return nil, status.Errorf(codes.InvalidArgument, "Unexpected %#v after output format", strings.Join(fields[2:], ":"))
	}
	if fields[0] == "" {
		return nil, status.Error(codes.InvalidArgument, "Expected hashing algorithm name")
	}

	function, err := digest.GetFunctionFromString(fields[0])
	if err != nil {
		return nil, err
	}
	return p.NewStep(function, isTree, blockSizeBytes, maximumStorageLevels, formatName)
}

// NewStep creates a Step from its individual components. The block
// size and maximum number of storage levels are ignored if isTree is
// false.
func (p *Parser) NewStep(function digest.Function, isTree bool, blockSizeBytes int, maximumStorageLevels int, formatName string) (*Step, error) {
	var format digest.Format
	var err error
	if isTree {
		format, err = digest.NewFormat(formatName, nil)
	} else {
		format, err = digest.NewFormat(formatName, &function)
	}
	if err != nil {
		return nil, err
	}

	if isTree && p.MaximumBlockSizeBytes > 0 && blockSizeBytes > p.MaximumBlockSizeBytes {
		return nil, status.Errorf(codes.InvalidArgument, "Block size must be at most %d bytes, while %d bytes was provided", p.MaximumBlockSizeBytes, blockSizeBytes)
	}

	step := &Step{
		function:             function,
		isTree:               isTree,
		blockSizeBytes:       blockSizeBytes,
		maximumStorageLevels: maximumStorageLevels,
		format:               format,
	}
	var h hash.Hash
	kind := digest.PlainHasher
	if isTree {
		tree, err := hashtree.New(function.NewHash(), blockSizeBytes, maximumStorageLevels)
		if err != nil {
			return nil, err
		}
		h = tree
		kind = digest.TreeHasher
	} else {
		h = function.NewHash()
	}
	if p.EnableMetrics {
		h = digest.NewMetricsHasher(h, function, kind)
	}
	step.generator = digest.NewGenerator(step.GetFunctionName(), h)
	return step, nil
}

// Write data into the step.
func (s *Step) Write(p []byte) (int, error) {
	return s.generator.Write(p)
}

// GetDigest returns the digest of the data written so far.
func (s *Step) GetDigest() digest.Digest {
	return s.generator.Sum()
}

// Sum returns the digest of the data written so far, converted to the
// output format of the step.
func (s *Step) Sum() string {
	return s.GetDigest().Format(s.format)
}

// GetRemoteExecutionDigest returns the digest of the data written so
// far in the format used by the Remote Execution protocol. Hash trees
// and algorithms that the protocol does not define yield nil.
func (s *Step) GetRemoteExecutionDigest() *remoteexecution.Digest {
	if s.isTree || s.function.GetRemoteExecutionDigestFunction() == remoteexecution.DigestFunction_UNKNOWN {
		return nil
	}
	return s.GetDigest().GetPartialDigest()
}

// Reset the step, so that it may be used to hash another stream.
func (s *Step) Reset() {
	s.generator.Reset()
}

// GetFunctionName returns the description of the step without the
// output format, such as "tree.1024.0:tiger". This name is stored in
// digests computed by the step.
func (s *Step) GetFunctionName() string {
	if s.isTree {
		return fmt.Sprintf("tree.%d.%d:%s", s.blockSizeBytes, s.maximumStorageLevels, s.function)
	}
	return s.function.String()
}

// GetFormat returns the output format of the step.
func (s *Step) GetFormat() digest.Format {
	return s.format
}

// String returns the canonical description of the step, in which all
// optional components are filled in.
func (s *Step) String() string {
	return s.GetFunctionName() + ":" + s.format.String()
}
