package digest

import (
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Digest holds the outcome of hashing a stream of data: the hash, the
// size of the stream and the name of the function that computed it.
// The name of the function is either the name of a plain hashing
// algorithm (e.g., "sha2.256") or a step description that includes the
// hash tree parameters (e.g., "tree.1024.0:tiger").
//
// Because Digest objects are frequently compared or used as keys, this
// implementation immediately constructs a key representation upon
// creation. All functions that extract individual components operate
// directly on the key format.
type Digest struct {
	value string
}

// BadDigest is a default instance of Digest. It can, for example, be
// used as a function return value for error cases.
var BadDigest Digest

// Unpack the individual hash, size and function fields from the string
// representation stored inside the Digest object.
func (d Digest) unpack() (int, int64, int) {
	// Extract the leading hash.
	hashEnd := 0
	for d.value[hashEnd] != '-' {
		hashEnd++
	}

	// Extract the size stored in the middle.
	sizeBytes := int64(0)
	sizeBytesEnd := hashEnd + 1
	for d.value[sizeBytesEnd] != '-' {
		sizeBytes = sizeBytes*10 + int64(d.value[sizeBytesEnd]-'0')
		sizeBytesEnd++
	}

	return hashEnd, sizeBytes, sizeBytesEnd
}

// NewDigest constructs a Digest object from a function name, a
// lower case hexadecimal hash and a stream size. The instance returned
// by this function is guaranteed to be non-degenerate.
func NewDigest(function string, hash string, sizeBytes int64) (Digest, error) {
	if function == "" {
		return BadDigest, status.Error(codes.InvalidArgument, "No digest function provided")
	}

	// Validate the size.
	if sizeBytes < 0 {
		return BadDigest, status.Errorf(codes.InvalidArgument, "Invalid digest size: %d bytes", sizeBytes)
	}

	// Validate the hash.
	if l := len(hash); l == 0 || l%2 != 0 {
		return BadDigest, status.Errorf(codes.InvalidArgument, "Invalid digest hash length: %d characters", l)
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return BadDigest, status.Errorf(codes.InvalidArgument, "Non-hexadecimal character in digest hash: %#U", c)
		}
	}
	return newDigestUnchecked(function, hash, sizeBytes), nil
}

func newDigestUnchecked(function string, hash string, sizeBytes int64) Digest {
	return Digest{
		value: fmt.Sprintf("%s-%d-%s", hash, sizeBytes, function),
	}
}

// MustNewDigest constructs a Digest similar to NewDigest, but never
// returns an error. Instead, execution will abort if the resulting
// instance would be degenerate. Useful for unit testing.
func MustNewDigest(function string, hash string, sizeBytes int64) Digest {
	d, err := NewDigest(function, hash, sizeBytes)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDigestFromPartialDigest constructs a Digest object from a function
// name and a Remote Execution protocol digest object.
func NewDigestFromPartialDigest(function string, partialDigest *remoteexecution.Digest) (Digest, error) {
	if partialDigest == nil {
		return BadDigest, status.Error(codes.InvalidArgument, "No digest provided")
	}
	return NewDigest(function, partialDigest.Hash, partialDigest.SizeBytes)
}

// GetPartialDigest encodes the digest into the format used by the
// Remote Execution protocol.
func (d Digest) GetPartialDigest() *remoteexecution.Digest {
	hashEnd, sizeBytes, _ := d.unpack()
	return &remoteexecution.Digest{
		Hash:      d.value[:hashEnd],
		SizeBytes: sizeBytes,
	}
}

// GetFunction returns the name of the function that computed the
// digest.
func (d Digest) GetFunction() string {
	_, _, sizeBytesEnd := d.unpack()
	return d.value[sizeBytesEnd+1:]
}

// GetHashBytes returns the hash of the object as a slice of bytes.
func (d Digest) GetHashBytes() []byte {
	hashBytes, err := hex.DecodeString(d.GetHashString())
	if err != nil {
		panic("Failed to decode digest hash, even though its contents have already been validated")
	}
	return hashBytes
}

// GetHashString returns the hash of the object as a lower case
// hexadecimal string.
func (d Digest) GetHashString() string {
	hashEnd, _, _ := d.unpack()
	return d.value[:hashEnd]
}

// GetSizeBytes returns the size of the hashed stream, in bytes.
func (d Digest) GetSizeBytes() int64 {
	_, sizeBytes, _ := d.unpack()
	return sizeBytes
}

// Format the hash of the digest using a given output format.
func (d Digest) Format(format Format) string {
	return format.Encode(d.GetHashBytes())
}

func (d Digest) String() string {
	return d.value
}

// Generator is a writer that may be used to compute digests of streams
// of data, keeping track of the number of bytes written.
type Generator struct {
	function    string
	partialHash hash.Hash
	sizeBytes   int64
}

// NewGenerator creates a Generator that writes data into an arbitrary
// hash.Hash, such as a hash tree. The function name is stored in the
// resulting digests.
func NewGenerator(function string, partialHash hash.Hash) *Generator {
	return &Generator{
		function:    function,
		partialHash: partialHash,
	}
}

// Write a chunk of data into the state of the Generator.
func (dg *Generator) Write(p []byte) (int, error) {
	n, err := dg.partialHash.Write(p)
	dg.sizeBytes += int64(n)
	return n, err
}

// Sum creates a new digest based on the data written into the
// Generator. It is permitted to continue writing data afterwards.
func (dg *Generator) Sum() Digest {
	return newDigestUnchecked(
		dg.function,
		hex.EncodeToString(dg.partialHash.Sum(nil)),
		dg.sizeBytes)
}

// Reset the Generator, discarding all data written.
func (dg *Generator) Reset() {
	dg.partialHash.Reset()
	dg.sizeBytes = 0
}

// GetFunctionFromString splits a function name of the form
// "algorithm[.parameters]" and looks up the corresponding Function.
func GetFunctionFromString(s string) (Function, error) {
	name, parameters := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		name, parameters = s[:i], s[i+1:]
	}
	return NewFunction(name, parameters)
}
