package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"sort"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/cxmcc/tiger"
	"github.com/jzelinskie/whirlpool"
	"github.com/multiformats/go-multihash"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/sha3"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Function is a hashing algorithm with all of its parameters bound,
// such as "sha2.256". It can be used to create any number of
// independent hash.Hash instances.
type Function struct {
	name           string
	newHash        func() hash.Hash
	sizeBytes      int
	digestFunction remoteexecution.DigestFunction_Value
	multihashCode  uint64
}

type algorithm struct {
	defaultParameters string
	variants          map[string]Function
}

func newBLAKE2b(sizeBytes int) func() hash.Hash {
	return func() hash.Hash {
		h, err := blake2b.New(sizeBytes, nil)
		if err != nil {
			panic("Failed to create BLAKE2b hasher without a key")
		}
		return h
	}
}

func newBLAKE3() hash.Hash {
	return blake3.New()
}

var algorithms = map[string]algorithm{
	"md4": {
		variants: map[string]Function{
			"": {newHash: md4.New, sizeBytes: md4.Size},
		},
	},
	"md5": {
		variants: map[string]Function{
			"": {
				newHash:        md5.New,
				sizeBytes:      md5.Size,
				digestFunction: remoteexecution.DigestFunction_MD5,
				multihashCode:  multihash.MD5,
			},
		},
	},
	"sha1": {
		variants: map[string]Function{
			"": {
				newHash:        sha1.New,
				sizeBytes:      sha1.Size,
				digestFunction: remoteexecution.DigestFunction_SHA1,
				multihashCode:  multihash.SHA1,
			},
		},
	},
	"sha2": {
		defaultParameters: "256",
		variants: map[string]Function{
			"224": {newHash: sha256.New224, sizeBytes: sha256.Size224},
			"256": {
				newHash:        sha256.New,
				sizeBytes:      sha256.Size,
				digestFunction: remoteexecution.DigestFunction_SHA256,
				multihashCode:  multihash.SHA2_256,
			},
			"384": {
				newHash:        sha512.New384,
				sizeBytes:      sha512.Size384,
				digestFunction: remoteexecution.DigestFunction_SHA384,
			},
			"512": {
				newHash:        sha512.New,
				sizeBytes:      sha512.Size,
				digestFunction: remoteexecution.DigestFunction_SHA512,
				multihashCode:  multihash.SHA2_512,
			},
			"512_224": {newHash: sha512.New512_224, sizeBytes: sha512.Size224},
			"512_256": {newHash: sha512.New512_256, sizeBytes: sha512.Size256},
		},
	},
	"sha3": {
		defaultParameters: "256",
		variants: map[string]Function{
			"224": {newHash: sha3.New224, sizeBytes: 28, multihashCode: multihash.SHA3_224},
			"256": {newHash: sha3.New256, sizeBytes: 32, multihashCode: multihash.SHA3_256},
			"384": {newHash: sha3.New384, sizeBytes: 48, multihashCode: multihash.SHA3_384},
			"512": {newHash: sha3.New512, sizeBytes: 64, multihashCode: multihash.SHA3_512},
		},
	},
	// Keccak as submitted to the SHA-3 competition, prior to the
	// padding change made by FIPS 202.
	"keccak": {
		defaultParameters: "256",
		variants: map[string]Function{
			"256": {newHash: sha3.NewLegacyKeccak256, sizeBytes: 32, multihashCode: multihash.KECCAK_256},
			"512": {newHash: sha3.NewLegacyKeccak512, sizeBytes: 64, multihashCode: multihash.KECCAK_512},
		},
	},
	"tiger": {
		variants: map[string]Function{
			"": {newHash: tiger.New, sizeBytes: 24},
		},
	},
	"tiger2": {
		variants: map[string]Function{
			"": {newHash: tiger.New2, sizeBytes: 24},
		},
	},
	"whirlpool": {
		variants: map[string]Function{
			"": {newHash: whirlpool.New, sizeBytes: 64},
		},
	},
	"blake2b": {
		defaultParameters: "512",
		variants: map[string]Function{
			"256": {newHash: newBLAKE2b(32), sizeBytes: 32, multihashCode: multihash.BLAKE2B_MIN + 31},
			"384": {newHash: newBLAKE2b(48), sizeBytes: 48, multihashCode: multihash.BLAKE2B_MIN + 47},
			"512": {newHash: newBLAKE2b(64), sizeBytes: 64, multihashCode: multihash.BLAKE2B_MAX},
		},
	},
	"blake3": {
		variants: map[string]Function{
			"": {newHash: newBLAKE3, sizeBytes: 32, multihashCode: multihash.BLAKE3},
		},
	},
}

func init() {
	// Give every variant its canonical name.
	for name, a := range algorithms {
		for parameters, f := range a.variants {
			if parameters == "" {
				f.name = name
			} else {
				f.name = name + "." + parameters
			}
			a.variants[parameters] = f
		}
	}
}

// NewFunction looks up a hashing algorithm by name. Algorithms that
// have multiple variants (e.g., "sha2") accept parameters to select a
// variant (e.g., "512"). An empty parameters string selects the
// default variant.
func NewFunction(name string, parameters string) (Function, error) {
	a, ok := algorithms[name]
	if !ok {
		return Function{}, status.Errorf(codes.InvalidArgument, "Unknown hashing algorithm %#v", name)
	}
	if parameters == "" {
		parameters = a.defaultParameters
	}
	f, ok := a.variants[parameters]
	if !ok {
		if a.defaultParameters == "" {
			return Function{}, status.Errorf(codes.InvalidArgument, "Hashing algorithm %#v does not accept parameters", name)
		}
		return Function{}, status.Errorf(codes.InvalidArgument, "Hashing algorithm %#v does not support parameters %#v", name, parameters)
	}
	return f, nil
}

// MustNewFunction is identical to NewFunction, except that it panics
// if the algorithm is not supported. Useful for unit testing.
func MustNewFunction(name string, parameters string) Function {
	f, err := NewFunction(name, parameters)
	if err != nil {
		panic(err)
	}
	return f
}

// GetFunctionNames returns the canonical names of all supported
// variants, in sorted order.
func GetFunctionNames() []string {
	var names []string
	for _, a := range algorithms {
		for _, f := range a.variants {
			names = append(names, f.name)
		}
	}
	sort.Strings(names)
	return names
}

// NewHash creates a hash.Hash that is in its initial state.
func (f Function) NewHash() hash.Hash {
	return f.newHash()
}

// GetSizeBytes returns the size of the digests computed.
func (f Function) GetSizeBytes() int {
	return f.sizeBytes
}

// GetRemoteExecutionDigestFunction returns the Remote Execution
// protocol enumeration value of the algorithm. UNKNOWN is returned for
// algorithms that the protocol does not define.
func (f Function) GetRemoteExecutionDigestFunction() remoteexecution.DigestFunction_Value {
	return f.digestFunction
}

// GetMultihashCode returns the multicodec identifier of the algorithm,
// if one has been assigned.
func (f Function) GetMultihashCode() (uint64, bool) {
	return f.multihashCode, f.multihashCode != 0
}

// NewGenerator creates a Generator that computes digests using this
// algorithm.
func (f Function) NewGenerator() *Generator {
	return NewGenerator(f.name, f.NewHash())
}

func (f Function) String() string {
	return f.name
}
