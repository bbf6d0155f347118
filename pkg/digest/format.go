package digest

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multihash"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Format converts the binary hash of a digest to a textual
// representation.
type Format interface {
	Encode(hash []byte) string
	String() string
}

type simpleFormat struct {
	name   string
	encode func(hash []byte) string
}

func (f simpleFormat) Encode(hash []byte) string {
	return f.encode(hash)
}

func (f simpleFormat) String() string {
	return f.name
}

var (
	// HexFormat encodes hashes as upper case hexadecimal strings.
	HexFormat Format = simpleFormat{
		name: "hex",
		encode: func(hash []byte) string {
			return strings.ToUpper(hex.EncodeToString(hash))
		},
	}
	// Base32Format encodes hashes using the RFC 4648 base32
	// alphabet, including padding.
	Base32Format Format = simpleFormat{
		name:   "base32",
		encode: base32.StdEncoding.EncodeToString,
	}
	// Base64Format encodes hashes using the standard RFC 4648
	// base64 alphabet, including padding.
	Base64Format Format = simpleFormat{
		name:   "base64",
		encode: base64.StdEncoding.EncodeToString,
	}
	// Base58Format encodes hashes using the Bitcoin base58
	// alphabet.
	Base58Format Format = simpleFormat{
		name:   "base58",
		encode: base58.Encode,
	}
)

type multihashFormat struct {
	code uint64
}

func (f multihashFormat) Encode(hash []byte) string {
	mh, err := multihash.Encode(hash, f.code)
	if err != nil {
		panic(err)
	}
	return base58.Encode(mh)
}

func (f multihashFormat) String() string {
	return "multihash"
}

// NewFormat looks up an output format by name. The "multihash" format
// prefixes the hash with the multicodec identifier of the function
// that computed it and encodes the result as base58. It can only be
// used for functions that have such an identifier, which is why the
// function is provided. Hash trees have no identifier, so for those
// the function should be omitted.
func NewFormat(name string, function *Function) (Format, error) {
	switch name {
	case "", "hex":
		return HexFormat, nil
	case "base32":
		return Base32Format, nil
	case "base64":
		return Base64Format, nil
	case "base58":
		return Base58Format, nil
	case "multihash":
		if function == nil {
			return nil, status.Error(codes.InvalidArgument, "The multihash format cannot be used for hash trees")
		}
		code, ok := function.GetMultihashCode()
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "Hashing algorithm %#v has no multihash code", function.String())
		}
		return multihashFormat{code: code}, nil
	default:
		return nil, status.Errorf(codes.InvalidArgument, "Unsupported output format %#v", name)
	}
}
