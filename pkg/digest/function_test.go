package digest_test

import (
	"encoding/hex"
	"testing"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/buildbarn/bb-treehash/pkg/digest"
	"github.com/buildbarn/bb-treehash/pkg/testutil"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNewFunctionABC(t *testing.T) {
	// Digests of the string "abc" for every algorithm.
	for name, expectedHash := range map[string]string{
		"md4":          "a448017aaf21d8525fc10ae87aa6729d",
		"md5":          "900150983cd24fb0d6963f7d28e17f72",
		"sha1":         "a9993e364706816aba3e25717850c26c9cd0d89d",
		"sha2.224":     "23097d223405d8228642a477bda255b32aadbce4bda0b3f7e36c9da7",
		"sha2.256":     "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		"sha2.384":     "cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7",
		"sha2.512":     "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f",
		"sha2.512_224": "4634270f707b6a54daae7530460842e20e37ed265ceee9a43e8924aa",
		"sha2.512_256": "53048e2681941ef99b2e29b76b4c7dabe4c2d0c634fc6d46e0e2f13107e7af23",
		"sha3.224":     "e642824c3f8cf24ad09234ee7d3c766fc9a3a5168d0c94ad73b46fdf",
		"sha3.256":     "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532",
		"sha3.384":     "ec01498288516fc926459f58e2c6ad8df9b473cb0fc08c2596da7cf0e49be4b298d88cea927ac7f539f1edf228376d25",
		"sha3.512":     "b751850b1a57168a5693cd924b6b096e08f621827444f70d884f5d0240d2712e10e116e9192af3c91a7ec57647e3934057340b4cf408d5a56592f8274eec53f0",
		"keccak.256":   "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		"tiger":        "2aab1484e8c158f2bfb8c5ff41b57a525129131c957b5f93",
		"whirlpool":    "4e2448a4c6f486bb16b6562c73b4020bf3043e3a731bce721ae1b303d97e6d4c7181eebdb6c57e277d0e34957114cbd6c797fc9d95d8b582d225292076d4eef5",
		"blake2b.512":  "ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d17d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923",
		"blake3":       "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85",
	} {
		t.Run(name, func(t *testing.T) {
			f, err := digest.GetFunctionFromString(name)
			require.NoError(t, err)
			require.Equal(t, name, f.String())
			require.Equal(t, len(expectedHash)/2, f.GetSizeBytes())

			h := f.NewHash()
			require.Equal(t, f.GetSizeBytes(), h.Size())
			h.Write([]byte("abc"))
			require.Equal(t, expectedHash, hex.EncodeToString(h.Sum(nil)))
		})
	}
}

func TestNewFunctionKeccakEmpty(t *testing.T) {
	for name, expectedHash := range map[string]string{
		"keccak.256": "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		"keccak.512": "0eab42de4c3ceb9235fc91acffe746b29c29a8c366b7c60e4e67c466f36a4304c00fa9caf9d87976ba469bcbe06713b435f091ef2769fb160cdab33d3670680e",
	} {
		f, err := digest.GetFunctionFromString(name)
		require.NoError(t, err)
		require.Equal(t, expectedHash, hex.EncodeToString(f.NewHash().Sum(nil)), name)
	}
}

func TestNewFunctionSizes(t *testing.T) {
	// Every variant should produce digests of the size it reports.
	for _, name := range digest.GetFunctionNames() {
		t.Run(name, func(t *testing.T) {
			f, err := digest.GetFunctionFromString(name)
			require.NoError(t, err)
			h := f.NewHash()
			h.Write([]byte("Hello"))
			require.Len(t, h.Sum(nil), f.GetSizeBytes())
		})
	}
}

func TestNewFunctionDefaults(t *testing.T) {
	for name, expected := range map[string]string{
		"sha2":    "sha2.256",
		"sha3":    "sha3.256",
		"keccak":  "keccak.256",
		"blake2b": "blake2b.512",
		"tiger":   "tiger",
	} {
		f, err := digest.NewFunction(name, "")
		require.NoError(t, err)
		require.Equal(t, expected, f.String())
	}
}

func TestNewFunctionErrors(t *testing.T) {
	t.Run("UnknownAlgorithm", func(t *testing.T) {
		_, err := digest.NewFunction("crc32", "")
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Unknown hashing algorithm \"crc32\""), err)
	})

	t.Run("UnexpectedParameters", func(t *testing.T) {
		_, err := digest.NewFunction("md5", "128")
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Hashing algorithm \"md5\" does not accept parameters"), err)
	})

	t.Run("UnsupportedParameters", func(t *testing.T) {
		_, err := digest.NewFunction("sha2", "1024")
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Hashing algorithm \"sha2\" does not support parameters \"1024\""), err)
	})
}

func TestFunctionRemoteExecutionDigestFunction(t *testing.T) {
	for name, expected := range map[string]remoteexecution.DigestFunction_Value{
		"md5":      remoteexecution.DigestFunction_MD5,
		"sha1":     remoteexecution.DigestFunction_SHA1,
		"sha2.256": remoteexecution.DigestFunction_SHA256,
		"sha2.384": remoteexecution.DigestFunction_SHA384,
		"sha2.512": remoteexecution.DigestFunction_SHA512,
		"sha2.224": remoteexecution.DigestFunction_UNKNOWN,
		"tiger":    remoteexecution.DigestFunction_UNKNOWN,
	} {
		f, err := digest.GetFunctionFromString(name)
		require.NoError(t, err)
		require.Equal(t, expected, f.GetRemoteExecutionDigestFunction(), name)
	}
}

func TestFunctionMultihashCode(t *testing.T) {
	code, ok := digest.MustNewFunction("sha2", "256").GetMultihashCode()
	require.True(t, ok)
	require.Equal(t, uint64(0x12), code)

	code, ok = digest.MustNewFunction("blake2b", "256").GetMultihashCode()
	require.True(t, ok)
	require.Equal(t, uint64(0xb220), code)

	_, ok = digest.MustNewFunction("tiger", "").GetMultihashCode()
	require.False(t, ok)
}
