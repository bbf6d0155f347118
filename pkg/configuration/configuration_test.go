package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/buildbarn/bb-treehash/pkg/configuration"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func writeConfiguration(t *testing.T, contents string) string {
	dir, err := ioutil.TempDir("", "configuration")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	p := filepath.Join(dir, "config.jsonnet")
	require.NoError(t, ioutil.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestGetServerConfiguration(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c, err := configuration.GetServerConfiguration(writeConfiguration(t, `{}`))
		require.NoError(t, err)
		require.Equal(t, &configuration.ServerConfiguration{
			ListenAddress: ":8080",
			MaximumSteps:  16,
		}, c)

		parser := c.Steps.NewParser(false)
		require.Equal(t, 1024, parser.DefaultBlockSizeBytes)
		require.Equal(t, "hex", parser.DefaultFormat)
		require.Equal(t, 16*1024*1024, parser.MaximumBlockSizeBytes)
	})

	t.Run("Jsonnet", func(t *testing.T) {
		c, err := configuration.GetServerConfiguration(writeConfiguration(t, `
local kib = 1024;
{
  listenAddress: ':9090',
  steps: {
    defaultBlockSizeBytes: 64 * kib,
    defaultMaximumStorageLevels: 2,
    defaultFormat: 'base32',
    maximumBlockSizeBytes: 64 * kib,
  },
  jwtAuthentication: {
    hmacKeys: ['0123456789ABCDEF'],
  },
}`))
		require.NoError(t, err)
		require.Equal(t, ":9090", c.ListenAddress)
		require.Equal(t, []string{"0123456789ABCDEF"}, c.JWTAuthentication.HMACKeys)

		parser := c.Steps.NewParser(false)
		s, err := parser.NewStepFromString("tree:md5")
		require.NoError(t, err)
		require.Equal(t, "tree.65536.2:md5:base32", s.String())

		_, err = parser.NewStepFromString("tree.65537:md5")
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := configuration.GetServerConfiguration(writeConfiguration(t, `{ listenAdress: ':9090' }`))
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := configuration.GetServerConfiguration("/nonexistent/config.jsonnet")
		require.Equal(t, codes.NotFound, status.Code(err))
	})
}

func TestInputConfigurationChunkPolicy(t *testing.T) {
	var c configuration.InputConfiguration
	require.Equal(t, c.GetChunkPolicy(), (&configuration.InputConfiguration{ReadSizeBytes: 8192}).GetChunkPolicy())
}
