package configuration

import (
	"github.com/buildbarn/bb-treehash/pkg/blobstore/buffer"
	"github.com/buildbarn/bb-treehash/pkg/step"
	"github.com/buildbarn/bb-treehash/pkg/util"
)

// StepConfiguration holds the values used for components that are
// omitted from step descriptions.
type StepConfiguration struct {
	DefaultBlockSizeBytes       int    `json:"defaultBlockSizeBytes"`
	DefaultMaximumStorageLevels int    `json:"defaultMaximumStorageLevels"`
	DefaultFormat               string `json:"defaultFormat"`

	// Largest block size that hash tree steps may use. Defaults to
	// the limit of step.DefaultParser.
	MaximumBlockSizeBytes int `json:"maximumBlockSizeBytes"`
}

// NewParser creates a step parser. Fields that are left unset fall
// back to the values of step.DefaultParser.
func (c *StepConfiguration) NewParser(enableMetrics bool) step.Parser {
	parser := step.DefaultParser
	if c.DefaultBlockSizeBytes != 0 {
		parser.DefaultBlockSizeBytes = c.DefaultBlockSizeBytes
	}
	parser.DefaultMaximumStorageLevels = c.DefaultMaximumStorageLevels
	if c.DefaultFormat != "" {
		parser.DefaultFormat = c.DefaultFormat
	}
	if c.MaximumBlockSizeBytes != 0 {
		parser.MaximumBlockSizeBytes = c.MaximumBlockSizeBytes
	}
	parser.EnableMetrics = enableMetrics
	return parser
}

// InputConfiguration controls how inputs are read.
type InputConfiguration struct {
	// Size of the chunks in which inputs are read. Defaults to
	// 8 KiB.
	ReadSizeBytes int `json:"readSizeBytes"`

	// Number of times reading an object from a storage bucket is
	// resumed after a transient failure.
	MaximumRetries int `json:"maximumRetries"`
}

// GetChunkPolicy returns the chunk policy that should be used to read
// inputs.
func (c *InputConfiguration) GetChunkPolicy() buffer.ChunkPolicy {
	if c.ReadSizeBytes <= 0 {
		return buffer.ChunkSizeAtMost(buffer.DefaultReadSizeBytes)
	}
	return buffer.ChunkSizeAtMost(c.ReadSizeBytes)
}

// TreehashConfiguration is the optional configuration file of the
// treehash command line tool.
type TreehashConfiguration struct {
	Steps StepConfiguration  `json:"steps"`
	Input InputConfiguration `json:"input"`

	// Steps to use when none are provided on the command line.
	DefaultSteps []string `json:"defaultSteps"`
}

// JWTAuthenticationConfiguration lists the keys that are accepted for
// verifying the signatures of JSON Web Tokens.
type JWTAuthenticationConfiguration struct {
	// Symmetric keys, used for HMAC signatures.
	HMACKeys []string `json:"hmacKeys"`

	// Paths of files containing PEM, DER or JWK encoded public keys.
	PublicKeyFiles []string `json:"publicKeyFiles"`
}

// ServerConfiguration is the configuration file of
// bb_treehash_server.
type ServerConfiguration struct {
	// Address on which the digest service and the Prometheus
	// metrics are exposed, such as ":8080".
	ListenAddress string            `json:"listenAddress"`
	Steps         StepConfiguration `json:"steps"`

	// Maximum number of steps a single request may provide.
	MaximumSteps int `json:"maximumSteps"`

	// When set, requests are only accepted if they carry a validly
	// signed JSON Web Token.
	JWTAuthentication *JWTAuthenticationConfiguration `json:"jwtAuthentication"`
}

// GetTreehashConfiguration loads the configuration of the treehash
// command line tool from a Jsonnet file.
func GetTreehashConfiguration(path string) (*TreehashConfiguration, error) {
	var configuration TreehashConfiguration
	if err := util.UnmarshalConfigurationFromFile(path, &configuration); err != nil {
		return nil, util.StatusWrap(err, "Failed to retrieve configuration")
	}
	return &configuration, nil
}

// GetServerConfiguration loads the configuration of
// bb_treehash_server from a Jsonnet file.
func GetServerConfiguration(path string) (*ServerConfiguration, error) {
	configuration := ServerConfiguration{
		ListenAddress: ":8080",
		MaximumSteps:  16,
	}
	if err := util.UnmarshalConfigurationFromFile(path, &configuration); err != nil {
		return nil, util.StatusWrap(err, "Failed to retrieve configuration")
	}
	return &configuration, nil
}
