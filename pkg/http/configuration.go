package http

import (
	"io/ioutil"

	"github.com/buildbarn/bb-treehash/pkg/clock"
	"github.com/buildbarn/bb-treehash/pkg/configuration"
	"github.com/buildbarn/bb-treehash/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewAuthenticatorFromConfiguration creates an Authenticator based on
// a configuration message. Access is granted to all requests if no
// configuration is provided.
func NewAuthenticatorFromConfiguration(config *configuration.JWTAuthenticationConfiguration, clock clock.Clock) (Authenticator, error) {
	if config == nil {
		return AllowAuthenticator, nil
	}

	var keys []JWTKeyConfig
	for _, hmacKey := range config.HMACKeys {
		keys = append(keys, JWTKeyConfig{Key: []byte(hmacKey)})
	}
	for _, path := range config.PublicKeyFiles {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, util.StatusWrapfWithCode(err, codes.NotFound, "Failed to read public key file %#v", path)
		}
		key, err := LoadJWTPublicKey(data)
		if err != nil {
			return nil, util.StatusWrapf(err, "Public key file %#v", path)
		}
		keys = append(keys, JWTKeyConfig{Key: key})
	}
	if len(keys) == 0 {
		return nil, status.Error(codes.InvalidArgument, "JWT authentication requires at least one key")
	}
	return NewJWTAuthenticator(keys, clock), nil
}
