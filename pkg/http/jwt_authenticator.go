package http

import (
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"strings"

	"github.com/buildbarn/bb-treehash/pkg/clock"
	"github.com/buildbarn/bb-treehash/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// JWTKeyConfig holds a key that may be used to verify the signature of
// a JSON Web Token. The key may be a symmetric key ([]byte), a public
// key or a *jose.JSONWebKey.
type JWTKeyConfig struct {
	Key interface{}
}

type jwtAuthenticator struct {
	verifyKeys []JWTKeyConfig
	clock      clock.Clock
}

// LoadJWTPublicKey loads a public key from PEM, DER or JWK encoded
// data.
func LoadJWTPublicKey(data []byte) (interface{}, error) {
	input := data
	if block, _ := pem.Decode(data); block != nil {
		input = block.Bytes
	}

	// Try to load SubjectPublicKeyInfo.
	pub, err0 := x509.ParsePKIXPublicKey(input)
	if err0 == nil {
		return pub, nil
	}

	cert, err1 := x509.ParseCertificate(input)
	if err1 == nil {
		return cert.PublicKey, nil
	}

	var jwk jose.JSONWebKey
	err2 := jwk.UnmarshalJSON(data)
	if err2 == nil {
		return &jwk, nil
	}

	return nil, status.Errorf(codes.InvalidArgument, "Failed to parse public key: got '%s', '%s' and '%s'", err0, err1, err2)
}

// NewJWTAuthenticator creates an Authenticator that only grants access
// in case a validly signed JWT (JSON Web Token) is passed as a Bearer
// token in the request's "Authorization" header.
func NewJWTAuthenticator(keys []JWTKeyConfig, clock clock.Clock) Authenticator {
	return &jwtAuthenticator{
		verifyKeys: keys,
		clock:      clock,
	}
}

func (a *jwtAuthenticator) Authenticate(r *http.Request) error {
	authHeader := r.Header.Values("Authorization")
	if len(authHeader) < 1 {
		return status.Error(codes.Unauthenticated, "Authorization required")
	}
	if len(authHeader) > 1 {
		return status.Error(codes.Unauthenticated, "Multiple authorization headers are not supported")
	}
	if !strings.HasPrefix(authHeader[0], "Bearer ") {
		return status.Error(codes.Unauthenticated, "Authorization required")
	}

	tok, err := jwt.ParseSigned(strings.TrimPrefix(authHeader[0], "Bearer "))
	if err != nil {
		return util.StatusWrapWithCode(err, codes.Unauthenticated, "Authorization required")
	}

	// Verify the signature by trying each of the verification keys
	// in order. Only validate the time related claims of the first
	// key that matches.
	for _, verifyKey := range a.verifyKeys {
		var claims jwt.Claims
		if err := tok.Claims(verifyKey.Key, &claims); err == nil {
			if err := claims.Validate(jwt.Expected{Time: a.clock.Now()}); err != nil {
				return util.StatusWrapWithCode(err, codes.Unauthenticated, "Authorization required")
			}
			return nil
		}
	}
	return status.Error(codes.Unauthenticated, "Authorization required")
}
