package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrAlgMismatch  = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// minSecretLength guards against configuring HS256 with a toy secret.
const minSecretLength = 32

// HS256Options configure an HS256Codec.
type HS256Options struct {
	// Issuer is written into iss and required on verification. Empty
	// disables the check.
	Issuer string

	// TTL of issued tokens. Zero means DefaultTokenTTL.
	TTL time.Duration

	// Leeway tolerated on exp/nbf for clock skew.
	Leeway time.Duration

	// Now overrides the clock; tests use it to move past expiry.
	Now func() time.Time
}

// HS256Codec issues and verifies HMAC-SHA256 signed bearer tokens with a
// single shared secret.
type HS256Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewHS256Codec returns a codec for secret, which must be at least 32 bytes.
func NewHS256Codec(secret string, opts HS256Options) (*HS256Codec, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwtx: HS256 secret must be at least %d bytes", minSecretLength)
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTokenTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &HS256Codec{
		secret: []byte(secret),
		issuer: opts.Issuer,
		ttl:    opts.TTL,
		leeway: opts.Leeway,
		now:    opts.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(), // exp/nbf/iss checked below against our clock
		),
	}, nil
}

// TTL is the lifetime of tokens produced by Issue.
func (c *HS256Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for subject.
func (c *HS256Codec) Issue(subject string) (string, Claims, error) {
	if subject == "" {
		return "", Claims{}, ErrInvalidClaim
	}

	claims := NewClaims(subject, c.issuer, c.ttl, c.now().UTC())
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature, issuer and lifetime, returning the claims. Every
// failure is one of the package's Err sentinels.
func (c *HS256Codec) Verify(tokenStr string) (Claims, error) {
	var claims Claims
	_, err := c.parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if claims.Subject == "" {
		return Claims{}, ErrInvalidClaim
	}
	if err := claims.ValidateIssuer(c.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryAt(c.now().UTC(), c.leeway); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// Subject returns the verified subject of tokenStr, or ok=false for any
// invalid token. It never panics.
func (c *HS256Codec) Subject(tokenStr string) (subject string, ok bool) {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrAlgMismatch
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
