// Package auth provides header builders for token authenticated APIs.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"

	"github.com/jtouzy/spyder/wire"
)

// Bearer returns a header builder sending the current token of ts as
// "Authorization: Bearer <token>". When ts fails the header is left out and
// the server rejection surfaces as an invalid status code.
func Bearer(ts oauth2.TokenSource) func() []wire.Header {
	return func() []wire.Header {
		tok, err := ts.Token()
		if err != nil || tok.AccessToken == "" {
			return nil
		}
		return []wire.Header{{Name: "Authorization", Value: tok.Type() + " " + tok.AccessToken}}
	}
}

func Static(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// JWTConfig describes an RS256 signed assertion such as a GitHub App token.
type JWTConfig struct {
	Issuer   string
	Audience string
	Key      *rsa.PrivateKey
	// TTL defaults to ten minutes.
	TTL time.Duration
}

type jwtSource struct {
	cfg JWTConfig
	now func() time.Time
}

// JWTSource signs a new token only when the previous one is about to expire.
func JWTSource(cfg JWTConfig) (oauth2.TokenSource, error) {
	if cfg.Key == nil {
		return nil, errors.New("auth: jwt signing key is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("auth: jwt issuer is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	return oauth2.ReuseTokenSource(nil, &jwtSource{cfg: cfg, now: time.Now}), nil
}

func (s *jwtSource) Token() (*oauth2.Token, error) {
	now := s.now()
	exp := now.Add(s.cfg.TTL)

	claims := jwt.MapClaims{
		"iss": s.cfg.Issuer,
		// backdated for clock drift
		"iat": now.Add(-time.Minute).Unix(),
		"exp": exp.Unix(),
	}
	if s.cfg.Audience != "" {
		claims["aud"] = s.cfg.Audience
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("auth: sign jwt: %w", err)
	}
	return &oauth2.Token{AccessToken: signed, TokenType: "Bearer", Expiry: exp}, nil
}

func LoadRSAKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read key: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("auth: parse key: %w", err)
	}
	return key, nil
}
