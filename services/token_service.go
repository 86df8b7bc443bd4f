package services

import (
	"errors"
	"time"

	"qa-release-api/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the session payload carried by the jwtToken cookie. The token is
// the whole session: there is no server-side store and no revocation list.
// The display name rides in both the historical emp_name claim and the
// standard name claim so generic JWT consumers can read it.
type Claims struct {
	EmpCode string `json:"emp_code"`
	EmpName string `json:"emp_name"`
	Name    string `json:"name"`
	jwt.RegisteredClaims
}

// TokenService issues and validates the signed session credential. Issue is
// called once per login; tokens are never refreshed silently, the cookie and
// token expire together.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
}

// Issue signs a fresh session token for the employee. The expiry is absolute:
// now + the configured lifetime (8 hours in production).
func (s *TokenService) Issue(empCode, empName string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		EmpCode: empCode,
		EmpName: empName,
		Name:    empName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   empCode,
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate checks signature, issuer, audience and expiry with zero clock-skew
// tolerance and returns the embedded identity.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.EmpCode == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// TTL returns the configured token lifetime, used to keep the cookie expiry
// in lock-step with the token expiry.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
