package account

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/madamaths/madamaths/core"
)

// ErrInvalidToken is returned by TokenService.Verify for any token that cannot be trusted.
var ErrInvalidToken = core.NewUnauthenticatedError("invalid or expired token")

// Identity is what a session token asserts about its bearer.
type Identity struct {
	AccountID int64
	Role      Role
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// TokenService issues and verifies signed, expiring session tokens.
type TokenService struct {
	issuer     string
	signingKey []byte
	method     jwt.SigningMethod
	expiration time.Duration
	nowFunc    func() time.Time // mockable
}

func NewTokenService(conf *core.Config) *TokenService {
	return &TokenService{
		issuer:     conf.AppName,
		signingKey: []byte(conf.SecretKey),
		method:     jwt.SigningMethodHS256,
		expiration: conf.Server.JWTExpiration,
		nowFunc:    time.Now,
	}
}

// Issue generates a signed token string for id.
func (ts *TokenService) Issue(id Identity) (string, error) {
	now := ts.nowFunc()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   strconv.FormatInt(id.AccountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiration)),
		},
		Role: id.Role,
	}
	ss, err := jwt.NewWithClaims(ts.method, claims).SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify checks the token's signature, algorithm, issuer and expiry and returns the
// identity it carries. Any failure is reported as ErrInvalidToken.
func (ts *TokenService) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{ts.method.Alg()}))
	claims := new(Claims)
	tok, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return ts.signingKey, nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}

	// jwt's own exp check uses the wall clock; check again against ours
	if claims.ExpiresAt == nil || !ts.nowFunc().Before(claims.ExpiresAt.Time) {
		return Identity{}, ErrInvalidToken
	}
	if !claims.VerifyIssuer(ts.issuer, true) {
		return Identity{}, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Identity{}, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return Identity{}, ErrInvalidToken
	}
	return Identity{AccountID: id, Role: claims.Role}, nil
}
