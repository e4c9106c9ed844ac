package account

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"

	"github.com/madamaths/madamaths/core"
)

func TestTokenService_IssueVerify(t *testing.T) {
	conf := core.NewTestConfig()
	ts := NewTokenService(conf)
	id := Identity{AccountID: 7, Role: RoleTeacher}

	validToken, err := ts.Issue(id)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	// generate an expired token
	hourLate := conf.Server.JWTExpiration + time.Hour
	ts.nowFunc = func() time.Time { return time.Now().Add(-hourLate) }
	expiredToken, _ := ts.Issue(id)
	ts.nowFunc = time.Now // reset

	// signed with another key
	other := NewTokenService(&core.Config{AppName: conf.AppName, SecretKey: "other", Server: conf.Server})
	foreignToken, _ := other.Issue(id)

	// signed with another algorithm
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.AppName,
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleTeacher,
	}
	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	hs512Token, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(conf.SecretKey))

	signed := func(mutate func(c *Claims)) string {
		c := claims
		mutate(&c)
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(conf.SecretKey))
		return tok
	}

	tests := []struct {
		name    string
		token   string
		want    Identity
		wantErr error
	}{
		{name: "no token", wantErr: ErrInvalidToken},
		{name: "garbage", token: "lmaooolol", wantErr: ErrInvalidToken},
		{name: "expired token", token: expiredToken, wantErr: ErrInvalidToken},
		{name: "foreign key", token: foreignToken, wantErr: ErrInvalidToken},
		{name: "alg none", token: noneToken, wantErr: ErrInvalidToken},
		{name: "alg HS512", token: hs512Token, wantErr: ErrInvalidToken},
		{name: "wrong issuer", token: signed(func(c *Claims) { c.Issuer = "someone" }), wantErr: ErrInvalidToken},
		{name: "non numeric subject", token: signed(func(c *Claims) { c.Subject = "seven" }), wantErr: ErrInvalidToken},
		{name: "zero subject", token: signed(func(c *Claims) { c.Subject = "0" }), wantErr: ErrInvalidToken},
		{name: "unknown role", token: signed(func(c *Claims) { c.Role = "janitor" }), wantErr: ErrInvalidToken},
		{name: "no expiry", token: signed(func(c *Claims) { c.ExpiresAt = nil }), wantErr: ErrInvalidToken},
		{name: "valid token", token: validToken, want: id},
		{
			name:  "valid hand-made token",
			token: signed(func(c *Claims) { c.Subject = strconv.Itoa(42); c.Role = RoleStudent }),
			want:  Identity{AccountID: 42, Role: RoleStudent},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.Verify(tt.token)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenService_VerifyUsesServiceClock(t *testing.T) {
	ts := NewTokenService(core.NewTestConfig())
	tok, err := ts.Issue(Identity{AccountID: 1, Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	ts.nowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
	defer func() { ts.nowFunc = time.Now }()

	_, err = ts.Verify(tok)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestTokenService_UniqueTokenIDs(t *testing.T) {
	ts := NewTokenService(core.NewTestConfig())
	id := Identity{AccountID: 1, Role: RoleAdmin}
	tok1, _ := ts.Issue(id)
	tok2, _ := ts.Issue(id)
	assert.NotEqual(t, tok1, tok2)
}
