package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims issued to marketplace users.
type Claims struct {
	UserID string `json:"uid"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// Verifier signs and checks HS256 tokens.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewVerifier(secret, issuer, audience string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, audience: audience}
}

// Parse validates tokenStr and returns the principal it was issued for.
func (v *Verifier) Parse(tokenStr string) (Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, errors.New("invalid token")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return Principal{}, errors.New("token has no user id")
	}
	if !claims.Role.Valid() {
		return Principal{}, fmt.Errorf("token has unknown role %q", claims.Role)
	}
	return Principal{UserID: userID, Role: claims.Role}, nil
}

// Issue signs a token for p that expires after ttl.
func (v *Verifier) Issue(p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: p.UserID,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
