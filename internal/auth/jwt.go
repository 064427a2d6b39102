package auth

import (
	"errors"
	"time"

	"hotmess/config"
	"hotmess/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are issued by the account service and carry the tier inputs.
type Claims struct {
	UserID     uint                  `json:"user_id"`
	Membership domain.MembershipTier `json:"membership"`
	XpTier     domain.XpTier         `json:"xp_tier"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs claims the way the account service does. Used by
// local tooling and tests; production tokens come from the account service.
func GenerateAccessToken(cfg *config.JWTConfig, userID uint, membership domain.MembershipTier, xp domain.XpTier) (string, error) {
	claims := Claims{
		UserID:     userID,
		Membership: membership,
		XpTier:     xp,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    cfg.Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.AccessSecret))
}

var ErrInvalidToken = errors.New("invalid token")

func ParseAccessToken(cfg *config.JWTConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.AccessSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
