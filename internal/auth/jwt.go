package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aathifpm/Feedback-system-sub000/internal/model"
)

// Claims is the JWT payload carrying the actor context. The portal does no
// credential checking itself; whoever signs these tokens has already done it.
type Claims struct {
	Role         string `json:"role"`
	DepartmentID int64  `json:"dept"`
	jwt.RegisteredClaims
}

// Issue signs an access token for the given actor.
func Issue(actor model.ActorContext, issuer, key string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := Claims{
		Role:         string(actor.Role),
		DepartmentID: actor.DepartmentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(actor.ActorID, 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse validates a token and rebuilds the actor context it carries.
func Parse(tokenStr, key, issuer string) (model.ActorContext, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return model.ActorContext{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return model.ActorContext{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return model.ActorContext{}, errors.New("issuer mismatch")
	}
	actorID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return model.ActorContext{}, fmt.Errorf("bad subject: %w", err)
	}
	role, ok := model.ParseRole(claims.Role)
	if !ok {
		return model.ActorContext{}, fmt.Errorf("unknown role %q", claims.Role)
	}
	return model.ActorContext{
		ActorID:      actorID,
		Role:         role,
		DepartmentID: claims.DepartmentID,
	}, nil
}
