package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const rememberIssuer = "linkboard"

var ErrInvalidToken = errors.New("invalid remember token")

// RememberTokens 签发/校验"记住我"cookie 中的 JWT
type RememberTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewRememberTokens 签名 key 由 secret 派生，与 session cookie 的 key 不同
func NewRememberTokens(secret string, ttl time.Duration) *RememberTokens {
	return &RememberTokens{secret: DeriveKey(secret, PurposeRemember), ttl: ttl, now: time.Now}
}

// TTL cookie 的 MaxAge 与 token 过期时间一致
func (r *RememberTokens) TTL() time.Duration { return r.ttl }

// Issue 生成 HS256 token，sub 为用户 ID
func (r *RememberTokens) Issue(userID uint) (string, error) {
	now := r.now()
	claims := jwt.RegisteredClaims{
		Issuer:    rememberIssuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(r.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("sign remember token: %w", err)
	}
	return signed, nil
}

// Parse 校验签名、算法、签发者和过期时间，返回用户 ID
func (r *RememberTokens) Parse(token string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return r.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(rememberIssuer),
		jwt.WithTimeFunc(r.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
