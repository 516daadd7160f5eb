package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL はセッショントークンの有効期間（7日）。
const DefaultTokenTTL = 7 * 24 * time.Hour

// ClaimUser はトークンに埋め込まれるユーザー識別子。
type ClaimUser struct {
	ID string `json:"id"`
}

// Claims はセッショントークンのペイロード。
// {"user": {"id": "..."}, "exp": ..., "iat": ...} の形式で署名される。
type Claims struct {
	User ClaimUser `json:"user"`
	jwt.RegisteredClaims
}

// TokenIssuer はHS256で署名されたステートレスなセッショントークンを発行・検証する。
// 署名鍵は起動時に設定から1回だけ渡される。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer はTokenIssuerを生成する。ttlが0以下の場合はDefaultTokenTTLを使う。
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue は指定ユーザーのトークンと有効期限を返す。
func (i *TokenIssuer) Issue(userID string) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, errors.New("auth: user id is required")
	}
	if len(i.secret) == 0 {
		return "", time.Time{}, errors.New("auth: signing secret is not configured")
	}

	now := i.now().UTC()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		User: ClaimUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify はトークンの署名と有効期限を検証し、埋め込まれたユーザーIDを返す。
// 期限切れの場合はErrExpiredToken、それ以外の検証失敗はErrInvalidTokenを返す。
func (i *TokenIssuer) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.User.ID) == "" {
		return "", ErrInvalidToken
	}
	return claims.User.ID, nil
}
