package jwt

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration // Access Token 有效期
}

// 全局配置，由 Init 函数初始化
var jwtConfig = &JWTConfig{AccessTokenExpiry: time.Hour}

// Init 初始化 JWT 配置
func Init(secret string, accessExpiryMinutes int) {
	jwtConfig = &JWTConfig{
		Secret:            secret,
		AccessTokenExpiry: time.Duration(accessExpiryMinutes) * time.Minute,
	}
}

// Claims 自定义 JWT 声明
// AccountID 为聊天平台账号 ID
type Claims struct {
	AccountID int64 `json:"account_id,string"`
	jwt.RegisteredClaims
}

// GenerateAccessToken 为平台账号签发 Access Token
func GenerateAccessToken(accountID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtConfig.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "plural_proxy",
			Subject:   strconv.FormatInt(accountID, 10),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.Secret))
}

// ParseToken 解析并验证 Token
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtConfig.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
