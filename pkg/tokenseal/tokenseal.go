// Package tokenseal 负责 webhook token 的落库加密
// 使用 XChaCha20-Poly1305 (golang.org/x/crypto) 进行认证加密，密文带版本前缀
package tokenseal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// sealedPrefix 已加密值的前缀，用于区分历史明文数据
const sealedPrefix = "v1:"

var (
	mu   sync.RWMutex
	aead interface {
		NonceSize() int
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
)

// ErrMalformed 密文格式错误或认证失败
var ErrMalformed = errors.New("tokenseal: malformed sealed value")

// Init 使用配置的密钥初始化加密器
// 密钥为空时不加密（开发环境），Seal/Open 原样返回
func Init(secret string) error {
	mu.Lock()
	defer mu.Unlock()
	if secret == "" {
		aead = nil
		return nil
	}
	// 任意长度的配置密钥派生为 32 字节
	key := sha256.Sum256([]byte(secret))
	c, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return err
	}
	aead = c
	return nil
}

// Seal 加密明文 token
func Seal(plain string) (string, error) {
	mu.RLock()
	c := aead
	mu.RUnlock()
	if c == nil || plain == "" {
		return plain, nil
	}

	nonce := make([]byte, c.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	// 密文头部附加 nonce
	out := c.Seal(nonce, nonce, []byte(plain), nil)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

// Open 解密 token；未带前缀的值视为明文直接返回
func Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return sealed, nil
	}
	mu.RLock()
	c := aead
	mu.RUnlock()
	if c == nil {
		return "", ErrMalformed
	}

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil || len(raw) < c.NonceSize() {
		return "", ErrMalformed
	}
	plain, err := c.Open(nil, raw[:c.NonceSize()], raw[c.NonceSize():], nil)
	if err != nil {
		return "", ErrMalformed
	}
	return string(plain), nil
}
