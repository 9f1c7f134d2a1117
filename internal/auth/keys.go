package auth

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// 子密钥用途，同一个主密钥派生出互不相同的 key
const (
	PurposeSession  = "session"
	PurposeCSRF     = "csrf"
	PurposeRemember = "remember-token"
)

// DeriveKey 用 HKDF-SHA256 从 server.session_secret 派生 32 字节子密钥
func DeriveKey(secret, purpose string) []byte {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("linkboard/"+purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		// 32 字节远小于 HKDF 上限，不会失败
		panic(err)
	}
	return key
}
