// Package password 账户密码的哈希与校验
//
// 新哈希使用 scrypt, 存储格式 "<hex key>.<hex salt>", salt 的 hex 字符串本身作为
// scrypt 的 salt 输入。导入账户的 bcrypt 哈希 ("$2a$…") 仍可由 Verify 校验
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"
)

const (
	scryptN   = 16384
	scryptR   = 8
	scryptP   = 1
	keyLength = 64
	saltBytes = 16
)

// ErrMalformedHash 存储值格式无法识别
var ErrMalformedHash = errors.New("password: malformed stored hash")

// Hash 生成密码的存储形式
func Hash(plain string) (string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("password: read salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	key, err := scrypt.Key([]byte(plain), []byte(salt), scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return "", fmt.Errorf("password: derive key: %w", err)
	}
	return hex.EncodeToString(key) + "." + salt, nil
}

// Verify 校验 plain 与 stored 是否匹配, 常量时间比较
func Verify(plain, stored string) (bool, error) {
	if strings.HasPrefix(stored, "$2") {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, err
	}

	hashHex, salt, ok := strings.Cut(stored, ".")
	if !ok || salt == "" {
		return false, ErrMalformedHash
	}
	want, err := hex.DecodeString(hashHex)
	if err != nil || len(want) != keyLength {
		return false, ErrMalformedHash
	}

	got, err := scrypt.Key([]byte(plain), []byte(salt), scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return false, fmt.Errorf("password: derive key: %w", err)
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
