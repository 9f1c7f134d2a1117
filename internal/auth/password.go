package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只处理前 72 字节，超出部分会被静默忽略
const maxPasswordBytes = 72

var (
	ErrPasswordTooLong = errors.New("password must be 72 bytes or fewer")
	ErrInvalidPassword = errors.New("invalid password")
)

// PasswordService 负责口令的单向加盐哈希与校验
type PasswordService struct {
	cost  int
	dummy []byte
}

func NewPasswordService() *PasswordService { return NewPasswordServiceWithCost(bcrypt.DefaultCost) }

// NewPasswordServiceWithCost 测试中使用 bcrypt.MinCost 加速
func NewPasswordServiceWithCost(cost int) *PasswordService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("linkboard-dummy-password"), cost)
	return &PasswordService{cost: cost, dummy: dummy}
}

// SetPassword 生成 bcrypt 哈希
func (p *PasswordService) SetPassword(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword 常量时间比较
func (p *PasswordService) CheckPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Verify 与 CheckPassword 相同，但区分口令不匹配和哈希损坏
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidPassword
	}
	return fmt.Errorf("compare password hash: %w", err)
}

// BurnCycles 用户不存在时也做一次比较，使两条失败路径耗时一致
func (p *PasswordService) BurnCycles(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(p.dummy, []byte(plaintext))
}
