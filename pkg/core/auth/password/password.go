// Package password 单向自适应哈希（bcrypt），只能通过重新计算比较来校验。
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch 密码与哈希不匹配
var ErrMismatch = errors.New("password mismatch")

type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare 不匹配返回 ErrMismatch，哈希本身损坏时返回原始错误
func (h *BcryptHasher) Compare(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
