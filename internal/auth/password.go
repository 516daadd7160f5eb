package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost はbcryptのデフォルトコスト。
const DefaultPasswordCost = 10

// MaxPasswordBytes はbcryptが照合に使うパスワードの最大バイト数。
// これを超える部分は無視されるため、超過したパスワードは受け付けない。
const MaxPasswordBytes = 72

// PasswordHasher はbcryptによる一方向パスワードハッシュを提供する。
// ソルトは呼び出しごとにランダム生成され、コストとともにダイジェストに埋め込まれる。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はPasswordHasherを生成する。
// bcryptの許容範囲外のコストはDefaultPasswordCostに置き換える。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードのダイジェストを返す。
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify はダイジェストに埋め込まれたソルトで平文を再計算し、一致するかを返す。
// 不正な形式のダイジェストとMaxPasswordBytesを超える平文は常にfalseとなる。
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	if digest == "" || len(plaintext) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
