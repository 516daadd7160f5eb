package auth

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL はメールアドレスからgravatarのアバターURLを導出する。
// サイズ200、レーティングpg、未登録時はretro画像を返す。
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=retro&r=pg&s=200", sum)
}
