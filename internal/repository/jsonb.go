package repository

import (
	"encoding/json"
	"fmt"
)

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// marshalList はサブコレクションをjsonb列に保存する形式に変換する。
// nilスライスはnullではなく空配列として保存する。
func marshalList[T any](list []T) ([]byte, error) {
	if list == nil {
		list = []T{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal list: %w", err)
	}
	return b, nil
}

// unmarshalList はjsonb列をサブコレクションに変換する。
// 列が空の場合は空スライスを返す。
func unmarshalList[T any](raw []byte) ([]T, error) {
	list := []T{}
	if len(raw) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal list: %w", err)
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}
