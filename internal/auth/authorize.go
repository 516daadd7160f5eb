package auth

// Authorize は呼び出し元がリソースの所有者である場合のみnilを返す。
// いいね・コメントなどのサブエントリでは、親リソースの所有者ではなく
// サブエントリ自身の作成者をownerIDとして渡す。
func Authorize(callerID, ownerID string) error {
	if callerID == "" || callerID != ownerID {
		return ErrForbidden
	}
	return nil
}
