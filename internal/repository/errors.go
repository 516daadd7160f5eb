package repository

import (
	"errors"

	"github.com/lib/pq"
)

// pqUniqueViolation はPostgreSQLの一意制約違反コード。
const pqUniqueViolation = "23505"

// isUniqueViolation はerrがPostgreSQLの一意制約違反かを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
