package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// One cached statement per (user, account); the stored value remembers
	// its range and is only served on an exact range match.
	ckStatement = "stmt_user_%d_acct_%d"

	DefaultCacheExpiration = 5 * time.Minute
	CacheCleanupInterval   = 10 * time.Minute
)

func statementCacheKey(userID, accountID int64) string {
	return fmt.Sprintf(ckStatement, userID, accountID)
}

// invalidateStatementCache drops cached statements for the accounts a write
// just touched. Called by the settlement and transfer paths after commit.
func invalidateStatementCache(c *cache.Cache, userID int64, accountIDs ...int64) {
	if c == nil {
		return
	}
	for _, id := range accountIDs {
		if id != 0 {
			c.Delete(statementCacheKey(userID, id))
		}
	}
}
