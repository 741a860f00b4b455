// Package sqlxrepos implements the domain repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"github.com/shulehq/shule/core"
)

// getExec prefers the service-provided executor (an open transaction) over
// the repository's default connection.
func getExec(def core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return def
}
