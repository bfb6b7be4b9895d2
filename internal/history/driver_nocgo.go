//go:build !cgo

package history

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DriverName is the database/sql driver used to open snapshots.
const DriverName = "sqlite"

// lockCode inspects the driver's structured result code. The second return
// value is false when err carries no SQLite code.
func lockCode(err error) (locked bool, ok bool) {
	var sErr *sqlite.Error
	if errors.As(err, &sErr) {
		primary := sErr.Code() & 0xff
		return primary == sqlite3.SQLITE_BUSY || primary == sqlite3.SQLITE_LOCKED, true
	}
	return false, false
}
