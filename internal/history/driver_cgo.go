//go:build cgo

package history

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver used to open snapshots.
const DriverName = "sqlite3"

// lockCode inspects the driver's structured result code. The second return
// value is false when err carries no SQLite code.
func lockCode(err error) (locked bool, ok bool) {
	var sErr sqlite3.Error
	if errors.As(err, &sErr) {
		return sErr.Code == sqlite3.ErrBusy || sErr.Code == sqlite3.ErrLocked, true
	}
	return false, false
}
