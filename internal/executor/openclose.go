package executor

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/codec"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
)

// runOpen grounds on run.rs's Open arm: load a snapshot from Path,
// replacing the current database outright. A malformed or unreadable
// file rejects the command and leaves db untouched.
func runOpen(c *ast.OpenCmd, db *dbstate.DBState) (*dbstate.DBState, Result, error) {
	next, err := codec.Load(c.Path)
	if err != nil {
		return db, Result{}, direrr.IO("Error opening file '%s': %v", c.Path, err)
	}
	return next, Result{}, nil
}

// runCommit grounds on run.rs's Commit arm, with one addition beyond the
// original's direct overwrite: the snapshot is first written to a
// uniquely-named temp file alongside Path and then renamed into place,
// so a process killed mid-write can never leave a half-written (and
// thus unreadable) snapshot where a valid one used to be.
func runCommit(c *ast.CommitCmd, db *dbstate.DBState) (*dbstate.DBState, Result, error) {
	data := codec.Encode(db)
	tmp := fmt.Sprintf("%s.%s.tmp", c.Path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return db, Result{}, direrr.IO("%v", err)
	}
	if err := os.Rename(tmp, c.Path); err != nil {
		os.Remove(tmp)
		return db, Result{}, direrr.IO("%v", err)
	}
	return db, Result{CommitBytes: len(data)}, nil
}
