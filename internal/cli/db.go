package cli

import (
	"fmt"

	"github.com/roach88/primops/internal/store"
)

// openDatabase opens the run log at path, reporting failures through the
// formatter as command errors.
func openDatabase(formatter *OutputFormatter, path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
