//go:build windows

package ops

import (
	"os"

	"github.com/hpungsan/memo/internal/errors"
)

// createNoFollow opens path for writing. Windows has no O_NOFOLLOW;
// ValidatePath has already refused symlinks.
func createNoFollow(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
}

func openNoFollow(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, err
	}
	return f, nil
}
