package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"hotfolder/internal/config"
)

// ResolveCollision picks the final path for name inside dir according to the
// task's collision policy. Returns "" when the skip policy declined the file.
//
// The rename and skip policies claim the chosen name by creating it
// exclusively, so two events resolving the same base name concurrently always
// get distinct final paths. The move that follows replaces the claimed
// placeholder.
func ResolveCollision(dir, name string, policy config.CollisionPolicy) (string, error) {
	dest := filepath.Join(dir, name)

	switch policy {
	case config.CollisionOverwrite:
		return dest, nil

	case config.CollisionSkip:
		if err := claim(dest); err != nil {
			if os.IsExist(err) {
				return "", nil
			}
			return "", errors.Wrapf(err, "could not claim %s", dest)
		}
		return dest, nil

	default: // rename
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		for i := 0; ; i++ {
			candidate := dest
			if i > 0 {
				candidate = filepath.Join(dir, fmt.Sprintf("%s(%d)%s", stem, i, ext))
			}
			err := claim(candidate)
			if err == nil {
				return candidate, nil
			}
			if !os.IsExist(err) {
				return "", errors.Wrapf(err, "could not claim %s", candidate)
			}
		}
	}
}

// claim reserves a destination name with an exclusive create.
func claim(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

// releaseClaim removes a claimed placeholder after a failed move so the name
// becomes available again.
func releaseClaim(path string) {
	if fi, err := os.Stat(path); err == nil && fi.Size() == 0 {
		os.Remove(path)
	}
}
