package cli

import (
	"io"

	fslock "github.com/ipfs/go-fs-lock"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/build"
)

// ErrAlreadyRunning is returned when another bot holds the instance lock.
var ErrAlreadyRunning = xerrors.New("another westend-migrate instance is running (lock held)")

// lockInstance takes the single instance lock in dir.
func lockInstance(dir string) (io.Closer, error) {
	if dir == "" {
		dir = build.DefaultLockDir
	}
	dir, err := homedir.Expand(dir)
	if err != nil {
		return nil, xerrors.Errorf("expanding lock dir: %w", err)
	}

	locked, err := fslock.Locked(dir, build.LockFileName)
	if err != nil {
		return nil, xerrors.Errorf("could not check lock status: %w", err)
	}
	if locked {
		return nil, ErrAlreadyRunning
	}

	closer, err := fslock.Lock(dir, build.LockFileName)
	if err != nil {
		return nil, xerrors.Errorf("could not take the instance lock: %w", err)
	}
	return closer, nil
}
