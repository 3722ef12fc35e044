package collector

import (
	"errors"
	"io/fs"
	"os"
	"os/user"
	"strings"
	"time"
)

// OSFileProbe reads access times from the local filesystem.
type OSFileProbe struct{}

// LastAccess returns the access time of path. A missing path reports
// ok=false with no error.
func (OSFileProbe) LastAccess(path string) (time.Time, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return accessTime(path, info), true, nil
}

// OSIdentity reads the login name of the process owner.
type OSIdentity struct{}

// CurrentUser returns the username, stripped of any DOMAIN\ prefix.
func (OSIdentity) CurrentUser() (string, error) {
	u, err := user.Current()
	if err != nil {
		if name := os.Getenv("USER"); name != "" {
			return name, nil
		}
		return "", err
	}
	name := u.Username
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}
	return name, nil
}
