package proc

import (
	"errors"
	"fmt"
	"os/user"
	"strconv"
	"strings"
	"sync"
)

// MaxUserName bounds resolved user names, as utmp/passwd tools do.
const MaxUserName = 16

var ErrUnknownUser = errors.New("unknown user")

// Seams for tests.
var (
	lookupID   = user.LookupId
	lookupName = user.Lookup
)

var (
	namesMu sync.Mutex
	names   = map[uint32]string{}
)

// UIDToName resolves a uid to a user name, or "" when it has no entry.
// Results, including misses, are cached for the life of the process.
func UIDToName(uid uint32) string {
	namesMu.Lock()
	defer namesMu.Unlock()

	if name, ok := names[uid]; ok {
		return name
	}
	name := ""
	if u, err := lookupID(strconv.FormatUint(uint64(uid), 10)); err == nil {
		name = u.Username
		if len(name) > MaxUserName {
			name = name[:MaxUserName]
		}
	}
	names[uid] = name
	return name
}

// LookupUID resolves a user name, or a numeric uid, to a uid.
func LookupUID(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: empty name", ErrUnknownUser)
	}
	if uid, err := strconv.ParseUint(name, 10, 32); err == nil {
		return int(uid), nil
	}
	u, err := lookupName(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownUser, name)
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s has non-numeric uid %q", ErrUnknownUser, name, u.Uid)
	}
	return int(uid), nil
}

func resetUserCache() {
	namesMu.Lock()
	names = map[uint32]string{}
	namesMu.Unlock()
}
