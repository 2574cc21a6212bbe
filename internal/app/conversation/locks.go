package conversation

import (
	"github.com/moby/locker"

	"github.com/PabloGalante/myvfriend/internal/domain"
)

// userLocks serialises work for the same user inside this process. The
// locker drops a user's entry once nobody holds or waits for it.
type userLocks struct {
	l *locker.Locker
}

func newUserLocks() *userLocks {
	return &userLocks{l: locker.New()}
}

// Lock blocks until the caller owns userID and returns the unlock func.
func (u *userLocks) Lock(userID domain.UserID) func() {
	name := string(userID)
	u.l.Lock(name)
	return func() {
		// Only fails for a name that is not held, which cannot happen here.
		_ = u.l.Unlock(name)
	}
}
