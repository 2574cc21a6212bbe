package conversation

import (
	"testing"
	"time"

	"github.com/moby/locker"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		in     string
		intent Intent
		name   string
	}{
		{"我叫小明", IntentNameDeclaration, "小明"},
		{"  我叫 小明。 ", IntentNameDeclaration, "小明"},
		{"我的名字是阿華！", IntentNameDeclaration, "阿華"},
		{"我叫", IntentChat, ""},
		{"我叫小明，", IntentNameDeclaration, "小明"},
		{"我叫小明？", IntentNameDeclaration, "小明"},
		{"我叫小明,今天好累", IntentNameDeclaration, "小明"},
		{"我叫Amy?", IntentNameDeclaration, "Amy"},
		{"叫我老王", IntentChat, ""},
		{"叫我一下好嗎", IntentChat, ""},
		{"我叫你別說了", IntentChat, ""},
		{"我叫了外賣", IntentChat, ""},
		{"我叫，", IntentChat, ""},
		{"我叫一個很長很長很長很長的名字吧", IntentChat, ""},
		{"調整設定", IntentSettingsReset, ""},
		{"調整設定吧", IntentChat, ""},
		{"請幫我調整設定", IntentChat, ""},
		{"你好", IntentChat, ""},
		{"", IntentChat, ""},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			intent, name := Classify(tc.in)
			assert.Equal(t, tc.intent, intent)
			assert.Equal(t, tc.name, name)
		})
	}
}

func TestUserLocksReleaseEntries(t *testing.T) {
	l := newUserLocks()

	unlock := l.Lock("U1")
	unlock()

	// The entry is gone, so a second release has nothing to unlock.
	assert.ErrorIs(t, l.l.Unlock("U1"), locker.ErrNoSuchLock)
}

func TestUserLocksExclusivePerUser(t *testing.T) {
	l := newUserLocks()

	unlock := l.Lock("U1")

	acquired := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		u := l.Lock("U1")
		close(acquired)
		u()
	}()

	// other users are not blocked
	other := l.Lock("U2")
	other()

	select {
	case <-acquired:
		t.Fatal("second lock for U1 acquired while first is held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	<-acquired
	<-done

	assert.ErrorIs(t, l.l.Unlock("U1"), locker.ErrNoSuchLock)
}
