package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/myvfriend/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/myvfriend/internal/adapters/storage/storetest"
	"github.com/PabloGalante/myvfriend/internal/domain"
)

func TestSessionStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.SessionStore {
		store, err := sqlite.Open(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestRecordsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)

	s := domain.NewSession("U1")
	s.DisplayName = "小明"
	s.AppendTurn("你好", "嗨！")
	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "小明", got.DisplayName)
	assert.Len(t, got.History, 1)
}

func TestClosedDatabaseIsStoreUnavailable(t *testing.T) {
	store, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Load(context.Background(), "U1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	err = store.Save(context.Background(), domain.NewSession("U1"))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
