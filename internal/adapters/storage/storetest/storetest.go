// Package storetest holds the behaviour every domain.SessionStore must have.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/myvfriend/internal/domain"
)

// Run exercises a store built by newStore. Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) domain.SessionStore) {
	t.Helper()

	t.Run("load missing user returns default session", func(t *testing.T) {
		store := newStore(t)

		s, err := store.Load(context.Background(), "U-missing")
		require.NoError(t, err)

		assert.Equal(t, domain.UserID("U-missing"), s.UserID)
		assert.Equal(t, domain.DefaultProfile(), s.Profile)
		assert.Empty(t, s.DisplayName)
		assert.Empty(t, s.History)
	})

	t.Run("save then load round trip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		s := domain.NewSession("U1")
		s.DisplayName = "小明"
		s.Profile.IsPaidUser = true
		s.Profile.AIGender = domain.GenderFemale
		s.Profile.Traits[domain.TraitHumor] = 7
		s.Profile.Traits[domain.TraitTopicDepth] = 2
		s.AppendTurn("你好", "嗨！")
		s.AppendTurn("今天天氣好", "對呀")
		require.NoError(t, store.Save(ctx, s))

		got, err := store.Load(ctx, "U1")
		require.NoError(t, err)

		assert.Equal(t, s.UserID, got.UserID)
		assert.Equal(t, s.DisplayName, got.DisplayName)
		assert.Equal(t, s.Profile, got.Profile)
		assert.Equal(t, s.History, got.History)
	})

	t.Run("save overwrites the whole record", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		first := domain.NewSession("U1")
		first.DisplayName = "阿華"
		first.AppendTurn("a", "b")
		require.NoError(t, store.Save(ctx, first))

		second := domain.NewSession("U1")
		require.NoError(t, store.Save(ctx, second))

		got, err := store.Load(ctx, "U1")
		require.NoError(t, err)
		assert.Empty(t, got.DisplayName)
		assert.Empty(t, got.History)
	})

	t.Run("users are isolated", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		a := domain.NewSession("UA")
		a.DisplayName = "A"
		require.NoError(t, store.Save(ctx, a))

		b, err := store.Load(ctx, "UB")
		require.NoError(t, err)
		assert.Empty(t, b.DisplayName)
	})

	t.Run("loaded session is a private copy", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		s := domain.NewSession("U1")
		s.AppendTurn("a", "b")
		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, "U1")
		require.NoError(t, err)
		loaded.AppendTurn("c", "d")
		loaded.Profile.Traits[domain.TraitHumor] = 1

		again, err := store.Load(ctx, "U1")
		require.NoError(t, err)
		assert.Len(t, again.History, 1)
		assert.Equal(t, 4, again.Profile.Value(domain.TraitHumor))
	})
}
