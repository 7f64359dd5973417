package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resa/internal/dashboard"
	"resa/internal/dashboard/store"
	"resa/shared/constant"
)

func record(id, name string) dashboard.Reservation {
	return dashboard.Reservation{
		ID:       id,
		Name:     name,
		Phone:    "812345678",
		Date:     "15/09/2026",
		TimeSlot: constant.TimeSlots[0],
		Status:   constant.StatusPending,
	}
}

func TestStore_ReplaceAll(t *testing.T) {
	t.Run("keeps the given order", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{
			record("a", "Ana"),
			record("b", "Ben"),
			record("c", "Cai"),
		})

		snapshot := s.Snapshot()
		require.Len(t, snapshot, 3)
		assert.Equal(t, "a", snapshot[0].ID)
		assert.Equal(t, "b", snapshot[1].ID)
		assert.Equal(t, "c", snapshot[2].ID)
	})

	t.Run("keeps the first occurrence of a duplicate id", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{
			record("a", "Ana"),
			record("a", "Impostor"),
		})

		require.Equal(t, 1, s.Len())

		got, ok := s.Get("a")
		require.True(t, ok)
		assert.Equal(t, "Ana", got.Name)
	})

	t.Run("discards previous contents", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{record("a", "Ana")})
		s.ReplaceAll([]dashboard.Reservation{record("b", "Ben")})

		_, ok := s.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 1, s.Len())
	})
}

func TestStore_Upsert(t *testing.T) {
	t.Run("inserts a new record at the head", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{record("a", "Ana")})

		existed := s.Upsert(record("b", "Ben"))
		assert.False(t, existed)

		snapshot := s.Snapshot()
		require.Len(t, snapshot, 2)
		assert.Equal(t, "b", snapshot[0].ID)
		assert.Equal(t, "a", snapshot[1].ID)
	})

	t.Run("replaces an existing record in place", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{
			record("a", "Ana"),
			record("b", "Ben"),
		})

		updated := record("b", "Ben")
		updated.Status = constant.StatusConfirmed

		existed := s.Upsert(updated)
		assert.True(t, existed)

		snapshot := s.Snapshot()
		require.Len(t, snapshot, 2)
		assert.Equal(t, "a", snapshot[0].ID)
		assert.Equal(t, "b", snapshot[1].ID)
		assert.Equal(t, constant.StatusConfirmed, snapshot[1].Status)
	})

	t.Run("never stores two records with one id", func(t *testing.T) {
		s := store.New()
		s.Upsert(record("a", "Ana"))
		s.Upsert(record("a", "Ana"))
		s.Upsert(record("a", "Ana"))

		assert.Equal(t, 1, s.Len())
	})
}

func TestStore_Remove(t *testing.T) {
	t.Run("removes a present record", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{
			record("a", "Ana"),
			record("b", "Ben"),
		})

		assert.True(t, s.Remove("a"))
		assert.Equal(t, 1, s.Len())

		_, ok := s.Get("a")
		assert.False(t, ok)
	})

	t.Run("is a no-op for an absent id", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{record("a", "Ana")})

		assert.False(t, s.Remove("missing"))
		assert.Equal(t, 1, s.Len())
	})
}

func TestStore_Snapshot(t *testing.T) {
	t.Run("mutating the snapshot does not touch the store", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{record("a", "Ana")})

		snapshot := s.Snapshot()
		snapshot[0].Name = "Changed"

		got, ok := s.Get("a")
		require.True(t, ok)
		assert.Equal(t, "Ana", got.Name)
	})
}
