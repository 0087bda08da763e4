package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhuube/vatreport/internal/core"
)

func testTable() *core.Table {
	return &core.Table{Columns: []string{"order_date"}, Rows: []core.Row{{"2025-02-03"}}}
}

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore(time.Hour)

	sess := store.Create("orders.csv", []byte("raw"), testTable(), &core.ValidationResult{TotalRows: 1})
	require.NotEmpty(t, sess.ID)

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "orders.csv", got.FileName)
	assert.Equal(t, []byte("raw"), got.Original)
	assert.Equal(t, 1, got.Validation.TotalRows)
}

func TestStoreUnknownID(t *testing.T) {
	store := NewStore(time.Hour)

	_, err := store.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore(time.Hour)
	current := time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	sess := store.Create("orders.csv", nil, testTable(), &core.ValidationResult{})

	current = current.Add(59 * time.Minute)
	_, err := store.Get(sess.ID)
	assert.NoError(t, err)

	current = current.Add(2 * time.Minute)
	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Expired entry is removed on access.
	assert.Equal(t, 0, store.Len())
}

func TestStoreSweepOnCreate(t *testing.T) {
	store := NewStore(time.Hour)
	current := time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		store.Create("old.csv", nil, testTable(), &core.ValidationResult{})
	}
	require.Equal(t, 3, store.Len())

	current = current.Add(25 * time.Hour)
	fresh := store.Create("fresh.csv", nil, testTable(), &core.ValidationResult{})

	assert.Equal(t, 1, store.Len())
	_, err := store.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.Create("orders.csv", nil, testTable(), &core.ValidationResult{})

	store.Delete(sess.ID)
	_, err := store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	store.Delete("already-gone")
}

func TestStoreZeroTTLDefaults(t *testing.T) {
	store := NewStore(0)
	assert.Equal(t, DefaultTTL, store.ttl)
}
