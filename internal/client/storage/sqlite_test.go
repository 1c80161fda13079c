package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The queue and snapshots must survive a full process restart. Closing and
// reopening the database file stands in for the restart.
func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos_device.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)

	for _, endpoint := range []string{"/a", "/b", "/c"} {
		require.NoError(t, store.AppendMutation(&QueuedMutation{
			TargetEndpoint: endpoint,
			Method:         "POST",
			Payload:        []byte(`{}`),
			IdempotencyKey: "key-" + endpoint,
			Status:         StatusPending,
		}))
	}
	require.NoError(t, store.SaveSnapshot("menu", []byte(`["espresso"]`), time.Now()))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	mutations, err := reopened.ListMutations(StatusPending)
	require.NoError(t, err)
	require.Len(t, mutations, 3)
	assert.Equal(t, "/a", mutations[0].TargetEndpoint)
	assert.Equal(t, "/b", mutations[1].TargetEndpoint)
	assert.Equal(t, "/c", mutations[2].TargetEndpoint)

	snapshot, err := reopened.LoadSnapshot("menu")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, `["espresso"]`, string(snapshot.Data))
}

func TestSnapshotOverwriteKeepsOneRowPerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos_device.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveSnapshot("openOrders", []byte(`[1]`), time.Now().Add(-time.Hour)))
	newer := time.Now()
	require.NoError(t, store.SaveSnapshot("openOrders", []byte(`[1,2]`), newer))

	snapshot, err := store.LoadSnapshot("openOrders")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, `[1,2]`, string(snapshot.Data))
	assert.WithinDuration(t, newer, snapshot.UpdatedAt, time.Second)
}

func TestMemoryStoreMatchesContract(t *testing.T) {
	store := NewMemoryStore()

	m := &QueuedMutation{TargetEndpoint: "/a", Method: "POST", IdempotencyKey: "k", Status: StatusPending}
	require.NoError(t, store.AppendMutation(m))
	require.NotZero(t, m.ID)

	m.Status = StatusConflict
	require.NoError(t, store.UpdateMutation(m))

	got, err := store.GetMutation(m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, StatusConflict, got.Status)

	require.NoError(t, store.DeleteMutation(m.ID))
	gone, err := store.GetMutation(m.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
