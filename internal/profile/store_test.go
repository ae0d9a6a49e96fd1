// internal/profile/store_test.go
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"edumatch-workers/internal/common/logger"
	"edumatch-workers/internal/matching"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := NewStore(db, rdb, time.Minute, logger.NewTestLogger(t))
	return store, mock, mr
}

func profileRows(skills, prefs, avail []string, location string) *sqlmock.Rows {
	s, _ := json.Marshal(skills)
	p, _ := json.Marshal(prefs)
	a, _ := json.Marshal(avail)
	return sqlmock.NewRows([]string{"skills", "preferences", "availability", "location"}).
		AddRow(s, p, a, location)
}

func TestStore_Get_FromDatabase(t *testing.T) {
	store, mock, mr := setupStore(t)

	mock.ExpectQuery("SELECT skills, preferences, availability, location").
		WithArgs("user-1").
		WillReturnRows(profileRows([]string{"pottery"}, []string{"arts"}, []string{"weekends"}, "austin"))

	raw, err := store.Get(context.Background(), "user-1")

	assert.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, []string{"pottery"}, raw.Skills)
	assert.Equal(t, []string{"arts"}, raw.Preferences)
	assert.Equal(t, "austin", raw.Location)
	assert.NoError(t, mock.ExpectationsWereMet())

	// The fetch populates the cache.
	assert.True(t, mr.Exists("user:profile:user-1"))
}

func TestStore_Get_FromCache(t *testing.T) {
	store, mock, mr := setupStore(t)

	cached, _ := json.Marshal(matching.RawProfile{Skills: []string{"swimming"}})
	mr.Set("user:profile:user-2", string(cached))

	raw, err := store.Get(context.Background(), "user-2")

	assert.NoError(t, err)
	assert.Equal(t, []string{"swimming"}, raw.Skills)
	// No database expectations were set; a query would fail the test.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_CorruptCacheFallsThrough(t *testing.T) {
	store, mock, mr := setupStore(t)

	mr.Set("user:profile:user-3", "{not valid json")
	mock.ExpectQuery("SELECT skills, preferences, availability, location").
		WithArgs("user-3").
		WillReturnRows(profileRows([]string{"coding"}, nil, nil, ""))

	raw, err := store.Get(context.Background(), "user-3")

	assert.NoError(t, err)
	assert.Equal(t, []string{"coding"}, raw.Skills)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_MissingUser(t *testing.T) {
	store, mock, _ := setupStore(t)

	mock.ExpectQuery("SELECT skills, preferences, availability, location").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "ghost")

	assert.Error(t, err)
}

func TestStore_Get_EmptyUserID(t *testing.T) {
	store, _, _ := setupStore(t)

	_, err := store.Get(context.Background(), "")

	assert.Error(t, err)
}

func TestStore_Get_MalformedColumnsDegradeToEmpty(t *testing.T) {
	store, mock, _ := setupStore(t)

	rows := sqlmock.NewRows([]string{"skills", "preferences", "availability", "location"}).
		AddRow([]byte("oops"), []byte("oops"), []byte("oops"), "austin")
	mock.ExpectQuery("SELECT skills, preferences, availability, location").
		WithArgs("user-4").
		WillReturnRows(rows)

	raw, err := store.Get(context.Background(), "user-4")

	assert.NoError(t, err)
	assert.Nil(t, raw.Skills)
	assert.Nil(t, raw.Preferences)
	assert.Equal(t, "austin", raw.Location)
}
