package session

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/storeadmin/internal/client/client"
	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storeadmin/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func alice() models.Session {
	return models.Session{
		User:        &models.Identity{ID: "u1", FirstName: "Alice", LastName: "Liddell", Email: "alice@example.org"},
		AccessToken: "token-1",
	}
}

func TestNew_EmptyStorageMeansLoggedOut(t *testing.T) {
	s := New(context.Background(), openDB(t), logging.Discard())

	got := s.Read()
	assert.Nil(t, got.User)
	assert.Empty(t, got.AccessToken)
}

func TestReplace_RoundTripsThroughFreshStore(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	s := New(ctx, db, logging.Discard())
	require.NoError(t, s.Replace(ctx, alice()))

	reopened := New(ctx, db, logging.Discard())
	assert.True(t, reopened.Read().Equal(alice()))
}

func TestReplace_WritesBothDurableKeys(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	s := New(ctx, db, logging.Discard())

	require.NoError(t, s.Replace(ctx, alice()))

	repo := metadata.NewSQLiteRepository(db)
	user, err := repo.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"u1","first_name":"Alice","last_name":"Liddell","email":"alice@example.org"}`, string(user))

	token, err := repo.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "token-1", string(token))
}

func TestClear_RemovesDurableKeys(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := metadata.NewSQLiteRepository(db)
	require.NoError(t, repo.Set(ctx, "unrelated", []byte("keep")))

	s := New(ctx, db, logging.Discard())
	require.NoError(t, s.Replace(ctx, alice()))
	require.NoError(t, s.Clear(ctx))

	assert.False(t, s.Read().IsAuthenticated())
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"unrelated": []byte("keep")}, all)
}

func TestNew_MalformedUserDegradesToNoUser(t *testing.T) {
	for _, raw := range []string{`{not json`, `null`, `[1,2]`} {
		t.Run(raw, func(t *testing.T) {
			ctx := context.Background()
			db := openDB(t)
			repo := metadata.NewSQLiteRepository(db)
			require.NoError(t, repo.Set(ctx, KeyUser, []byte(raw)))
			require.NoError(t, repo.Set(ctx, KeyToken, []byte("tok")))

			var s *Store
			require.NotPanics(t, func() { s = New(ctx, db, logging.Discard()) })

			got := s.Read()
			assert.Nil(t, got.User)
			assert.Equal(t, "tok", got.AccessToken)
		})
	}
}

func TestNew_MissingTokenKey(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := metadata.NewSQLiteRepository(db)
	require.NoError(t, repo.Set(ctx, KeyUser, []byte(`{"email":"a@b.co","first_name":"A","last_name":"B"}`)))

	got := New(ctx, db, logging.Discard()).Read()
	require.NotNil(t, got.User)
	assert.Equal(t, "a@b.co", got.User.Email)
	assert.Empty(t, got.AccessToken)
}

func TestNew_StorageFailureDegradesToLoggedOut(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Close())

	got := New(context.Background(), db, logging.Discard()).Read()
	assert.False(t, got.IsAuthenticated())
	assert.Empty(t, got.AccessToken)
}

func TestReplace_StorageFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	s := New(ctx, db, logging.Discard())
	require.NoError(t, s.Replace(ctx, alice()))

	require.NoError(t, db.Close())

	err := s.Replace(ctx, models.Session{})
	require.Error(t, err)
	assert.True(t, s.Read().Equal(alice()))
}

func TestReplace_RejectsPartialSession(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	s := New(ctx, db, logging.Discard())
	require.NoError(t, s.Replace(ctx, alice()))

	tests := []struct {
		name string
		next models.Session
	}{
		{name: "token without user", next: models.Session{AccessToken: "tok"}},
		{name: "user without token", next: models.Session{User: &models.Identity{Email: "bob@example.org"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, s.Replace(ctx, tc.next), ErrPartialSession)
			assert.True(t, s.Read().Equal(alice()))
			assert.True(t, New(ctx, db, logging.Discard()).Read().Equal(alice()))
		})
	}
}

func TestRead_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, openDB(t), logging.Discard())
	require.NoError(t, s.Replace(ctx, alice()))

	got := s.Read()
	got.User.Email = "mallory@example.org"

	assert.Equal(t, "alice@example.org", s.Read().User.Email)
}

func TestSubscribe_FanOutAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, openDB(t), logging.Discard())

	var first, second []bool
	unsubFirst := s.Subscribe(func(sess models.Session) { first = append(first, sess.IsAuthenticated()) })
	s.Subscribe(func(sess models.Session) { second = append(second, sess.IsAuthenticated()) })

	require.NoError(t, s.Replace(ctx, alice()))
	unsubFirst()
	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, []bool{true}, first)
	assert.Equal(t, []bool{true, false}, second)
}

func TestReplace_ConcurrentCallsNeverMixFields(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	s := New(ctx, db, logging.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = s.Clear(ctx)
				return
			}
			_ = s.Replace(ctx, models.Session{
				User:        &models.Identity{Email: fmt.Sprintf("u%d@example.org", i)},
				AccessToken: fmt.Sprintf("t%d", i),
			})
		}(i)
	}
	wg.Wait()

	got := s.Read()
	if got.User == nil {
		assert.Empty(t, got.AccessToken)
	} else {
		var n int
		_, err := fmt.Sscanf(got.User.Email, "u%d@example.org", &n)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("t%d", n), got.AccessToken)
	}

	assert.True(t, New(ctx, db, logging.Discard()).Read().Equal(got), "durable mirror must match memory")
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, openDB(t), logging.Discard())

	_, ok := s.Expiry()
	assert.False(t, ok)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any-secret"))
	require.NoError(t, err)

	sess := alice()
	sess.AccessToken = token
	require.NoError(t, s.Replace(ctx, sess))

	got, ok := s.Expiry()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	sess.AccessToken = "opaque-token"
	require.NoError(t, s.Replace(ctx, sess))
	_, ok = s.Expiry()
	assert.False(t, ok)
}
