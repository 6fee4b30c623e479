package counter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"awesomearcade/internal/testutil"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.in))
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{`42`, 42, false},
		{`"42"`, 42, false},
		{`"1,234"`, 1234, false},
		{`12.0`, 12, false},
		{`"1e3"`, 1000, false},
		{`12.5`, 0, true},
		{`"0.1"`, 0, true},
		{`9223372036854775808`, 0, true},
		{`1e19`, 0, true},
		{`"NaN"`, 0, true},
		{`"Inf"`, 0, true},
		{`"abc"`, 0, true},
		{`null`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseCount(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Ensure(ctx, []string{"a/b", "c/d"}))
	n, err := s.Increment(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, _ = s.Increment(ctx, "a/b")
	assert.Equal(t, int64(2), n)

	// Ensure must not reset existing counters.
	require.NoError(t, s.Ensure(ctx, []string{"a/b"}))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a/b": 2, "c/d": 0}, all)
	assert.Equal(t, []string{"a/b", "c/d"}, SortedRepos(all))
}

func TestClientAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/all/", r.URL.Path)
		w.Write([]byte(`{"a/b":"12","c/d":3}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL + "/").All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a/b": 12, "c/d": 3}, got)
}

func TestClientClick(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/click", r.URL.Path)
		assert.Equal(t, "a/b", r.URL.Query().Get("repo"))
		w.Write([]byte(`{"a/b":13}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Click(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a/b": 13}, got)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantBad bool
	}{
		{"server error", http.StatusInternalServerError, `{}`, true},
		{"not found", http.StatusNotFound, `{}`, true},
		{"bad body", http.StatusOK, `not json`, false},
		{"bad count", http.StatusOK, `{"a/b":"x"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).All(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantBad, errors.Is(err, ErrBadStatus))
		})
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).All(context.Background())
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	s := NewPostgresStore(database)
	require.NoError(t, s.Ensure(ctx, []string{"foo-ext", "bar-ext"}))

	n, err := s.Increment(ctx, "foo-ext")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"foo-ext": 1, "bar-ext": 0}, all)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	key := "awesomearcade:test:" + t.Name()

	ctx := context.Background()
	client.Del(ctx, key)
	s := NewRedisStoreWithClient(client, key)
	defer func() {
		client.Del(ctx, key)
		s.Close()
	}()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Ensure(ctx, []string{"foo-ext", "bar-ext"}))
	n, err := s.Increment(ctx, "foo-ext")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Ensure leaves existing counters alone.
	require.NoError(t, s.Ensure(ctx, []string{"foo-ext"}))
	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"foo-ext": 1, "bar-ext": 0}, all)
}
