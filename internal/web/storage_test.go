package web

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"lifewood/internal/config"
	"lifewood/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storages(t *testing.T) map[string]fiber.Storage {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return map[string]fiber.Storage{
		"memory": NewMemoryStorage(),
		"redis":  NewRedisStorage(rdb, "test:"),
	}
}

func TestStorage(t *testing.T) {
	for name, st := range storages(t) {
		t.Run(name, func(t *testing.T) {
			v, err := st.Get("missing")
			require.NoError(t, err)
			assert.Nil(t, v)

			require.NoError(t, st.Set("a", []byte("1"), 0))
			require.NoError(t, st.Set("b", []byte("2"), time.Hour))
			v, err = st.Get("a")
			require.NoError(t, err)
			assert.Equal(t, []byte("1"), v)

			require.NoError(t, st.Delete("a"))
			v, _ = st.Get("a")
			assert.Nil(t, v)

			require.NoError(t, st.Reset())
			v, _ = st.Get("b")
			assert.Nil(t, v)
		})
	}
}

func TestRedisStorageUsesPrefixAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	st := NewRedisStorage(rdb, "lifewood:web:")

	require.NoError(t, st.Set("sid", []byte("x"), time.Minute))
	assert.True(t, mr.Exists("lifewood:web:sid"))
	mr.FastForward(2 * time.Minute)
	v, err := st.Get("sid")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSessionTokenStore(t *testing.T) {
	st := NewMemoryStorage()
	ctx := context.Background()
	a := NewSessionTokenStore(st, "s1", time.Hour)
	b := NewSessionTokenStore(st, "s2", time.Hour)

	require.NoError(t, a.Save(ctx, "tok", &models.Admin{ID: 7, Email: "admin@lifewood.com"}))
	token, err := a.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	admin, err := a.Admin(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(7), admin.ID)

	token, err = b.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "tokens are scoped to their session")

	require.NoError(t, a.Clear(ctx))
	token, _ = a.Token(ctx)
	assert.Empty(t, token)
}

func TestSessionsSurviveRestartWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	_, ts := newFakeAPI(t)
	cfg := &config.Config{APIBaseURL: ts.URL + "/api", SessionSecret: "s"}

	first, err := NewServer(cfg, rdb, WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	b := &browser{t: t, app: first.NewApp(), cookies: map[string]string{}}
	b.login()

	second, err := NewServer(cfg, rdb, WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	b.app = second.NewApp()

	resp, body := b.get("/admin/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Ana Reyes")

	resp, _ = b.post("/admin/logout", url.Values{})
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
}
