package flash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRedisStorePopClearsMessages(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Push(ctx, "abc", Message{Level: LevelSuccess, Text: "saved"}, Message{Level: LevelWarning, Text: "check"}))
	require.True(t, server.Exists("flash:abc"))
	require.Equal(t, time.Minute, server.TTL("flash:abc"))

	messages, err := store.Pop(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, []Message{{Level: LevelSuccess, Text: "saved"}, {Level: LevelWarning, Text: "check"}}, messages)

	messages, err = store.Pop(ctx, "abc")
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestMemoryStoreSeparatesSessions(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Push(ctx, "a", Message{Level: LevelInfo, Text: "one"}))
	require.NoError(t, store.Push(ctx, "b", Message{Level: LevelInfo, Text: "two"}))

	messages, err := store.Pop(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []Message{{Level: LevelInfo, Text: "one"}}, messages)

	messages, err = store.Pop(ctx, "a")
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestMemoryStoreExpiresAbandonedSessions(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	clock := time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, store.Push(ctx, "abandoned", Message{Level: LevelInfo, Text: "never read"}))
	require.NoError(t, store.Push(ctx, "late", Message{Level: LevelInfo, Text: "too late"}))

	clock = clock.Add(30 * time.Second)
	require.NoError(t, store.Push(ctx, "late", Message{Level: LevelInfo, Text: "refreshed"}))

	clock = clock.Add(45 * time.Second)
	require.NoError(t, store.Push(ctx, "fresh", Message{Level: LevelSuccess, Text: "kept"}))
	require.NotContains(t, store.sessions, "abandoned")

	messages, err := store.Pop(ctx, "late")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	clock = clock.Add(2 * time.Minute)
	messages, err = store.Pop(ctx, "fresh")
	require.NoError(t, err)
	require.Empty(t, messages)
	require.Empty(t, store.sessions)
}

func TestFlasherSurvivesExactlyOneRedirect(t *testing.T) {
	flasher := New(NewMemoryStore(time.Minute), zerolog.Nop())

	app := fiber.New()
	app.Use(flasher.Middleware())
	app.Post("/save", func(c *fiber.Ctx) error {
		flasher.Add(c, LevelSuccess, "Сохранено")
		return c.Redirect("/list", fiber.StatusSeeOther)
	})
	app.Get("/list", func(c *fiber.Ctx) error {
		return c.JSON(flasher.Consume(c))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/save", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == CookieName {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)

	read := func() []Message {
		req := httptest.NewRequest(fiber.MethodGet, "/list", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: sessionCookie.Value})
		resp, err := app.Test(req)
		require.NoError(t, err)
		var messages []Message
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
		return messages
	}

	require.Equal(t, []Message{{Level: LevelSuccess, Text: "Сохранено"}}, read())
	require.Empty(t, read())
}
