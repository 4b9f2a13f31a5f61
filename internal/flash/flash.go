package flash

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CookieName is the cookie carrying the flash session id.
const CookieName = "flash_sid"

const sessionLocal = "flash_session"

// Flasher binds a Store to fiber requests.
type Flasher struct {
	store  Store
	logger zerolog.Logger
}

// New constructs a Flasher over store.
func New(store Store, logger zerolog.Logger) *Flasher {
	return &Flasher{
		store:  store,
		logger: logger.With().Str("component", "flash").Logger(),
	}
}

// Middleware makes sure every browser carries a flash session cookie.
func (f *Flasher) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := strings.TrimSpace(c.Cookies(CookieName))
		if _, err := uuid.Parse(session); err != nil {
			session = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     CookieName,
				Value:    session,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Expires:  time.Now().Add(30 * 24 * time.Hour),
			})
		}
		c.Locals(sessionLocal, session)
		return c.Next()
	}
}

// Add queues a message for the next page rendered for this browser.
func (f *Flasher) Add(c *fiber.Ctx, level, text string) {
	session := sessionID(c)
	if session == "" {
		return
	}
	if err := f.store.Push(c.UserContext(), session, Message{Level: level, Text: text}); err != nil {
		f.logger.Warn().Err(err).Str("level", level).Msg("failed to store flash message")
	}
}

// Consume returns and clears the pending messages of this browser.
func (f *Flasher) Consume(c *fiber.Ctx) []Message {
	session := sessionID(c)
	if session == "" {
		return nil
	}
	messages, err := f.store.Pop(c.UserContext(), session)
	if err != nil {
		f.logger.Warn().Err(err).Msg("failed to read flash messages")
		return nil
	}
	return messages
}

func sessionID(c *fiber.Ctx) string {
	if value, ok := c.Locals(sessionLocal).(string); ok {
		return value
	}
	return ""
}
