package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"vinylhub/internal/domain"
	applog "vinylhub/internal/log"
)

// Session keys. Values are plain strings and ints so the store can encode them without registration.
const (
	keyUserID   = "user_id"
	keyUsername = "username"
	keyCart     = "cart"
)

// Sessions wraps the fiber session store with the identity and cart helpers.
type Sessions struct {
	Store *session.Store
}

func NewSessions(store *session.Store) *Sessions { return &Sessions{Store: store} }

func (s *Sessions) Get(c *fiber.Ctx) (*session.Session, error) {
	return s.Store.Get(c)
}

// Identity returns the logged-in user stored in sess.
func Identity(sess *session.Session) (domain.SessionUser, bool) {
	id, _ := sess.Get(keyUserID).(int64)
	name, _ := sess.Get(keyUsername).(string)
	if id == 0 {
		return domain.SessionUser{}, false
	}
	return domain.SessionUser{ID: id, Username: name}, true
}

func SetIdentity(sess *session.Session, u domain.SessionUser) {
	sess.Set(keyUserID, u.ID)
	sess.Set(keyUsername, u.Username)
}

// LoadCart decodes the cart kept in sess. A missing or corrupt value is an empty cart.
func LoadCart(sess *session.Session) domain.Cart {
	var cart domain.Cart
	raw, _ := sess.Get(keyCart).(string)
	if raw == "" {
		return cart
	}
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return domain.Cart{}
	}
	return cart
}

func SaveCart(sess *session.Session, cart domain.Cart) error {
	if cart.Empty() {
		sess.Delete(keyCart)
		return nil
	}
	b, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	sess.Set(keyCart, string(b))
	return nil
}

// Attach exposes the session identity and cart size to handlers, templates and logs.
func (s *Sessions) Attach() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("year", time.Now().Year())
		sess, err := s.Store.Get(c)
		if err != nil {
			applog.Error(c, "session.load.fail", err, nil)
			return c.Next()
		}
		if u, ok := Identity(sess); ok {
			c.Locals("user", u)
			c.Locals("user_id", u.ID)
		}
		c.Locals("cartCount", LoadCart(sess).Count())
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) (domain.SessionUser, bool) {
	u, ok := c.Locals("user").(domain.SessionUser)
	return u, ok
}
