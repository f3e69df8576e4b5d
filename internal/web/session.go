package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lifewood/internal/dashboard"
	"lifewood/internal/middleware"
	"lifewood/internal/models"
	"lifewood/internal/registration"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	localSession = "web_session"

	flashNoticeKey = "flash_notice"
	flashErrorKey  = "flash_error"
)

// SessionTokenStore keeps the admin token of one browser session in the
// session storage, next to the session itself. It implements
// apiclient.TokenStore.
type SessionTokenStore struct {
	storage fiber.Storage
	key     string
	ttl     time.Duration
}

// NewSessionTokenStore returns the token store of session sid.
func NewSessionTokenStore(storage fiber.Storage, sid string, ttl time.Duration) *SessionTokenStore {
	return &SessionTokenStore{storage: storage, key: "admin_token:" + sid, ttl: ttl}
}

type storedToken struct {
	Token string        `json:"token"`
	Admin *models.Admin `json:"admin,omitempty"`
}

func (s *SessionTokenStore) load() (storedToken, error) {
	var st storedToken
	raw, err := s.storage.Get(s.key)
	if err != nil || len(raw) == 0 {
		return st, err
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return storedToken{}, fmt.Errorf("decode session token: %w", err)
	}
	return st, nil
}

func (s *SessionTokenStore) Token(context.Context) (string, error) {
	st, err := s.load()
	return st.Token, err
}

func (s *SessionTokenStore) Admin(context.Context) (*models.Admin, error) {
	st, err := s.load()
	return st.Admin, err
}

func (s *SessionTokenStore) Save(_ context.Context, token string, admin *models.Admin) error {
	raw, err := json.Marshal(storedToken{Token: token, Admin: admin})
	if err != nil {
		return err
	}
	return s.storage.Set(s.key, raw, s.ttl)
}

func (s *SessionTokenStore) Clear(context.Context) error {
	return s.storage.Delete(s.key)
}

// withSession loads the session into locals and saves it after the handler
// ran, which also issues the cookie for new sessions.
func withSession(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		c.Locals(localSession, sess)
		handlerErr := c.Next()
		if sess.ID() == "" {
			return handlerErr
		}
		if err := sess.Save(); err != nil {
			middleware.Logger.ErrorContext(c.UserContext(), "session save failed", slog.String("error", err.Error()))
		}
		return handlerErr
	}
}

func currentSession(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(localSession).(*session.Session)
	return sess
}

func setFlash(c *fiber.Ctx, key, msg string) {
	if sess := currentSession(c); sess != nil && msg != "" {
		sess.Set(key, msg)
	}
}

func flashNotice(c *fiber.Ctx, msg string) { setFlash(c, flashNoticeKey, msg) }
func flashError(c *fiber.Ctx, msg string)  { setFlash(c, flashErrorKey, msg) }

// popFlash returns and clears the pending notice and error.
func popFlash(c *fiber.Ctx) (notice, errMsg string) {
	sess := currentSession(c)
	if sess == nil {
		return "", ""
	}
	notice, _ = sess.Get(flashNoticeKey).(string)
	errMsg, _ = sess.Get(flashErrorKey).(string)
	sess.Delete(flashNoticeKey)
	sess.Delete(flashErrorKey)
	return notice, errMsg
}

// sessionState is what a browser session holds in memory between requests.
type sessionState struct {
	mu    sync.Mutex
	draft *registration.Draft
	dash  *dashboard.Dashboard
	seen  time.Time
}

func (st *sessionState) release() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.draft != nil {
		st.draft.Close()
	}
	if st.dash != nil {
		st.dash.CloseResume()
	}
}

// stateStore maps session ids to their state. Idle entries are released
// after the session lifetime.
type stateStore struct {
	mu     sync.Mutex
	states map[string]*sessionState
	idle   time.Duration
}

func newStateStore(idle time.Duration) *stateStore {
	return &stateStore{states: make(map[string]*sessionState), idle: idle}
}

func (s *stateStore) get(sid string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, st := range s.states {
		if id != sid && now.Sub(st.seen) > s.idle {
			st.release()
			delete(s.states, id)
		}
	}
	st, ok := s.states[sid]
	if !ok {
		st = &sessionState{}
		s.states[sid] = st
	}
	st.seen = now
	return st
}

func (s *stateStore) drop(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[sid]; ok {
		st.release()
		delete(s.states, sid)
	}
}

func (s *stateStore) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range s.states {
		st.release()
		delete(s.states, id)
	}
}
