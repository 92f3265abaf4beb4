// Package apitest runs an in-process fake of the chatbot backend on a
// loopback port. It implements the HTTP contract the client consumes and
// nothing more: users, bearer tokens, chats and messages are held in memory.
package apitest

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Operation names accepted by FailNext.
const (
	OpRegister    = "register"
	OpLogin       = "login"
	OpListChats   = "listChats"
	OpCreateChat  = "createChat"
	OpGetMessages = "getMessages"
	OpSendMessage = "sendMessage"
)

type user struct {
	id           string
	email        string
	passwordHash []byte
}

type chat struct {
	id        string
	userId    string
	createdAt time.Time
}

type message struct {
	id        string
	chatId    string
	sender    string
	text      string
	timestamp time.Time
}

type Server struct {
	URL string

	app    *fiber.App
	ln     net.Listener
	secret []byte

	mu          sync.Mutex
	users       map[string]*user // by email
	chats       map[string]*chat
	messages    map[string][]*message
	authHeaders []string
	failures    map[string]int
	clock       time.Time
	reversed    bool
	onSend      func(text string)
	reply       func(text string) string
}

// Start launches a server and closes it when the test ends.
func Start(t testing.TB) *Server {
	t.Helper()
	s, err := NewServer()
	if err != nil {
		t.Fatalf("start fake backend: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func NewServer() (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	s := &Server{
		URL:      "http://" + ln.Addr().String(),
		ln:       ln,
		secret:   []byte("apitest-secret"),
		users:    make(map[string]*user),
		chats:    make(map[string]*chat),
		messages: make(map[string][]*message),
		failures: make(map[string]int),
		clock:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		reply: func(text string) string {
			return "Here is what I found about: " + text
		},
	}

	s.app = fiber.New(fiber.Config{DisableStartupMessage: true, Immutable: true})
	s.app.Use(func(c *fiber.Ctx) error {
		s.mu.Lock()
		s.authHeaders = append(s.authHeaders, c.Get(fiber.HeaderAuthorization))
		s.mu.Unlock()
		return c.Next()
	})
	s.routes()

	go s.app.Listener(ln)
	return s, nil
}

func (s *Server) Close() error {
	err := s.app.Shutdown()
	s.ln.Close()
	return err
}

// AuthHeaders lists the Authorization header of every request received so
// far ("" when absent).
func (s *Server) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.authHeaders))
	copy(out, s.authHeaders)
	return out
}

func (s *Server) LastAuthHeader() string {
	h := s.AuthHeaders()
	if len(h) == 0 {
		return ""
	}
	return h[len(h)-1]
}

// FailNext makes the next call of op answer with status.
func (s *Server) FailNext(op string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = status
}

// ReverseMessages makes GET messages answer newest first.
func (s *Server) ReverseMessages(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reversed = on
}

// OnSend registers a hook run inside the send handler before the reply is
// produced. Tests use it to hold a request in flight.
func (s *Server) OnSend(fn func(text string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSend = fn
}

// SetReply overrides the bot's answer.
func (s *Server) SetReply(fn func(text string) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = fn
}

// IssueToken signs a token for an arbitrary subject, e.g. one that does not
// exist, to exercise rejection paths.
func (s *Server) IssueToken(sub string, ttl time.Duration) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, _ := tok.SignedString(s.secret)
	return signed
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := s.app.Group("/auth")
	auth.Post("/register", s.register)
	auth.Post("/login", s.login)

	chats := s.app.Group("/chats", s.requireUser)
	chats.Get("/", s.listChats)
	chats.Post("/", s.createChat)
	chats.Get("/:id/messages", s.getMessages)
	chats.Post("/:id/message", s.sendMessage)
}

// now hands out strictly increasing timestamps so ordering is deterministic.
func (s *Server) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Server) injected(c *fiber.Ctx, op string) (bool, error) {
	s.mu.Lock()
	status, ok := s.failures[op]
	delete(s.failures, op)
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, c.Status(status).JSON(fiber.Map{"detail": "injected failure"})
}

func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}

func (s *Server) register(c *fiber.Ctx) error {
	if hit, err := s.injected(c, OpRegister); hit {
		return err
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "invalid body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") || req.Password == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"detail": []fiber.Map{{"loc": []string{"body", "email"}, "msg": "value is not a valid registration"}},
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return detail(c, fiber.StatusBadRequest, "Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	u := &user{id: uuid.NewString(), email: email, passwordHash: hash}
	s.users[email] = u

	return c.JSON(fiber.Map{"id": u.id, "email": u.email, "createdAt": s.now().Format(time.RFC3339)})
}

func (s *Server) login(c *fiber.Ctx) error {
	if hit, err := s.injected(c, OpLogin); hit {
		return err
	}
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationForm) {
		return detail(c, fiber.StatusUnprocessableEntity, "expected form data")
	}

	email := strings.ToLower(strings.TrimSpace(c.FormValue("username")))
	password := c.FormValue("password")

	s.mu.Lock()
	u, ok := s.users[email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return detail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	return c.JSON(fiber.Map{
		"access_token": s.IssueToken(u.id, 12*time.Hour),
		"token_type":   "bearer",
	})
}

func (s *Server) requireUser(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return detail(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return detail(c, fiber.StatusUnauthorized, "Invalid token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return detail(c, fiber.StatusUnauthorized, "Invalid token")
	}

	s.mu.Lock()
	known := false
	for _, u := range s.users {
		if u.id == sub {
			known = true
			break
		}
	}
	s.mu.Unlock()
	if !known {
		return detail(c, fiber.StatusUnauthorized, "Invalid token")
	}

	c.Locals("user_id", sub)
	return c.Next()
}

func chatJSON(ch *chat) fiber.Map {
	return fiber.Map{"id": ch.id, "createdAt": ch.createdAt.Format(time.RFC3339Nano)}
}

func messageJSON(m *message) fiber.Map {
	// zone-less, the way the real backend serialises stored datetimes
	return fiber.Map{
		"id":        m.id,
		"sender":    m.sender,
		"text":      m.text,
		"timestamp": m.timestamp.Format("2006-01-02T15:04:05.000000"),
	}
}

func (s *Server) listChats(c *fiber.Ctx) error {
	if hit, err := s.injected(c, OpListChats); hit {
		return err
	}
	userId := c.Locals("user_id").(string)

	s.mu.Lock()
	var owned []*chat
	for _, ch := range s.chats {
		if ch.userId == userId {
			owned = append(owned, ch)
		}
	}
	s.mu.Unlock()

	// newest first
	sort.Slice(owned, func(i, j int) bool { return owned[i].createdAt.After(owned[j].createdAt) })

	out := make([]fiber.Map, 0, len(owned))
	for _, ch := range owned {
		out = append(out, chatJSON(ch))
	}
	return c.JSON(out)
}

func (s *Server) createChat(c *fiber.Ctx) error {
	if hit, err := s.injected(c, OpCreateChat); hit {
		return err
	}

	s.mu.Lock()
	ch := &chat{id: uuid.NewString(), userId: c.Locals("user_id").(string), createdAt: s.now()}
	s.chats[ch.id] = ch
	s.mu.Unlock()

	return c.JSON(chatJSON(ch))
}

var errChatNotFound = errors.New("Chat not found")

func (s *Server) ownedChat(c *fiber.Ctx) (*chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.chats[c.Params("id")]
	if !ok || ch.userId != c.Locals("user_id").(string) {
		return nil, errChatNotFound
	}
	return ch, nil
}

func (s *Server) getMessages(c *fiber.Ctx) error {
	if hit, err := s.injected(c, OpGetMessages); hit {
		return err
	}
	ch, err := s.ownedChat(c)
	if err != nil {
		return detail(c, fiber.StatusNotFound, err.Error())
	}

	s.mu.Lock()
	msgs := append([]*message(nil), s.messages[ch.id]...)
	reversed := s.reversed
	s.mu.Unlock()

	out := make([]fiber.Map, 0, len(msgs))
	for i := range msgs {
		m := msgs[i]
		if reversed {
			m = msgs[len(msgs)-1-i]
		}
		out = append(out, messageJSON(m))
	}
	return c.JSON(out)
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	if hit, err := s.injected(c, OpSendMessage); hit {
		return err
	}
	ch, err := s.ownedChat(c)
	if err != nil {
		return detail(c, fiber.StatusNotFound, err.Error())
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "invalid body")
	}

	s.mu.Lock()
	hook := s.onSend
	s.mu.Unlock()
	if hook != nil {
		hook(req.Text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	userMsg := &message{id: uuid.NewString(), chatId: ch.id, sender: "user", text: req.Text, timestamp: s.now()}
	botMsg := &message{id: uuid.NewString(), chatId: ch.id, sender: "bot", text: s.reply(req.Text), timestamp: s.now()}
	s.messages[ch.id] = append(s.messages[ch.id], userMsg, botMsg)

	return c.JSON(messageJSON(botMsg))
}
