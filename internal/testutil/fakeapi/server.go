// Package fakeapi is an in-memory GamerHub REST API for tests. It implements
// the endpoints the client consumes, counts requests per route and can inject
// failures on demand.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/gamerhub/internal/model"
)

// DropConnection as a failure status closes the connection without a response
const DropConnection = 0

type account struct {
	user model.User
	hash []byte
}

type failure struct {
	status    int
	remaining int // <= 0 means until cleared
}

// Server is a fake GamerHub API
type Server struct {
	mu sync.Mutex

	accounts   map[string]*account
	profiles   map[string]*model.Profile
	games      []*model.Game
	watchlists map[string][]string
	verdicts   map[string]bool

	requests map[string]int
	failures map[string]*failure
	holds    map[string]chan struct{}
	nextID   int

	secret   []byte
	tokenTTL time.Duration

	engine *gin.Engine
	http   *httptest.Server
}

// New starts a fake API that is shut down when the test ends
func New(t testing.TB) *Server {
	t.Helper()
	s := NewUnstarted()
	s.http = httptest.NewServer(s.engine)
	t.Cleanup(s.Close)
	return s
}

// NewUnstarted creates a fake API without listening; use Handler to serve it
func NewUnstarted() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		accounts:   make(map[string]*account),
		profiles:   make(map[string]*model.Profile),
		watchlists: make(map[string][]string),
		verdicts:   make(map[string]bool),
		requests:   make(map[string]int),
		failures:   make(map[string]*failure),
		holds:      make(map[string]chan struct{}),
		secret:     []byte("fakeapi-secret"),
		tokenTTL:   time.Hour,
	}
	s.engine = s.routes()
	return s
}

// URL returns the API root
func (s *Server) URL() string {
	return s.http.URL
}

// Handler returns the API as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Close shuts the listener down
func (s *Server) Close() {
	if s.http != nil {
		s.http.Close()
	}
}

func (s *Server) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

// Seeding

// AddUser creates an account and returns it
func (s *Server) AddUser(name, email, password string, role model.Role) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, password, role)
}

func (s *Server) addUserLocked(name, email, password string, role model.Role) model.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u := model.User{ID: model.FlexID(s.newID("u")), Name: name, Email: email, Role: role}
	s.accounts[u.ID.String()] = &account{user: u, hash: hash}
	return u
}

// AddProfile creates a profile owned by userID
func (s *Server) AddProfile(userID model.FlexID, name string, restriction model.Restriction) model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Profile{ID: model.FlexID(s.newID("p")), Name: name, Restriction: restriction, UserID: userID}
	s.profiles[p.ID.String()] = p
	return *p
}

// AddGames appends games to the catalog in order, exactly as given
func (s *Server) AddGames(games ...model.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range games {
		g := games[i]
		s.games = append(s.games, &g)
	}
}

// Watch puts a game on a profile's watchlist
func (s *Server) Watch(profileID model.FlexID, gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchlists[profileID.String()] = append(s.watchlists[profileID.String()], gameID)
}

// WatchlistIDs returns the game ids saved by a profile
func (s *Server) WatchlistIDs(profileID model.FlexID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.watchlists[profileID.String()]...)
}

// SetAgeVerdict forces the age-gate answer for a game regardless of its rating
func (s *Server) SetAgeVerdict(gameID string, allowed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdicts[gameID] = allowed
}

// Games generates n games with ids prefix-1..prefix-n and the given rating
func Games(prefix string, n int, rating string) []model.Game {
	games := make([]model.Game, n)
	for i := range games {
		games[i] = model.Game{
			StoreID:   model.FlexID(fmt.Sprintf("%s-%d", prefix, i+1)),
			Name:      fmt.Sprintf("%s game %d", prefix, i+1),
			AgeRating: rating,
			Genres:    []string{"Action"},
			Platforms: []string{"PC"},
		}
	}
	return games
}

// Tokens

// Token issues a valid bearer token for userID
func (s *Server) Token(userID model.FlexID) string {
	return s.sign(userID.String(), time.Now().Add(s.tokenTTL))
}

// ExpiredToken issues a token for userID that expired an hour ago
func (s *Server) ExpiredToken(userID model.FlexID) string {
	return s.sign(userID.String(), time.Now().Add(-time.Hour))
}

func (s *Server) sign(sub string, exp time.Time) string {
	claims := jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return token
}

func (s *Server) parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

// Request accounting and failure injection

// Requests returns how many requests hit a route, e.g. "GET /games/public"
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

// ResetRequests zeroes every request counter
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = make(map[string]int)
}

// Fail makes the next times requests to route fail with status. A times of
// zero fails until ClearFailures; a status of DropConnection closes the
// connection without a response.
func (s *Server) Fail(route string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = &failure{status: status, remaining: times}
}

// ClearFailures removes every injected failure
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]*failure)
}

// Hold parks requests to route until release is called. Requests are
// counted before they park.
func (s *Server) Hold(route string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.holds[route] == gate {
				delete(s.holds, route)
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

func (s *Server) instrument(c *gin.Context) {
	route := c.Request.Method + " " + c.FullPath()

	s.mu.Lock()
	s.requests[route]++
	gate := s.holds[route]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}

	s.mu.Lock()
	f, failing := s.failures[route]
	if failing && f.remaining > 0 {
		f.remaining--
		if f.remaining == 0 {
			delete(s.failures, route)
		}
	}
	s.mu.Unlock()

	if !failing {
		c.Next()
		return
	}

	if f.status == DropConnection {
		if conn, _, err := c.Writer.Hijack(); err == nil {
			_ = conn.Close()
		}
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(f.status, gin.H{"error": strings.ToLower(http.StatusText(f.status))})
}
