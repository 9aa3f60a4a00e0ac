package fakeapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/gamerhub/internal/model"
)

var kidsRatings = map[string]bool{
	"E": true, "EVERYONE": true, "E10+": true, "EVERYONE 10+": true, "EC": true,
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.instrument)

	r.POST("/auth/login", s.login)
	r.POST("/auth/register", s.register)

	authed := r.Group("/", s.requireAuth)
	authed.GET("/auth/me", s.me)
	authed.PUT("/auth/user", s.updateAccount)

	authed.GET("/profiles", s.listProfiles)
	authed.POST("/profiles", s.createProfile)
	authed.GET("/profiles/:id", s.getProfile)
	authed.PUT("/profiles/:id", s.updateProfile)
	authed.DELETE("/profiles/:id", s.deleteProfile)
	authed.GET("/profiles/:id/watchlist", s.getWatchlist)
	authed.POST("/profiles/:id/watchlist", s.addToWatchlist)
	authed.DELETE("/profiles/:id/watchlist/:gameId", s.removeFromWatchlist)
	authed.GET("/profiles/user/:id", s.requireRole(model.RoleAdmin), s.listUserProfiles)
	authed.GET("/profiles/export/watchlist-report", s.requireRole(model.RoleAdmin), s.watchlistReport)

	r.GET("/games/public", s.listGames)
	authed.GET("/games/validate-age/:gameId/:profileId", s.validateAge)
	authed.GET("/games/:id", s.getGame)

	content := authed.Group("/", s.requireRole(model.RoleAdmin, model.RoleOwner))
	content.GET("/games", s.listGames)
	content.POST("/games", s.createGame)
	content.PUT("/games/:id", s.updateGame)
	content.DELETE("/games/:id", s.deleteGame)
	content.POST("/games/import-popular", s.importPopular)

	admin := authed.Group("/users", s.requireRole(model.RoleAdmin))
	admin.GET("", s.listUsers)
	admin.POST("", s.createUser)
	admin.PUT("/:id", s.updateUser)
	admin.DELETE("/:id", s.deleteUser)
	admin.PUT("/:id/role", s.updateRole)

	return r
}

// Middleware

func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	sub, err := s.parse(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[sub]
	s.mu.Unlock()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user no longer exists"})
		return
	}

	c.Set("userID", sub)
	c.Set("role", acc.user.Role)
	c.Next()
}

func (s *Server) requireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

func userID(c *gin.Context) string {
	return c.GetString("userID")
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == model.RoleAdmin
}

// Auth

func (s *Server) login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	acc := s.accountByEmail(input.Email)
	s.mu.Unlock()

	if acc == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(input.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": s.Token(acc.user.ID), "user": acc.user})
}

func (s *Server) register(c *gin.Context) {
	var input model.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	s.mu.Lock()
	if s.accountByEmail(input.Email) != nil {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		return
	}
	u := s.addUserLocked(input.Name, input.Email, input.Password, model.RoleUser)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"token": s.Token(u.ID), "user": u})
}

func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.accounts[userID(c)].user)
}

func (s *Server) updateAccount(c *gin.Context) {
	var input model.AccountUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[userID(c)]

	if input.NewPassword != "" {
		if bcrypt.CompareHashAndPassword(acc.hash, []byte(input.CurrentPassword)) != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "current password is incorrect"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.MinCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		acc.hash = hash
	}
	if input.Name != "" {
		acc.user.Name = input.Name
	}

	c.JSON(http.StatusOK, acc.user)
}

func (s *Server) accountByEmail(email string) *account {
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, email) {
			return acc
		}
	}
	return nil
}

// Profiles

func (s *Server) profilesOf(uid string) []model.Profile {
	out := []model.Profile{}
	for _, p := range s.profiles {
		if p.UserID.String() == uid {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return idNum(out[i].ID) < idNum(out[j].ID) })
	return out
}

func idNum(id model.FlexID) int {
	s := id.String()
	n, _ := strconv.Atoi(s[strings.LastIndex(s, "-")+1:])
	return n
}

// ownedProfile returns the profile named in the path if the caller may access it
func (s *Server) ownedProfile(c *gin.Context, param string) *model.Profile {
	p, ok := s.profiles[c.Param(param)]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return nil
	}
	if p.UserID.String() != userID(c) && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your profile"})
		return nil
	}
	return p
}

func (s *Server) listProfiles(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.profilesOf(userID(c)))
}

func (s *Server) listUserProfiles(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.profilesOf(c.Param("id")))
}

func (s *Server) getProfile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.ownedProfile(c, "id"); p != nil {
		c.JSON(http.StatusOK, p)
	}
}

func (s *Server) createProfile(c *gin.Context) {
	var input model.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Name == "" || !input.Restriction.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and a valid allowedRating are required"})
		return
	}

	owner := userID(c)
	if input.UserID != "" && isAdmin(c) {
		owner = input.UserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Profile{
		ID:          model.FlexID(s.newID("p")),
		Name:        input.Name,
		Restriction: input.Restriction,
		UserID:      model.FlexID(owner),
	}
	s.profiles[p.ID.String()] = p
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProfile(c *gin.Context) {
	var input model.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.ownedProfile(c, "id")
	if p == nil {
		return
	}
	if input.Name != "" {
		p.Name = input.Name
	}
	if input.Restriction.Valid() {
		p.Restriction = input.Restriction
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProfile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.ownedProfile(c, "id")
	if p == nil {
		return
	}
	delete(s.profiles, p.ID.String())
	delete(s.watchlists, p.ID.String())
	c.JSON(http.StatusOK, gin.H{"message": "profile deleted"})
}

// Watchlists

func (s *Server) findGame(alias string) *model.Game {
	for _, g := range s.games {
		if g.HasAlias(alias) {
			return g
		}
	}
	return nil
}

func (s *Server) getWatchlist(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.ownedProfile(c, "id")
	if p == nil {
		return
	}

	games := []model.Game{}
	for _, id := range s.watchlists[p.ID.String()] {
		if g := s.findGame(id); g != nil {
			games = append(games, *g)
		}
	}
	c.JSON(http.StatusOK, games)
}

func (s *Server) addToWatchlist(c *gin.Context) {
	var input struct {
		GameID string `json:"gameId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.GameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gameId is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.ownedProfile(c, "id")
	if p == nil {
		return
	}
	g := s.findGame(input.GameID)
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	key := p.ID.String()
	for _, id := range s.watchlists[key] {
		if g.HasAlias(id) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "game is already in the watchlist"})
			return
		}
	}
	id, _ := model.ResolveGameIdentity(*g)
	s.watchlists[key] = append(s.watchlists[key], string(id))
	c.JSON(http.StatusCreated, gin.H{"message": "game added to watchlist"})
}

func (s *Server) removeFromWatchlist(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.ownedProfile(c, "id")
	if p == nil {
		return
	}

	key := p.ID.String()
	target := c.Param("gameId")
	g := s.findGame(target)
	for i, id := range s.watchlists[key] {
		if id == target || (g != nil && g.HasAlias(id)) {
			s.watchlists[key] = append(s.watchlists[key][:i], s.watchlists[key][i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "game removed from watchlist"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "game is not in the watchlist"})
}

func (s *Server) watchlistReport(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"profile", "user", "game"})

	ids := make([]string, 0, len(s.watchlists))
	for id := range s.watchlists {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, pid := range ids {
		p, ok := s.profiles[pid]
		if !ok {
			continue
		}
		owner := ""
		if acc, ok := s.accounts[p.UserID.String()]; ok {
			owner = acc.user.Email
		}
		for _, gid := range s.watchlists[pid] {
			name := gid
			if g := s.findGame(gid); g != nil {
				name = g.Name
			}
			_ = w.Write([]string{p.Name, owner, name})
		}
	}
	w.Flush()

	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// Games

func (s *Server) listGames(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	search := strings.ToLower(c.Query("search"))
	genre := c.Query("genre")
	platform := c.Query("platform")

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []model.Game{}
	for _, g := range s.games {
		if search != "" && !strings.Contains(strings.ToLower(g.Name), search) {
			continue
		}
		if genre != "" && !contains(g.Genres, genre) {
			continue
		}
		if platform != "" && !contains(g.Platforms, platform) {
			continue
		}
		matched = append(matched, *g)
	}

	total := len(matched)
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	c.JSON(http.StatusOK, model.GameListing{Games: matched[start:end], Total: total})
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func (s *Server) getGame(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.findGame(c.Param("id"))
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func applyGameInput(g *model.Game, input model.GameInput) {
	g.Name = input.Name
	g.Description = input.Description
	g.Released = input.Released
	g.AgeRating = input.AgeRating
	g.Genres = input.Genres
	g.Platforms = input.Platforms
	g.BackgroundImage = input.BackgroundImage
	g.Metacritic = input.Metacritic
	g.Website = input.Website
	if input.Rating != 0 {
		rating := input.Rating
		g.Rating = &rating
	}
}

func (s *Server) createGame(c *gin.Context) {
	var input model.GameInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := &model.Game{StoreID: model.FlexID(s.newID("g"))}
	applyGameInput(g, input)
	s.games = append(s.games, g)
	c.JSON(http.StatusCreated, g)
}

func (s *Server) updateGame(c *gin.Context) {
	var input model.GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.findGame(c.Param("id"))
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	applyGameInput(g, input)
	c.JSON(http.StatusOK, g)
}

func (s *Server) deleteGame(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.games {
		if g.HasAlias(c.Param("id")) {
			s.games = append(s.games[:i], s.games[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "game deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
}

func (s *Server) importPopular(c *gin.Context) {
	var input struct {
		Count int `json:"cantidad"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Count < 1 || input.Count > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cantidad must be between 1 and 1000"})
		return
	}

	ratings := []string{"E", "E10+", "T", "M"}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < input.Count; i++ {
		id := s.newID("rawg")
		s.games = append(s.games, &model.Game{
			ExternalID: model.FlexID(id),
			Name:       fmt.Sprintf("Popular %s", id),
			AgeRating:  ratings[i%len(ratings)],
			Genres:     []string{"Action"},
			Platforms:  []string{"PC"},
		})
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d games imported", input.Count), "imported": input.Count})
}

func (s *Server) validateAge(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.findGame(c.Param("gameId"))
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	p := s.ownedProfile(c, "profileId")
	if p == nil {
		return
	}

	if verdict, ok := s.verdicts[c.Param("gameId")]; ok {
		c.JSON(http.StatusOK, gin.H{"isAllowed": verdict})
		return
	}

	allowed := true
	if p.Restriction == model.RestrictionKids {
		rating, ok := g.ContentRating()
		allowed = ok && kidsRatings[strings.ToUpper(rating)]
	}
	c.JSON(http.StatusOK, gin.H{"isAllowed": allowed})
}

// Users

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]model.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.user)
	}
	sort.Slice(users, func(i, j int) bool { return idNum(users[i].ID) < idNum(users[j].ID) })
	c.JSON(http.StatusOK, users)
}

func (s *Server) createUser(c *gin.Context) {
	var input model.UserInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	role := input.Role
	if role == "" {
		role = model.RoleUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountByEmail(input.Email) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		return
	}
	c.JSON(http.StatusCreated, s.addUserLocked(input.Name, input.Email, input.Password, role))
}

func (s *Server) updateUser(c *gin.Context) {
	var input model.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if input.Name != "" {
		acc.user.Name = input.Name
	}
	if input.Role.Valid() {
		acc.user.Role = input.Role
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.MinCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		acc.hash = hash
	}
	c.JSON(http.StatusOK, acc.user)
}

func (s *Server) deleteUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	if _, ok := s.accounts[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	delete(s.accounts, id)
	for pid, p := range s.profiles {
		if p.UserID.String() == id {
			delete(s.profiles, pid)
			delete(s.watchlists, pid)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (s *Server) updateRole(c *gin.Context) {
	var input struct {
		Role model.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || !input.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	acc.user.Role = input.Role
	c.JSON(http.StatusOK, acc.user)
}
