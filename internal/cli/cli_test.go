package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/testutil/fakeapi"
)

type CLISuite struct {
	suite.Suite
	api   *fakeapi.Server
	state string
	user  model.User
	admin model.User
	kid   model.Profile
	adult model.Profile
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.T().Setenv("GAMERHUB_TOKEN", "")
	s.api = fakeapi.New(s.T())
	s.state = filepath.Join(s.T().TempDir(), "state.json")

	s.user = s.api.AddUser("Ana", "ana@example.com", "secret1", model.RoleUser)
	s.admin = s.api.AddUser("Root", "root@example.com", "secret1", model.RoleAdmin)
	s.kid = s.api.AddProfile(s.user.ID, "Kid", model.RestrictionKids)
	s.adult = s.api.AddProfile(s.user.ID, "Parent", model.RestrictionAdults)
	s.api.AddGames(fakeapi.Games("e", 3, "E")...)
	s.api.AddGames(fakeapi.Games("m", 2, "M")...)
}

// run executes the CLI with JSON output against the fake API
func (s *CLISuite) run(args ...string) (string, error) {
	return s.runAs("json", args...)
}

func (s *CLISuite) runAs(format string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	full := append([]string{"--api-url", s.api.URL(), "--state-file", s.state, "-o", format}, args...)
	err := Run(context.Background(), full, &stdout, &stderr)
	return stdout.String(), err
}

func (s *CLISuite) decode(output string, v any) {
	s.Require().NoError(json.Unmarshal([]byte(output), v), "output: %s", output)
}

func (s *CLISuite) login(email string) {
	out, err := s.run("auth", "login", "--email", email, "--password", "secret1")
	s.Require().NoError(err, "output: %s", out)
}

func (s *CLISuite) selectProfile(p model.Profile) {
	out, err := s.run("profile", "select", p.ID.String())
	s.Require().NoError(err, "output: %s", out)
}

// Auth

func (s *CLISuite) TestLoginPersistsSession() {
	out, err := s.run("auth", "login", "--email", "ana@example.com", "--password", "secret1")
	s.Require().NoError(err)
	var user model.User
	s.decode(out, &user)
	s.Equal(s.user.ID, user.ID)

	out, err = s.run("auth", "me")
	s.Require().NoError(err)
	s.decode(out, &user)
	s.Equal("ana@example.com", user.Email)
	s.FileExists(s.state)
}

func (s *CLISuite) TestStatusFollowsSession() {
	var status SessionStatus
	out, err := s.run("auth", "status")
	s.Require().NoError(err)
	s.decode(out, &status)
	s.Equal("unauthenticated", status.State)
	s.Nil(status.User)

	s.login("ana@example.com")
	out, err = s.run("auth", "status")
	s.Require().NoError(err)
	s.decode(out, &status)
	s.Equal("needs-profile", status.State)
	s.Equal("Ana", status.User.Name)
	s.Empty(status.Permissions)

	s.selectProfile(s.kid)
	out, err = s.run("auth", "status")
	s.Require().NoError(err)
	s.decode(out, &status)
	s.Equal("profile-selected", status.State)
	s.Equal(s.kid.ID, status.Profile.ID)
}

func (s *CLISuite) TestStatusListsAdminPermissions() {
	s.login("root@example.com")

	out, err := s.runAs("text", "auth", "status")
	s.Require().NoError(err)
	s.Contains(out, "State: needs-profile")
	s.Contains(out, "Permissions: manage_users, manage_profiles, manage_content")
}

func (s *CLISuite) TestSavedSessionSurvivesAPIOutage() {
	s.login("ana@example.com")
	s.api.Fail("GET /auth/me", 503, 0)

	_, err := s.run("profile", "list")
	s.Require().Error(err)
	s.Contains(err.Error(), "could not reach the API")

	s.api.ClearFailures()
	out, err := s.run("auth", "me")
	s.Require().NoError(err)
	var user model.User
	s.decode(out, &user)
	s.Equal(s.user.ID, user.ID)
}

func (s *CLISuite) TestLoginWithWrongPassword() {
	_, err := s.run("auth", "login", "--email", "ana@example.com", "--password", "wrong-1")

	s.EqualError(err, "invalid email or password")
}

func (s *CLISuite) TestLoginValidatesEmail() {
	_, err := s.run("auth", "login", "--email", "not-an-email", "--password", "secret1")

	s.Require().Error(err)
	s.Equal("please enter a valid email", describe(err))
	s.Equal(0, s.api.Requests("POST /auth/login"))
}

func (s *CLISuite) TestRegisterLogsIn() {
	out, err := s.run("auth", "register", "--name", "Bea", "--email", "bea@example.com", "--password", "secret2")
	s.Require().NoError(err)
	var user model.User
	s.decode(out, &user)
	s.Equal("Bea", user.Name)

	_, err = s.run("auth", "me")
	s.NoError(err)
}

func (s *CLISuite) TestRegisterRejectsMismatchedConfirmation() {
	_, err := s.run("auth", "register", "--name", "Bea", "--email", "bea@example.com",
		"--password", "secret2", "--confirm", "secret3")

	s.Require().Error(err)
	s.Equal("passwords do not match", describe(err))
}

func (s *CLISuite) TestLogoutForgetsSession() {
	s.login("ana@example.com")

	_, err := s.run("auth", "logout")
	s.Require().NoError(err)

	_, err = s.run("auth", "me")
	s.ErrorContains(err, "not logged in")
}

func (s *CLISuite) TestUpdateWithNothingToChange() {
	s.login("ana@example.com")

	_, err := s.run("auth", "update", "--name", "Ana")

	s.ErrorContains(err, "nothing to update")
}

func (s *CLISuite) TestTokenFlagIsNotPersisted() {
	out, err := s.run("--token", s.api.Token(s.user.ID), "auth", "me")
	s.Require().NoError(err)
	var user model.User
	s.decode(out, &user)
	s.Equal(s.user.ID, user.ID)

	_, err = s.run("auth", "me")
	s.ErrorContains(err, "not logged in")
	s.NoFileExists(s.state)
}

// Profiles

func (s *CLISuite) TestCommandsRequireLogin() {
	_, err := s.run("profile", "list")

	s.ErrorContains(err, "not logged in")
}

func (s *CLISuite) TestProfileSelectionPersists() {
	s.login("ana@example.com")
	s.selectProfile(s.kid)

	out, err := s.run("profile", "current")
	s.Require().NoError(err)
	var current model.Profile
	s.decode(out, &current)
	s.Equal(s.kid.ID, current.ID)

	out, err = s.run("profile", "list")
	s.Require().NoError(err)
	var list ProfileList
	s.decode(out, &list)
	s.Len(list.Profiles, 2)
	s.Equal(s.kid.ID.String(), list.Active)
}

func (s *CLISuite) TestProfileCurrentWithoutSelection() {
	s.login("ana@example.com")

	_, err := s.run("profile", "current")

	s.EqualError(err, "no profile selected")
}

func (s *CLISuite) TestProfileCreateUpdateDelete() {
	s.login("ana@example.com")

	out, err := s.run("profile", "create", "--name", "Teen", "--rating", "kids")
	s.Require().NoError(err)
	var created model.Profile
	s.decode(out, &created)
	s.Equal(model.RestrictionKids, created.Restriction)

	out, err = s.run("profile", "update", created.ID.String(), "--name", "Older teen")
	s.Require().NoError(err)
	var updated model.Profile
	s.decode(out, &updated)
	s.Equal("Older teen", updated.Name)
	s.Equal(model.RestrictionKids, updated.Restriction)

	_, err = s.run("profile", "delete", created.ID.String())
	s.Require().NoError(err)
	_, err = s.run("profile", "select", created.ID.String())
	s.Error(err)
}

func (s *CLISuite) TestProfileCreateRejectsUnknownRating() {
	s.login("ana@example.com")

	_, err := s.run("profile", "create", "--name", "Teen", "--rating", "teens")

	s.Require().Error(err)
	s.Equal(0, s.api.Requests("POST /profiles"))
}

// Catalog

func (s *CLISuite) TestCatalogRequiresProfile() {
	s.login("ana@example.com")

	_, err := s.run("catalog", "browse")

	s.ErrorContains(err, "no profile selected")
}

func (s *CLISuite) TestKidsCatalogShowsOnlyAppropriateGames() {
	s.login("ana@example.com")
	s.selectProfile(s.kid)

	out, err := s.run("catalog", "browse")
	s.Require().NoError(err)
	var page CatalogPage
	s.decode(out, &page)

	s.True(page.Kids)
	s.Equal(3, page.Total)
	for _, row := range page.Games {
		s.Equal("E", row.Game.AgeRating)
	}
}

func (s *CLISuite) TestProfileFlagActsAsAnotherProfile() {
	s.login("ana@example.com")
	s.selectProfile(s.kid)

	out, err := s.run("--profile", s.adult.ID.String(), "catalog", "browse")
	s.Require().NoError(err)
	var page CatalogPage
	s.decode(out, &page)

	s.False(page.Kids)
	s.Equal(5, page.Total)
	s.Equal(s.adult.ID, page.Profile.ID)
}

func (s *CLISuite) TestCatalogCompactPages() {
	s.api.AddGames(fakeapi.Games("x", 10, "T")...)
	s.login("ana@example.com")
	s.selectProfile(s.adult)

	out, err := s.run("catalog", "browse", "--compact", "--page", "2")
	s.Require().NoError(err)
	var page CatalogPage
	s.decode(out, &page)

	s.Equal(2, page.Page)
	s.Equal(2, page.TotalPages)
	s.Len(page.Games, 7)
}

func (s *CLISuite) TestCatalogMarksWatchedGames() {
	s.api.Watch(s.adult.ID, "m-1")
	s.login("ana@example.com")
	s.selectProfile(s.adult)

	out, err := s.run("catalog", "browse", "--search", "m game")
	s.Require().NoError(err)
	var page CatalogPage
	s.decode(out, &page)

	s.Require().Len(page.Games, 2)
	s.True(page.Games[0].Watched)
	s.False(page.Games[1].Watched)
}

func (s *CLISuite) TestCatalogTextOutput() {
	s.login("ana@example.com")
	s.selectProfile(s.kid)

	out, err := s.runAs("text", "catalog", "browse")
	s.Require().NoError(err)

	s.Contains(out, "Catalog for Kid")
	s.Contains(out, "Showing kid-friendly content")
	s.Contains(out, "e game 1")
	s.NotContains(out, "m game 1")
}

// Games

func (s *CLISuite) TestGameGet() {
	s.login("ana@example.com")
	s.selectProfile(s.adult)

	out, err := s.run("game", "get", "m-2")
	s.Require().NoError(err)
	var details GameDetails
	s.decode(out, &details)

	s.Equal("m-2", details.ID)
	s.Equal("m game 2", details.Game.Name)
}

func (s *CLISuite) TestGameGetRestrictedForKids() {
	s.login("ana@example.com")
	s.selectProfile(s.kid)

	_, err := s.run("game", "get", "m-1")

	s.EqualError(err, "this game is not available for the Kid profile")
}

func (s *CLISuite) TestGameGetFollowsServerVerdict() {
	s.api.SetAgeVerdict("e-1", false)
	s.login("ana@example.com")
	s.selectProfile(s.kid)

	_, err := s.run("game", "get", "e-1")
	s.Error(err)

	out, err := s.run("game", "check-age", "e-1")
	s.Require().NoError(err)
	var check AgeCheck
	s.decode(out, &check)
	s.False(check.Allowed)
	s.Equal(s.kid.ID.String(), check.ProfileID)
}

func (s *CLISuite) TestGameGetFailedAgeCheckShowsNothing() {
	s.login("ana@example.com")
	s.selectProfile(s.adult)
	s.api.Fail("GET /games/validate-age/:gameId/:profileId", 500, 1)

	out, err := s.run("game", "get", "e-1")

	s.ErrorContains(err, "could not verify the age rating")
	s.Empty(out)
}

func (s *CLISuite) TestGameGetNotFound() {
	s.login("ana@example.com")
	s.selectProfile(s.adult)

	_, err := s.run("game", "get", "missing")

	s.Require().Error(err)
	s.Equal("game not found", describe(err))
}

// Watchlist

func (s *CLISuite) TestWatchlistAddListToggle() {
	s.login("ana@example.com")
	s.selectProfile(s.adult)

	out, err := s.run("watchlist", "add", "m-1")
	s.Require().NoError(err)
	var result WatchResult
	s.decode(out, &result)
	s.True(result.Watched)
	s.Equal(string(model.NoticeSuccess), result.Level)

	out, err = s.run("watchlist", "list")
	s.Require().NoError(err)
	var list Watchlist
	s.decode(out, &list)
	s.Require().Len(list.Games, 1)
	s.Equal("m-1", list.Games[0].ID)

	out, err = s.run("watchlist", "toggle", "m-1")
	s.Require().NoError(err)
	s.decode(out, &result)
	s.False(result.Watched)
	s.Empty(s.api.WatchlistIDs(s.adult.ID))
}

func (s *CLISuite) TestWatchlistAddDuplicateIsANotice() {
	s.api.Watch(s.adult.ID, "m-1")
	s.login("ana@example.com")
	s.selectProfile(s.adult)

	out, err := s.run("watchlist", "add", "m-1")
	s.Require().NoError(err)
	var result WatchResult
	s.decode(out, &result)

	s.True(result.Watched)
	s.Equal(string(model.NoticeInfo), result.Level)
}

func (s *CLISuite) TestWatchlistRemoveMissingIsANotice() {
	s.login("ana@example.com")
	s.selectProfile(s.adult)

	out, err := s.run("watchlist", "remove", "e-1")
	s.Require().NoError(err)
	var result WatchResult
	s.decode(out, &result)

	s.False(result.Watched)
	s.Equal("This game is no longer in the watchlist", result.Message)
}

func (s *CLISuite) TestKidCannotWatchRestrictedGame() {
	s.login("ana@example.com")
	s.selectProfile(s.kid)

	_, err := s.run("watchlist", "add", "m-1")

	s.EqualError(err, "This game is not available for this profile")
	s.Equal(0, s.api.Requests("POST /profiles/:id/watchlist"))
}

func (s *CLISuite) TestWatchlistsArePerProfile() {
	s.api.Watch(s.adult.ID, "m-1")
	s.login("ana@example.com")

	out, err := s.run("--profile", s.kid.ID.String(), "watchlist", "list")
	s.Require().NoError(err)
	var list Watchlist
	s.decode(out, &list)

	s.Empty(list.Games)
	s.Equal("Kid", list.Profile.Name)
}

// Admin

func (s *CLISuite) TestAdminRequiresAdminRole() {
	s.login("ana@example.com")

	_, err := s.run("admin", "users", "list")

	s.EqualError(err, "You do not have permission to access this page")
	s.Equal(0, s.api.Requests("GET /users"))
}

func (s *CLISuite) TestAdminRequiresLogin() {
	_, err := s.run("admin", "games", "list")

	s.ErrorContains(err, "not logged in")
}

func (s *CLISuite) TestAdminManagesUsers() {
	s.login("root@example.com")

	out, err := s.run("admin", "users", "create", "--name", "Cleo", "--email", "cleo@example.com", "--password", "secret3")
	s.Require().NoError(err)
	var created model.User
	s.decode(out, &created)
	s.Equal(model.RoleUser, created.Role)

	out, err = s.run("admin", "users", "update", created.ID.String(), "--name", "Cleopatra")
	s.Require().NoError(err)
	var updated model.User
	s.decode(out, &updated)
	s.Equal("Cleopatra", updated.Name)
	s.Equal("cleo@example.com", updated.Email)

	out, err = s.run("admin", "users", "role", created.ID.String(), "owner")
	s.Require().NoError(err)
	s.decode(out, &updated)
	s.Equal(model.RoleOwner, updated.Role)

	out, err = s.run("admin", "users", "add-profile", created.ID.String(), "--name", "Little", "--rating", "KIDS")
	s.Require().NoError(err)
	var profile model.Profile
	s.decode(out, &profile)
	s.Equal(created.ID, profile.UserID)

	out, err = s.run("admin", "users", "list")
	s.Require().NoError(err)
	var users []model.User
	s.decode(out, &users)
	s.Len(users, 3)

	_, err = s.run("admin", "users", "delete", created.ID.String())
	s.Require().NoError(err)
}

func (s *CLISuite) TestAdminRejectsUnknownRole() {
	s.login("root@example.com")

	_, err := s.run("admin", "users", "role", s.user.ID.String(), "superuser")

	s.Require().Error(err)
	s.Equal("role must be one of user, admin, owner", describe(err))
}

func (s *CLISuite) TestAdminUpdateUnknownUser() {
	s.login("root@example.com")

	_, err := s.run("admin", "users", "update", "u-999", "--name", "Ghost")

	s.EqualError(err, "user u-999 not found")
}

func (s *CLISuite) TestAdminDeletesAnyProfile() {
	s.login("root@example.com")

	_, err := s.run("admin", "users", "delete-profile", s.kid.ID.String())
	s.Require().NoError(err)

	out, err := s.run("admin", "users", "list")
	s.Require().NoError(err)
	var users []model.User
	s.decode(out, &users)
	for _, u := range users {
		for _, p := range u.Profiles {
			s.NotEqual(s.kid.ID, p.ID)
		}
	}
}

func (s *CLISuite) TestAdminManagesGames() {
	s.login("root@example.com")

	out, err := s.run("admin", "games", "create",
		"--name", "Space Trip",
		"--description", "A long trip through space",
		"--platforms", "PC, Switch",
		"--genres", "Adventure",
		"--esrb", "e10+",
		"--metacritic", "81")
	s.Require().NoError(err)
	var created GameDetails
	s.decode(out, &created)
	s.Equal([]string{"PC", "Switch"}, created.Game.Platforms)
	s.NotEmpty(created.ID)

	out, err = s.run("admin", "games", "update", created.ID, "--name", "Space Trip II")
	s.Require().NoError(err)
	var updated GameDetails
	s.decode(out, &updated)
	s.Equal("Space Trip II", updated.Game.Name)
	s.Equal([]string{"Adventure"}, updated.Game.Genres)

	out, err = s.run("admin", "games", "list", "--search", "Space")
	s.Require().NoError(err)
	var games AdminGames
	s.decode(out, &games)
	s.Equal(1, games.Total)

	_, err = s.run("admin", "games", "delete", created.ID)
	s.Require().NoError(err)
	_, err = s.run("admin", "games", "get", created.ID)
	s.Error(err)
}

func (s *CLISuite) TestAdminCreateGameValidates() {
	s.login("root@example.com")

	_, err := s.run("admin", "games", "create", "--name", "Short", "--description", "tiny",
		"--platforms", "PC", "--genres", "Action", "--esrb", "E")

	s.Require().Error(err)
	s.Contains(describe(err), "description must be at least 10 characters")
	s.Equal(0, s.api.Requests("POST /games"))
}

func (s *CLISuite) TestAdminListsEveryRating() {
	s.login("root@example.com")

	out, err := s.run("admin", "games", "list")
	s.Require().NoError(err)
	var games AdminGames
	s.decode(out, &games)

	s.Equal(5, games.Total)
}

func (s *CLISuite) TestAdminImport() {
	s.login("root@example.com")

	out, err := s.run("admin", "import", "4")
	s.Require().NoError(err)
	var result backend.ImportResult
	s.decode(out, &result)
	s.Equal(4, result.Imported)

	_, err = s.run("admin", "import", "0")
	s.Error(err)
	_, err = s.run("admin", "import", "many")
	s.ErrorContains(err, "count must be a whole number")
}

func (s *CLISuite) TestAdminReport() {
	s.api.Watch(s.adult.ID, "m-1")
	s.login("root@example.com")

	out, err := s.run("admin", "report")
	s.Require().NoError(err)
	s.Contains(out, "profile,user,game")
	s.Contains(out, "Parent,ana@example.com,m game 1")

	file := filepath.Join(s.T().TempDir(), "report.csv")
	_, err = s.run("admin", "report", "--file", file)
	s.Require().NoError(err)
	data, err := os.ReadFile(file)
	s.Require().NoError(err)
	s.Equal(out, string(data))
}

// Output

func (s *CLISuite) TestJSONErrorOutput() {
	var buf bytes.Buffer
	NewOutput("json", &buf, &buf).PrintError(&backend.Error{Status: 404, Message: "game not found"})

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	s.decode(buf.String(), &payload)
	s.Equal("game not found", payload.Error.Message)
}

func (s *CLISuite) TestTextProfileListMarksActive() {
	s.login("ana@example.com")
	s.selectProfile(s.adult)

	out, err := s.runAs("text", "profile", "list")
	s.Require().NoError(err)

	s.Contains(out, "* "+s.adult.ID.String()+"  Parent (Adults)")
	s.Contains(out, "  "+s.kid.ID.String()+"  Kid (Kids)")
}
