package watchlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/dependencies/mocks"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/session"
	"github.com/mcoot/gamerhub/internal/storage/memory"
	"github.com/mcoot/gamerhub/internal/testutil"
	"github.com/mcoot/gamerhub/internal/testutil/fakeapi"
)

const (
	getRoute    = "GET /profiles/:id/watchlist"
	addRoute    = "POST /profiles/:id/watchlist"
	removeRoute = "DELETE /profiles/:id/watchlist/:gameId"
)

type StoreSuite struct {
	suite.Suite
	api   *fakeapi.Server
	store *Store
	kid   model.Profile
	adult model.Profile
	zelda model.Game
	doom  model.Game
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.api = fakeapi.New(s.T())

	user := s.api.AddUser("Ana", "ana@example.com", "secret1", model.RoleUser)
	s.kid = s.api.AddProfile(user.ID, "Kid", model.RestrictionKids)
	s.adult = s.api.AddProfile(user.ID, "Parent", model.RestrictionAdults)

	s.zelda = model.Game{StoreID: "g-zelda", ExternalID: "rawg-7", Name: "Zelda", AgeRating: "E"}
	s.doom = model.Game{StoreID: "g-doom", Name: "Doom", AgeRating: "M"}
	s.api.AddGames(s.zelda, s.doom)

	logger := testutil.NopLogger()
	sess := session.New(memory.New(), "browser-1", backend.NewClient(s.api.URL()), mocks.NewMockClock(time.Now()), logger)
	_, err := sess.Login(s.ctx, "ana@example.com", "secret1")
	s.Require().NoError(err)

	s.store = NewStore(sess, logger)
}

func (s *StoreSuite) TestLoadFetchesProfileWatchlist() {
	s.api.Watch(s.adult.ID, "g-doom")

	err := s.store.Load(s.ctx, &s.adult)
	s.Require().NoError(err)

	s.True(s.store.Loaded())
	s.Len(s.store.Games(), 1)
	s.True(s.store.Contains("g-doom"))
	s.False(s.store.Contains("g-zelda"))
}

func (s *StoreSuite) TestLoadOtherProfileReplacesList() {
	s.api.Watch(s.adult.ID, "g-doom")
	_ = s.store.Load(s.ctx, &s.adult)

	err := s.store.Load(s.ctx, &s.kid)
	s.Require().NoError(err)
	s.Empty(s.store.Games())
	s.Equal(s.kid.ID, s.store.Profile().ID)
}

func (s *StoreSuite) TestLoadNilEmpties() {
	s.api.Watch(s.adult.ID, "g-doom")
	_ = s.store.Load(s.ctx, &s.adult)

	s.Require().NoError(s.store.Load(s.ctx, nil))
	s.Nil(s.store.Profile())
	s.Empty(s.store.Games())
	s.False(s.store.Loaded())
}

func (s *StoreSuite) TestContainsMatchesAnyAlias() {
	s.api.Watch(s.kid.ID, "rawg-7")
	_ = s.store.Load(s.ctx, &s.kid)

	s.True(s.store.Contains("g-zelda"))
	s.True(s.store.Contains("rawg-7"))
	s.True(s.store.Has(model.Game{ExternalID: "rawg-7"}))
	s.False(s.store.Contains(""))
}

func (s *StoreSuite) TestAddConfirmsAndRefreshes() {
	_ = s.store.Load(s.ctx, &s.kid)
	s.api.ResetRequests()

	out, err := s.store.Add(s.ctx, s.zelda)
	s.Require().NoError(err)

	s.True(out.Present)
	s.Equal(model.NoticeSuccess, out.Notice.Level)
	s.True(s.store.Contains("g-zelda"))
	s.Equal(1, s.api.Requests(addRoute))
	s.Equal(1, s.api.Requests(getRoute))
	s.Equal([]string{"g-zelda"}, s.api.WatchlistIDs(s.kid.ID))
}

func (s *StoreSuite) TestDuplicateAddIsDistinguished() {
	_ = s.store.Load(s.ctx, &s.kid)
	// Saved from another device; the local list does not know yet
	s.api.Watch(s.kid.ID, "g-zelda")

	out, err := s.store.Add(s.ctx, s.zelda)

	s.ErrorIs(err, model.ErrAlreadyInWatchlist)
	s.Equal(model.NoticeInfo, out.Notice.Level)
	s.Contains(out.Notice.Message, "already in the watchlist")
	s.True(out.Present)
	s.True(s.store.Contains("g-zelda"))
}

func (s *StoreSuite) TestKidsProfileCannotAddRestrictedGame() {
	_ = s.store.Load(s.ctx, &s.kid)

	out, err := s.store.Add(s.ctx, s.doom)

	s.ErrorIs(err, model.ErrRestricted)
	s.Equal(model.NoticeError, out.Notice.Level)
	s.Equal(0, s.api.Requests(addRoute))
}

func (s *StoreSuite) TestAdultProfileCanAddAnyGame() {
	_ = s.store.Load(s.ctx, &s.adult)

	_, err := s.store.Add(s.ctx, s.doom)
	s.Require().NoError(err)
	s.True(s.store.Contains("g-doom"))
}

func (s *StoreSuite) TestAddWithoutIdentity() {
	_ = s.store.Load(s.ctx, &s.adult)

	_, err := s.store.Add(s.ctx, model.Game{Name: "ghost"})
	s.ErrorIs(err, model.ErrInvalidGameID)
}

func (s *StoreSuite) TestMutationsNeedProfile() {
	_, err := s.store.Add(s.ctx, s.zelda)
	s.ErrorIs(err, model.ErrNoActiveProfile)

	_, err = s.store.Remove(s.ctx, "g-zelda")
	s.ErrorIs(err, model.ErrNoActiveProfile)

	s.ErrorIs(s.store.Refresh(s.ctx), model.ErrNoActiveProfile)
}

func (s *StoreSuite) TestRemove() {
	s.api.Watch(s.adult.ID, "g-doom")
	_ = s.store.Load(s.ctx, &s.adult)

	out, err := s.store.Remove(s.ctx, "g-doom")
	s.Require().NoError(err)

	s.False(out.Present)
	s.Equal(model.NoticeSuccess, out.Notice.Level)
	s.Empty(s.store.Games())
	s.Empty(s.api.WatchlistIDs(s.adult.ID))
}

func (s *StoreSuite) TestFailedRemoveResyncsFromServer() {
	s.api.Watch(s.adult.ID, "g-doom")
	_ = s.store.Load(s.ctx, &s.adult)
	s.api.ResetRequests()
	s.api.Fail(removeRoute, fakeapi.DropConnection, 1)

	out, err := s.store.Remove(s.ctx, "g-doom")

	s.Error(err)
	s.Equal(model.NoticeError, out.Notice.Level)
	s.True(out.Present)
	s.True(s.store.Contains("g-doom"))
	s.Equal(1, s.api.Requests(getRoute), "watchlist re-fetched after the failure")
}

func (s *StoreSuite) TestFailedAddKeepsServerTruth() {
	_ = s.store.Load(s.ctx, &s.adult)
	s.api.Fail(addRoute, 500, 1)

	out, err := s.store.Add(s.ctx, s.doom)

	s.ErrorIs(err, model.ErrUnavailable)
	s.False(out.Present)
	s.False(s.store.Contains("g-doom"))
}

func (s *StoreSuite) TestConfirmedMutationAppliedWhenRefreshFails() {
	_ = s.store.Load(s.ctx, &s.adult)
	s.api.Fail(getRoute, 503, 1)

	out, err := s.store.Add(s.ctx, s.doom)
	s.Require().NoError(err)
	s.True(out.Present)
	s.True(s.store.Contains("g-doom"))
}

func (s *StoreSuite) TestToggle() {
	_ = s.store.Load(s.ctx, &s.kid)

	out, err := s.store.Toggle(s.ctx, s.zelda)
	s.Require().NoError(err)
	s.True(out.Present)

	out, err = s.store.Toggle(s.ctx, model.Game{ExternalID: "rawg-7"})
	s.Require().NoError(err)
	s.False(out.Present)
	s.Empty(s.api.WatchlistIDs(s.kid.ID))
}
