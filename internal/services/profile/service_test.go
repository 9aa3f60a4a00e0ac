package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/dependencies/mocks"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/session"
	"github.com/mcoot/gamerhub/internal/storage"
	"github.com/mcoot/gamerhub/internal/storage/memory"
	"github.com/mcoot/gamerhub/internal/testutil"
	"github.com/mcoot/gamerhub/internal/testutil/fakeapi"
	"github.com/mcoot/gamerhub/internal/validation"
)

const scope storage.Scope = "browser-1"

type ServiceSuite struct {
	suite.Suite
	api     *fakeapi.Server
	storage *memory.Storage
	session *session.Store
	active  *ActiveStore
	service *Service
	user    model.User
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.api = fakeapi.New(s.T())
	s.storage = memory.New()
	s.user = s.api.AddUser("Ana", "ana@example.com", "secret1", model.RoleUser)

	logger := testutil.NopLogger()
	s.session = session.New(s.storage, scope, backend.NewClient(s.api.URL()), mocks.NewMockClock(time.Now()), logger)
	_, err := s.session.Login(s.ctx, "ana@example.com", "secret1")
	s.Require().NoError(err)

	s.active = NewActiveStore(s.storage, scope, logger)
	s.service = NewService(s.session, s.active, validation.New(), logger)
}

// ActiveStore tests

func (s *ServiceSuite) TestActiveStoreInitRestoresSnapshot() {
	_ = s.storage.SaveActiveProfile(s.ctx, scope, &model.Profile{ID: "p-9", Name: "Kid", Restriction: model.RestrictionKids})

	err := s.active.Init(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.FlexID("p-9"), s.active.Active().ID)
}

func (s *ServiceSuite) TestActiveStoreInitWithoutSnapshot() {
	err := s.active.Init(s.ctx)
	s.Require().NoError(err)
	s.Nil(s.active.Active())
}

func (s *ServiceSuite) TestSelectPersistsAndNotifies() {
	var changes [][2]*model.Profile
	s.active.OnChange(func(prev, next *model.Profile) {
		changes = append(changes, [2]*model.Profile{prev, next})
	})

	kid := model.Profile{ID: "p-1", Name: "Kid", Restriction: model.RestrictionKids}
	adult := model.Profile{ID: "p-2", Name: "Parent", Restriction: model.RestrictionAdults}
	s.Require().NoError(s.active.Select(s.ctx, kid))
	s.Require().NoError(s.active.Select(s.ctx, adult))

	s.Require().Len(changes, 2)
	s.Nil(changes[0][0])
	s.Equal(kid, *changes[1][0])
	s.Equal(adult, *changes[1][1])

	persisted, err := s.storage.GetActiveProfile(s.ctx, scope)
	s.Require().NoError(err)
	s.Equal(adult, *persisted)
}

func (s *ServiceSuite) TestSelectRejectsProfileWithoutID() {
	err := s.active.Select(s.ctx, model.Profile{Name: "Ghost"})
	s.ErrorIs(err, model.ErrNotFound)
	s.Nil(s.active.Active())
}

func (s *ServiceSuite) TestClearRemovesSnapshot() {
	_ = s.active.Select(s.ctx, model.Profile{ID: "p-1"})

	err := s.active.Clear(s.ctx)
	s.Require().NoError(err)

	s.Nil(s.active.Active())
	_, err = s.storage.GetActiveProfile(s.ctx, scope)
	s.ErrorIs(err, storage.ErrNotFound)
}

// Service tests

func (s *ServiceSuite) TestCreateAndList() {
	p, err := s.service.Create(s.ctx, validation.ProfileForm{Name: "Kid", Restriction: "KIDS"})
	s.Require().NoError(err)
	s.Equal(model.RestrictionKids, p.Restriction)
	s.Equal(s.user.ID, p.UserID)

	profiles, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(profiles, 1)
}

func (s *ServiceSuite) TestCreateValidatesBeforeRemoteCall() {
	_, err := s.service.Create(s.ctx, validation.ProfileForm{Name: "", Restriction: "KIDS"})

	fe, ok := validation.AsFieldErrors(err)
	s.Require().True(ok)
	s.True(fe.Has("name"))
	s.Equal(0, s.api.Requests("POST /profiles"))
	s.Equal(0, s.api.Requests("GET /profiles"))
}

func (s *ServiceSuite) TestCreateRejectsDuplicateNameIgnoringCase() {
	s.api.AddProfile(s.user.ID, "Kid", model.RestrictionKids)

	_, err := s.service.Create(s.ctx, validation.ProfileForm{Name: " kid ", Restriction: "ADULTS"})

	fe, ok := validation.AsFieldErrors(err)
	s.Require().True(ok)
	s.Equal(model.ErrDuplicateProfileName.Error(), fe["name"])
	s.Equal(0, s.api.Requests("POST /profiles"))
}

func (s *ServiceSuite) TestUpdateKeepsOwnName() {
	p := s.api.AddProfile(s.user.ID, "Kid", model.RestrictionKids)

	updated, err := s.service.Update(s.ctx, p.ID.String(), validation.ProfileForm{Name: "Kid", Restriction: "ADULTS"})
	s.Require().NoError(err)
	s.Equal(model.RestrictionAdults, updated.Restriction)
}

func (s *ServiceSuite) TestUpdateRefreshesActiveSnapshot() {
	p := s.api.AddProfile(s.user.ID, "Kid", model.RestrictionKids)
	_ = s.active.Select(s.ctx, p)

	_, err := s.service.Update(s.ctx, p.ID.String(), validation.ProfileForm{Name: "Teen", Restriction: "ADULTS"})
	s.Require().NoError(err)

	s.Equal("Teen", s.active.Active().Name)
	s.Equal(model.RestrictionAdults, s.active.Active().Restriction)
}

func (s *ServiceSuite) TestDeleteActiveProfileClearsIt() {
	p := s.api.AddProfile(s.user.ID, "Kid", model.RestrictionKids)
	_ = s.active.Select(s.ctx, p)

	err := s.service.Delete(s.ctx, p.ID.String())
	s.Require().NoError(err)
	s.Nil(s.active.Active())
}

func (s *ServiceSuite) TestDeleteOtherProfileKeepsActive() {
	kid := s.api.AddProfile(s.user.ID, "Kid", model.RestrictionKids)
	adult := s.api.AddProfile(s.user.ID, "Parent", model.RestrictionAdults)
	_ = s.active.Select(s.ctx, adult)

	err := s.service.Delete(s.ctx, kid.ID.String())
	s.Require().NoError(err)
	s.Equal(adult.ID, s.active.Active().ID)
}

func (s *ServiceSuite) TestSelectFetchesProfile() {
	p := s.api.AddProfile(s.user.ID, "Kid", model.RestrictionKids)

	selected, err := s.service.Select(s.ctx, p.ID.String())
	s.Require().NoError(err)
	s.Equal(p, *selected)
	s.Equal(p, *s.active.Active())
}

func (s *ServiceSuite) TestSelectOtherUsersProfileForbidden() {
	other := s.api.AddUser("Ben", "ben@example.com", "secret1", model.RoleUser)
	p := s.api.AddProfile(other.ID, "Ben kid", model.RestrictionKids)

	_, err := s.service.Select(s.ctx, p.ID.String())
	s.ErrorIs(err, model.ErrForbidden)
	s.Nil(s.active.Active())
}
