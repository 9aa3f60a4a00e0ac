package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Token tests

func (s *StorageSuite) TestSaveAndGetToken() {
	err := s.storage.SaveToken(s.ctx, "browser-1", "token-abc")
	s.Require().NoError(err)

	token, err := s.storage.GetToken(s.ctx, "browser-1")
	s.Require().NoError(err)
	s.Equal("token-abc", token)
}

func (s *StorageSuite) TestGetTokenNotFound() {
	_, err := s.storage.GetToken(s.ctx, "nonexistent")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *StorageSuite) TestTokensAreScoped() {
	_ = s.storage.SaveToken(s.ctx, "browser-1", "token-1")
	_ = s.storage.SaveToken(s.ctx, "browser-2", "token-2")

	token, err := s.storage.GetToken(s.ctx, "browser-1")
	s.Require().NoError(err)
	s.Equal("token-1", token)

	token, err = s.storage.GetToken(s.ctx, "browser-2")
	s.Require().NoError(err)
	s.Equal("token-2", token)
}

func (s *StorageSuite) TestDeleteToken() {
	_ = s.storage.SaveToken(s.ctx, "browser-1", "token-abc")

	err := s.storage.DeleteToken(s.ctx, "browser-1")
	s.Require().NoError(err)

	_, err = s.storage.GetToken(s.ctx, "browser-1")
	s.ErrorIs(err, storage.ErrNotFound)
}

// Active profile tests

func (s *StorageSuite) TestSaveAndGetActiveProfile() {
	profile := &model.Profile{ID: "p-1", Name: "Kid", Restriction: model.RestrictionKids}

	err := s.storage.SaveActiveProfile(s.ctx, "browser-1", profile)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetActiveProfile(s.ctx, "browser-1")
	s.Require().NoError(err)
	s.Equal(*profile, *retrieved)
}

func (s *StorageSuite) TestActiveProfileIsCopied() {
	profile := &model.Profile{ID: "p-1", Name: "Kid", Restriction: model.RestrictionKids}
	_ = s.storage.SaveActiveProfile(s.ctx, "browser-1", profile)

	profile.Name = "Changed"

	retrieved, err := s.storage.GetActiveProfile(s.ctx, "browser-1")
	s.Require().NoError(err)
	s.Equal("Kid", retrieved.Name)
}

func (s *StorageSuite) TestSaveActiveProfileReplaces() {
	_ = s.storage.SaveActiveProfile(s.ctx, "browser-1", &model.Profile{ID: "p-1", Name: "Kid"})
	_ = s.storage.SaveActiveProfile(s.ctx, "browser-1", &model.Profile{ID: "p-2", Name: "Parent"})

	retrieved, err := s.storage.GetActiveProfile(s.ctx, "browser-1")
	s.Require().NoError(err)
	s.Equal(model.FlexID("p-2"), retrieved.ID)
}

func (s *StorageSuite) TestDeleteActiveProfile() {
	_ = s.storage.SaveActiveProfile(s.ctx, "browser-1", &model.Profile{ID: "p-1"})

	err := s.storage.DeleteActiveProfile(s.ctx, "browser-1")
	s.Require().NoError(err)

	_, err = s.storage.GetActiveProfile(s.ctx, "browser-1")
	s.ErrorIs(err, storage.ErrNotFound)
}

// Clear tests

func (s *StorageSuite) TestClearRemovesOnlyScope() {
	_ = s.storage.SaveToken(s.ctx, "browser-1", "token-1")
	_ = s.storage.SaveActiveProfile(s.ctx, "browser-1", &model.Profile{ID: "p-1"})
	_ = s.storage.SaveToken(s.ctx, "browser-2", "token-2")

	err := s.storage.Clear(s.ctx, "browser-1")
	s.Require().NoError(err)

	_, err = s.storage.GetToken(s.ctx, "browser-1")
	s.ErrorIs(err, storage.ErrNotFound)
	_, err = s.storage.GetActiveProfile(s.ctx, "browser-1")
	s.ErrorIs(err, storage.ErrNotFound)

	token, err := s.storage.GetToken(s.ctx, "browser-2")
	s.Require().NoError(err)
	s.Equal("token-2", token)
}
