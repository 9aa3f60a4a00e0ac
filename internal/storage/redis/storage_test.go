package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
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

func (s *StorageSuite) TestTokenTTL() {
	_ = s.storage.SaveToken(s.ctx, "browser-1", "token-abc")

	ttl := s.mini.TTL(tokenKey("browser-1"))
	s.Equal(time.Hour, ttl)

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetToken(s.ctx, "browser-1")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *StorageSuite) TestDeleteToken() {
	_ = s.storage.SaveToken(s.ctx, "browser-1", "token-abc")

	err := s.storage.DeleteToken(s.ctx, "browser-1")
	s.Require().NoError(err)

	s.False(s.mini.Exists(tokenKey("browser-1")))
}

// Active profile tests

func (s *StorageSuite) TestSaveAndGetActiveProfile() {
	profile := &model.Profile{ID: "p-1", Name: "Kid", Restriction: model.RestrictionKids, UserID: "u-1"}

	err := s.storage.SaveActiveProfile(s.ctx, "browser-1", profile)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetActiveProfile(s.ctx, "browser-1")
	s.Require().NoError(err)
	s.Equal(*profile, *retrieved)
}

func (s *StorageSuite) TestActiveProfileStoredAsJSON() {
	_ = s.storage.SaveActiveProfile(s.ctx, "browser-1", &model.Profile{ID: "p-1", Name: "Kid", Restriction: model.RestrictionKids})

	raw, err := s.mini.Get(activeProfileKey("browser-1"))
	s.Require().NoError(err)
	s.Contains(raw, `"allowedRating":"KIDS"`)
}

func (s *StorageSuite) TestGetActiveProfileNotFound() {
	_, err := s.storage.GetActiveProfile(s.ctx, "nonexistent")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *StorageSuite) TestDeleteActiveProfile() {
	_ = s.storage.SaveActiveProfile(s.ctx, "browser-1", &model.Profile{ID: "p-1"})

	err := s.storage.DeleteActiveProfile(s.ctx, "browser-1")
	s.Require().NoError(err)

	_, err = s.storage.GetActiveProfile(s.ctx, "browser-1")
	s.ErrorIs(err, storage.ErrNotFound)
}

// Clear tests

func (s *StorageSuite) TestClear() {
	_ = s.storage.SaveToken(s.ctx, "browser-1", "token-1")
	_ = s.storage.SaveActiveProfile(s.ctx, "browser-1", &model.Profile{ID: "p-1"})
	_ = s.storage.SaveToken(s.ctx, "browser-2", "token-2")

	err := s.storage.Clear(s.ctx, "browser-1")
	s.Require().NoError(err)

	s.False(s.mini.Exists(tokenKey("browser-1")))
	s.False(s.mini.Exists(activeProfileKey("browser-1")))
	s.True(s.mini.Exists(tokenKey("browser-2")))
}

func (s *StorageSuite) TestKeysArePrefixed() {
	_ = s.storage.SaveToken(s.ctx, "browser-1", "token-1")

	s.Equal([]string{"gamerhub:token:browser-1"}, s.mini.Keys())
}
