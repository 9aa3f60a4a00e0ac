package admin

import (
	"log/slog"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/validation"
)

// PageSize is the number of rows on the admin game listing
const PageSize = 10

// Service is the admin console: user, profile and game management. The API
// enforces roles; the service validates forms before any call is made.
type Service struct {
	api       backend.ClientProvider
	validator *validation.Validator
	logger    *slog.Logger
}

// NewService creates an admin service
func NewService(api backend.ClientProvider, v *validation.Validator, logger *slog.Logger) *Service {
	return &Service{
		api:       api,
		validator: v,
		logger:    logger,
	}
}

func (s *Service) warn(msg string, err error, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+1)
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.String("error", err.Error()))
	s.logger.Warn(msg, args...)
}
