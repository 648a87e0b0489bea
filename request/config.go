package request

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/iaconlabs/doze/mediatype"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("request: invalid config")

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// SessionFunc extracts the session that authentication middleware stored in
// the request context. It reports false when there is no session.
type SessionFunc func(ctx context.Context) (session any, ok bool)

// AuthenticatedFunc reports whether a session is authenticated.
type AuthenticatedFunc func(session any) bool

// Config is shared by every Request of an application. It must not be
// modified once requests are being served.
type Config struct {
	// MediaTypeExtensions enables file extension based content typing: a
	// trailing ".json" is split off the routing path and drives negotiation.
	MediaTypeExtensions bool

	SessionFromContext   SessionFunc         `validate:"required"`
	SessionAuthenticated AuthenticatedFunc   `validate:"required"`
	MediaTypes           *mediatype.Registry `validate:"required"`

	// PathResolver overrides how the decoded request path is obtained.
	// Nil means DefaultPathResolver.
	PathResolver PathResolver
}

// Validate checks that every required collaborator is set.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
