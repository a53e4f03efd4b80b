// HTTP handler dependencies.
package server

import (
	"database/sql"

	"github.com/kyastream/site-backend/config"
	"github.com/kyastream/site-backend/ratelimit"
	"github.com/kyastream/site-backend/twitchapi"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	helix   *twitchapi.HelixClient
	limiter *ratelimit.Limiter
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(db *sql.DB, cfg *config.Config, helix *twitchapi.HelixClient, limiter *ratelimit.Limiter) *Handlers {
	return &Handlers{db: db, cfg: cfg, helix: helix, limiter: limiter}
}
