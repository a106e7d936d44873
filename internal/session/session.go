// Package session owns the authenticated/unauthenticated state machine.
// The initial state is inferred from token presence alone; the server is
// the only authority on token validity, so an expired-but-present token
// counts as a session until a request is rejected.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/chemviz/chemviz/internal/credstore"
	"github.com/chemviz/chemviz/internal/model"
)

// Controller tracks whether the client believes it holds valid credentials
// and drives the login/logout transitions, including the forced logout that
// follows a server-reported authorization failure.
type Controller struct {
	mu     sync.Mutex
	creds  credstore.Store
	authed bool
	grace  time.Duration
	expiry *time.Timer
}

// New seeds the controller from the credential store: Authenticated iff a
// token is present at process start. grace is the delay between surfacing
// the expired-session message and completing the forced logout; zero or
// negative uses the default.
func New(creds credstore.Store, grace time.Duration) *Controller {
	if grace <= 0 {
		grace = model.DefaultGracePeriod
	}
	return &Controller{
		creds:  creds,
		authed: creds.HasSession(),
		grace:  grace,
	}
}

// Authenticated reports the current state.
func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authed
}

// LoginSucceeded persists the token pair and transitions to Authenticated.
// Persistence happens exactly once per successful login, here.
func (c *Controller) LoginSucceeded(creds model.Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.creds.Save(creds.Access, creds.Refresh); err != nil {
		return err
	}
	c.authed = true
	return nil
}

// Logout clears the stored tokens and transitions to Unauthenticated. It
// also cancels any pending forced logout so an explicit logout does not get
// doubled by the expiry timer.
func (c *Controller) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logoutLocked()
}

func (c *Controller) logoutLocked() error {
	if c.expiry != nil {
		c.expiry.Stop()
		c.expiry = nil
	}
	c.authed = false
	return c.creds.Clear()
}

// HandleAuthFailure reacts to an AuthError from any gateway call while
// Authenticated: after the grace period it clears credentials, transitions
// to Unauthenticated, and invokes onLogout. The grace period is a UX pause,
// not a retry window; the failed call is not retried. Returns false when
// the failure is ignored (already logged out, or a forced logout is already
// pending).
func (c *Controller) HandleAuthFailure(onLogout func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.authed || c.expiry != nil {
		return false
	}

	c.expiry = time.AfterFunc(c.grace, func() {
		c.mu.Lock()
		c.expiry = nil
		if err := c.logoutLocked(); err != nil {
			log.Printf("session: forced logout: %v", err)
		}
		c.mu.Unlock()
		if onLogout != nil {
			onLogout()
		}
	})
	return true
}
