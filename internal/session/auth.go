package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/preston-bernstein/roster-service/internal/config"
	"github.com/preston-bernstein/roster-service/internal/logging"
	"github.com/preston-bernstein/roster-service/internal/metrics"
)

const (
	defaultTTL = 12 * time.Hour

	outcomeSuccess = "success"
	outcomeFailure = "failure"

	dummyPassword = "roster-service-unknown-account"
)

// AuthOptions configures an Authenticator. Zero values fall back to defaults.
type AuthOptions struct {
	TTL      time.Duration
	Cost     int
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Recorder *metrics.Recorder
	NewToken func() string
	// OnExpire runs with the token of a session found expired.
	OnExpire func(token string)
}

type account struct {
	role string
	hash []byte
}

// Authenticator checks credentials against the allow-list and issues sessions.
type Authenticator struct {
	accounts map[string]account
	// dummy is compared for unknown usernames so both paths cost one bcrypt check.
	dummy    []byte
	compare  func(hash, password []byte) error
	store    Store
	ttl      time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	recorder *metrics.Recorder
	newToken func() string
	onExpire func(token string)
}

// NewAuthenticator hashes the configured passwords once. Accounts without a
// password are disabled.
func NewAuthenticator(users []config.UserEntry, st Store, opts AuthOptions) (*Authenticator, error) {
	if st == nil {
		return nil, errors.New("session store is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.NewToken == nil {
		opts.NewToken = uuid.NewString
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), opts.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}

	accounts := make(map[string]account, len(users))
	for _, u := range users {
		if u.Username == "" {
			continue
		}
		if u.Password == "" {
			logging.Warn(opts.Logger, "account disabled: no password configured", logging.FieldUser, u.Username)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), opts.Cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.Username, err)
		}
		accounts[u.Username] = account{role: u.Role, hash: hash}
	}

	return &Authenticator{
		accounts: accounts,
		dummy:    dummy,
		compare:  bcrypt.CompareHashAndPassword,
		store:    st,
		ttl:      opts.TTL,
		clock:    opts.Clock,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		newToken: opts.NewToken,
		onExpire: opts.OnExpire,
	}, nil
}

// Login validates the credentials and stores a fresh session.
func (a *Authenticator) Login(ctx context.Context, username, password string) (Session, error) {
	acct, ok := a.accounts[username]
	hash := acct.hash
	if !ok {
		hash = a.dummy
	}
	if err := a.compare(hash, []byte(password)); err != nil || !ok {
		a.recorder.RecordLogin(outcomeFailure)
		logging.Info(logging.FromContext(ctx, a.logger), "login rejected", logging.FieldUser, username)
		return Session{}, ErrInvalidCredentials
	}

	s := Session{
		Token:     a.newToken(),
		Username:  username,
		Role:      acct.role,
		ExpiresAt: a.clock.Now().Add(a.ttl),
	}
	if err := a.store.Save(ctx, s); err != nil {
		return Session{}, err
	}
	a.recorder.RecordLogin(outcomeSuccess)
	logging.Info(logging.FromContext(ctx, a.logger), "login accepted", logging.FieldUser, username)
	return s, nil
}

// Authenticate resolves a token to its live session.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNotFound
	}
	s, err := a.store.Get(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if s.Expired(a.clock.Now()) {
		_ = a.store.Delete(ctx, token)
		if a.onExpire != nil {
			a.onExpire(token)
		}
		return Session{}, ErrNotFound
	}
	return s, nil
}

// Logout removes the session marker.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	return a.store.Delete(ctx, token)
}

// Accounts returns the number of enabled accounts.
func (a *Authenticator) Accounts() int {
	return len(a.accounts)
}
