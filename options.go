package ldapcore

import (
	"errors"
	"time"

	"github.com/georgib0y/ldapcore/internal/modify"
)

// EmptyListPolicy governs what Modify does with a replace_attrs call
// whose value list is empty (spec.md 4.7.4 and 9's open question).
// It is an alias for internal/modify's own type, which is what
// actually implements the policy; Directory.Modify passes a Conn's
// resolved Config.emptyListPolicy straight through to modify.Plan.
type EmptyListPolicy = modify.EmptyListPolicy

const (
	EmptyListIgnore  = modify.EmptyListIgnore
	EmptyListWarn    = modify.EmptyListWarn
	EmptyListError   = modify.EmptyListError
	EmptyListForward = modify.EmptyListForward
)

// ErrConflictingEmptyListPolicy is returned by NewConfig when more than
// one empty-list policy option is supplied; spec.md 9 leaves the
// precedence between ignore/warn/error unresolved, and this port
// decides to fail fast at construction rather than pick a silent
// default ordering.
var ErrConflictingEmptyListPolicy = errors.New("ldapcore: conflicting empty-list policy options")

// Config holds per-connection tunables, built via functional options
// the way the rest of this module's constructors are (entry.RDNOption,
// filter.Mode).
type Config struct {
	emptyListPolicy    EmptyListPolicy
	emptyListPolicySet bool
	dialTimeout        time.Duration
	opTimeout          time.Duration
	searchHighWater    int
	followReferrals    bool
	saslHost           string
}

// Option configures a Config.
type Option func(*Config) error

func defaultConfig() Config {
	return Config{
		emptyListPolicy: EmptyListIgnore,
		dialTimeout:     30 * time.Second,
		opTimeout:       0,
		searchHighWater: 64,
		followReferrals: false,
	}
}

// NewConfig applies opts over the defaults, failing fast on conflicting
// empty-list policy selections.
func NewConfig(opts ...Option) (Config, error) {
	c := defaultConfig()
	for _, o := range opts {
		if err := o(&c); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}

func withEmptyListPolicy(p EmptyListPolicy) Option {
	return func(c *Config) error {
		if c.emptyListPolicySet {
			return ErrConflictingEmptyListPolicy
		}
		c.emptyListPolicy = p
		c.emptyListPolicySet = true
		return nil
	}
}

// WithEmptyListIgnore, WithEmptyListWarn, WithEmptyListError and
// WithEmptyListForward each select one empty-list policy; supplying
// more than one on the same Config is a construction-time error.
func WithEmptyListIgnore() Option  { return withEmptyListPolicy(EmptyListIgnore) }
func WithEmptyListWarn() Option    { return withEmptyListPolicy(EmptyListWarn) }
func WithEmptyListError() Option   { return withEmptyListPolicy(EmptyListError) }
func WithEmptyListForward() Option { return withEmptyListPolicy(EmptyListForward) }

// WithDialTimeout bounds the initial transport handshake.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Config) error { c.dialTimeout = d; return nil }
}

// WithOperationTimeout sets the default per-operation deadline; zero
// means no deadline (the spec.md default).
func WithOperationTimeout(d time.Duration) Option {
	return func(c *Config) error { c.opTimeout = d; return nil }
}

// WithSearchHighWaterMark bounds the stream sink's buffered entry count
// before the reader applies backpressure to the socket (spec.md 5's
// "bounded buffering with a configurable high-water mark" default).
func WithSearchHighWaterMark(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			n = 1
		}
		c.searchHighWater = n
		return nil
	}
}

// WithFollowReferrals stores follow in the Config (false by default).
// Nothing in this package reads the setting: the connection never
// chases a referral, and a referral result always surfaces as
// ReferralError.
func WithFollowReferrals(follow bool) Option {
	return func(c *Config) error { c.followReferrals = follow; return nil }
}

// WithSASLHost overrides the hostname passed to the SASL provider's
// Start (defaults to the dialed host).
func WithSASLHost(host string) Option {
	return func(c *Config) error { c.saslHost = host; return nil }
}
