package dbus

// AlignmentPolicy selects how the Reader treats non-zero bytes found while
// skipping alignment padding. Strict zero-fill enforcement is optional on
// read and mandatory on write; this module exposes it as a runtime Config
// choice rather than a build tag, since platform selection is the only
// concern this repo reserves build tags for.
type AlignmentPolicy int

const (
	// LenientAlignment accepts any byte value in alignment padding. This is
	// the default, matching real-world D-Bus traffic that a strict decoder
	// would otherwise reject needlessly.
	LenientAlignment AlignmentPolicy = iota
	// StrictAlignment requires every padding byte to be zero.
	StrictAlignment
)

const (
	// DefaultMaxMessageSize is the D-Bus specification's maximum total
	// message length (header + padding + body), 128 MiB.
	DefaultMaxMessageSize uint32 = 1 << 27
	// DefaultMaxArrayPayload is the maximum byte length of a single array's
	// payload, 64 MiB.
	DefaultMaxArrayPayload uint32 = 1 << 26
)

// Config holds the runtime policy knobs for the core codec. Build one with
// NewConfig and a set of Options; Config is immutable once constructed.
type Config struct {
	alignmentPolicy AlignmentPolicy
	maxMessageSize  uint32
	maxArrayPayload uint32
}

// Option sets up a Config.
type Option func(*Config)

// WithAlignmentPolicy selects strict or lenient padding validation.
func WithAlignmentPolicy(p AlignmentPolicy) Option {
	return func(c *Config) { c.alignmentPolicy = p }
}

// WithMaxMessageSize overrides the maximum total message length
// DecodeHeader will accept. Reader itself does not check this limit.
func WithMaxMessageSize(n uint32) Option {
	return func(c *Config) { c.maxMessageSize = n }
}

// WithMaxArrayPayload overrides the maximum byte length of an array's
// payload that ReadArrayFrame will accept.
func WithMaxArrayPayload(n uint32) Option {
	return func(c *Config) { c.maxArrayPayload = n }
}

// NewConfig builds a Config from a set of Options, starting from the
// defaults: lenient alignment, 128 MiB max message, 64 MiB max array
// payload.
func NewConfig(opts ...Option) Config {
	c := Config{
		alignmentPolicy: LenientAlignment,
		maxMessageSize:  DefaultMaxMessageSize,
		maxArrayPayload: DefaultMaxArrayPayload,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
