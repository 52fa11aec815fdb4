// Package dbus implements the core of a D-Bus wire-format codec: signature
// parsing into a vectorized representation, an alignment-aware byte reader,
// and a decoder for the fixed-shape message header that precedes every
// D-Bus message.
//
// The package performs no transport I/O. It operates entirely on
// caller-provided, borrowed byte slices and returns borrowed sub-slices in
// turn; callers that need to retain a string or signature beyond the
// lifetime of the original buffer must copy it themselves.
package dbus
