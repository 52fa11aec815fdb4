// Package transport demonstrates the core codec in motion over a real
// Unix-domain D-Bus connection: dialing the bus, performing the EXTERNAL
// SASL handshake, and framing method calls and replies with the core
// Encoder/Decoder. It depends on the core dbus package; the core package
// never imports transport, and its tests never exercise a real socket.
package transport

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/ferrreo/zigbus"
)

// Dial connects to a D-Bus message bus over a Unix domain socket named by
// busAddr, e.g. "unix:path=/run/user/1000/bus".
func Dial(busAddr string) (net.Conn, error) {
	const prefix = "unix:path="
	if !strings.HasPrefix(busAddr, prefix) {
		return nil, fmt.Errorf("dbus address not supported: %s", busAddr)
	}
	path := busAddr[len(prefix):]

	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", path, err)
	}
	return conn, nil
}

// systemBusAddress resolves the bus address the way libdbus does: the
// DBUS_SYSTEM_BUS_ADDRESS environment variable, falling back to the
// well-known system socket path.
func systemBusAddress() string {
	if addr := os.Getenv("DBUS_SYSTEM_BUS_ADDRESS"); addr != "" {
		return addr
	}
	return "unix:path=/var/run/dbus/system_bus_socket"
}

// sessionBusAddress resolves the session bus address from
// DBUS_SESSION_BUS_ADDRESS, with no fallback: a caller without that
// variable set has no session bus to speak of.
func sessionBusAddress() (string, error) {
	addr := os.Getenv("DBUS_SESSION_BUS_ADDRESS")
	if addr == "" {
		return "", fmt.Errorf("DBUS_SESSION_BUS_ADDRESS is not set")
	}
	return addr, nil
}

// Client is a thin, serial-only D-Bus connection: it can send one method
// call and read its reply at a time. It is not safe for concurrent use;
// callers needing overlapping in-flight calls must serialize them
// themselves.
type Client struct {
	conn    net.Conn
	bufConn *bufio.Reader
	cfg     dbus.Config
	log     *slog.Logger
	conv    *stringConverter

	mu     sync.Mutex
	serial uint32
}

// DialSystem connects to the system bus and performs the EXTERNAL
// handshake.
func DialSystem(opts ...Option) (*Client, error) {
	return dial(systemBusAddress(), opts...)
}

// DialSession connects to the session bus named by
// DBUS_SESSION_BUS_ADDRESS and performs the EXTERNAL handshake.
func DialSession(opts ...Option) (*Client, error) {
	addr, err := sessionBusAddress()
	if err != nil {
		return nil, err
	}
	return dial(addr, opts...)
}

func dial(addr string, opts ...Option) (*Client, error) {
	cfg := Config{
		connReadSize:              DefaultConnectionReadSize,
		stringInterningBufferSize: DefaultStringInterningBufferSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	conn := cfg.conn
	if conn == nil {
		var err error
		conn, err = Dial(addr)
		if err != nil {
			return nil, err
		}
	}

	if err := authExternal(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dbus auth failed: %w", err)
	}

	c := &Client{
		conn:    conn,
		bufConn: bufio.NewReaderSize(conn, cfg.connReadSize),
		cfg:     dbus.NewConfig(),
		log:     slog.Default(),
		conv:    newStringConverter(cfg.stringInterningBufferSize),
	}
	return c, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// nextSerial returns the next wrap-safe message serial. Zero is reserved
// by the protocol, so the counter skips it on overflow.
func (c *Client) nextSerial() uint32 {
	c.serial++
	if c.serial == 0 {
		c.serial++
	}
	return c.serial
}

// Call sends a METHOD_CALL to path/iface.member with an empty body and
// reads back the reply header, verifying its REPLY_SERIAL matches the
// call's serial. The reply body, if any, is returned unparsed for the
// caller to decode against whatever signature it expects.
func (c *Client) Call(destination string, path dbus.ObjectPath, iface, member string) (*dbus.MessageHeader, []byte, error) {
	if !c.mu.TryLock() {
		return nil, nil, fmt.Errorf("must be called serially")
	}
	defer c.mu.Unlock()

	serial := c.nextSerial()

	var buf bytes.Buffer
	enc := dbus.NewEncoder(&buf, binary.LittleEndian)
	fields := []dbus.HeaderField{
		{Code: dbus.FieldPath, Signature: 'o', StringValue: string(path)},
		{Code: dbus.FieldDestination, Signature: 's', StringValue: destination},
		{Code: dbus.FieldInterface, Signature: 's', StringValue: iface},
		{Code: dbus.FieldMember, Signature: 's', StringValue: member},
	}
	dbus.EncodeHeader(enc, 'l', dbus.MessageTypeMethodCall, 0, 0, serial, fields)

	if _, err := c.conn.Write(buf.Bytes()); err != nil {
		return nil, nil, fmt.Errorf("write method call: %w", err)
	}
	c.log.Debug("sent method call", "destination", destination, "path", path, "interface", iface, "member", member, "serial", serial)

	h, body, err := c.readMessage()
	if err != nil {
		return nil, nil, fmt.Errorf("read reply: %w", err)
	}
	if err := verifyReplySerial(h, serial); err != nil {
		return nil, nil, err
	}
	return h, body, nil
}

// readMessage reads one complete message's prologue, header fields array,
// padding, and body from the connection, decoding the header with the
// core package and surfacing any Warnings via the configured logger.
func (c *Client) readMessage() (*dbus.MessageHeader, []byte, error) {
	prologue, err := readExact(c.bufConn, 16)
	if err != nil {
		return nil, nil, err
	}
	order := binary.ByteOrder(binary.LittleEndian)
	if prologue[0] == 'B' {
		order = binary.BigEndian
	}
	fieldsLen := order.Uint32(prologue[12:16])

	headerEnd := alignUp(16+int(fieldsLen), 8)
	rest, err := readExact(c.bufConn, headerEnd-16)
	if err != nil {
		return nil, nil, err
	}
	full := append(prologue, rest...)

	h, warnings, err := dbus.DecodeHeader(full, c.cfg)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warnings {
		c.log.Warn(w.Message)
	}
	if err := dbus.ValidateRequiredFields(h); err != nil {
		return nil, nil, fmt.Errorf("reply header: %w", err)
	}

	// Field strings decoded by dbus.DecodeHeader are sub-slices of full; left
	// as-is, a single retained field string would pin the entire decoded
	// frame in memory. Intern them into the converter's own buffer so full
	// can be collected once the caller is done with the message body.
	for i := range h.Fields {
		if h.Fields[i].StringValue != "" {
			h.Fields[i].StringValue = c.conv.String(h.Fields[i].StringValue)
		}
	}

	body, err := readExact(c.bufConn, int(h.BodyLen))
	if err != nil {
		return nil, nil, err
	}
	return h, body, nil
}

func alignUp(pos, n int) int {
	if n <= 1 {
		return pos
	}
	if rem := pos % n; rem != 0 {
		return pos + (n - rem)
	}
	return pos
}

func readExact(r io.Reader, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("read %d bytes: %w", n, err)
	}
	return b, nil
}

func verifyReplySerial(h *dbus.MessageHeader, want uint32) error {
	for _, f := range h.Fields {
		if f.Code == dbus.FieldReplySerial {
			if f.Uint32Value != want {
				return fmt.Errorf("reply serial mismatch: want %d got %d", want, f.Uint32Value)
			}
			return nil
		}
	}
	return fmt.Errorf("reply missing REPLY_SERIAL field")
}
