// Program dbusdump calls a method on the system or session bus and prints
// the decoded reply header, showing how the transport and core packages
// fit together.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ferrreo/zigbus"
	"github.com/ferrreo/zigbus/transport"
)

func main() {
	exitCode := 1
	defer func() { os.Exit(exitCode) }()

	session := flag.Bool("session", false, "connect to the session bus instead of the system bus")
	destination := flag.String("dest", "org.freedesktop.DBus", "destination bus name")
	path := flag.String("path", "/org/freedesktop/DBus", "object path")
	iface := flag.String("iface", "org.freedesktop.DBus", "interface name")
	member := flag.String("member", "ListNames", "method name")
	readSize := flag.Int("read-size", transport.DefaultConnectionReadSize, "connection read buffer size")
	flag.Parse()

	if !dbus.ObjectPath(*path).IsValid() {
		slog.Error("invalid object path", "path", *path)
		return
	}

	opts := []transport.Option{transport.WithConnectionReadSize(*readSize)}

	var (
		c   *transport.Client
		err error
	)
	if *session {
		c, err = transport.DialSession(opts...)
	} else {
		c, err = transport.DialSystem(opts...)
	}
	if err != nil {
		slog.Error("dial failed", "error", err)
		return
	}
	defer func() {
		if err := c.Close(); err != nil {
			slog.Error("close failed", "error", err)
		}
	}()

	h, body, err := c.Call(*destination, dbus.ObjectPath(*path), *iface, *member)
	if err != nil {
		slog.Error("call failed", "error", err)
		return
	}

	fmt.Printf("type=%v serial=%d body_len=%d fields=%d\n", h.Type, h.Serial, h.BodyLen, len(h.Fields))
	for _, f := range h.Fields {
		switch f.Signature {
		case 'u':
			fmt.Printf("  %s = %d\n", f.Code, f.Uint32Value)
		default:
			fmt.Printf("  %s = %s\n", f.Code, f.StringValue)
		}
	}
	fmt.Printf("body: %d bytes\n", len(body))

	exitCode = 0
}
