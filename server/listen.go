package server

import (
	"fmt"
	"net"
	"os"
	"strings"

	"golang.org/x/net/netutil"
)

// Listen opens a bind address of the form "tcp:host:port" or "unix:path".
// A bare "host:port" means tcp. With maxConn > 0, at most maxConn
// connections are accepted at a time.
func Listen(bind string, maxConn int) (net.Listener, error) {
	network, addr, ok := strings.Cut(bind, ":")
	if !ok || (network != "tcp" && network != "tcp4" && network != "tcp6" && network != "unix") {
		network, addr = "tcp", bind
	}
	if network == "unix" {
		if err := os.Remove(addr); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove stale socket %s: %w", addr, err)
		}
	}
	l, err := net.Listen(network, addr)
	if err != nil {
		return nil, err
	}
	if network == "unix" {
		// Ignores errors, we can't do anything to those.
		os.Chmod(addr, 0777)
	}
	if maxConn > 0 {
		l = netutil.LimitListener(l, maxConn)
	}
	return l, nil
}
