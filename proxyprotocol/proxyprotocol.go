// Package proxyprotocol accepts connections that are optionally prefixed by
// a PROXY protocol (v1 or v2) header, such as those forwarded by a load
// balancer, and reports the client address carried in the header.
package proxyprotocol

import (
	"net"
	"time"

	proxyproto "github.com/pires/go-proxyproto"
)

// NewListener wraps l such that accepted connections report the addresses
// from their PROXY header. Connections without a header are accepted as-is.
// A positive timeout bounds the time spent waiting for the header.
func NewListener(l net.Listener, timeout time.Duration) net.Listener {
	return &proxyproto.Listener{
		Listener:          l,
		ReadHeaderTimeout: timeout,
	}
}

// NewConn wraps a single connection in the same manner as NewListener.
func NewConn(conn net.Conn) net.Conn {
	return proxyproto.NewConn(conn)
}
