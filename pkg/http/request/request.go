// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package request provides a middleware that tags every request with an
// ID and resolves its client address and URL, honoring reverse proxy
// headers from trusted sources only.
package request

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"hash/adler32"
	"net"
	"net/http"
	"net/url"
	"os"
	"slices"
	"sync/atomic"

	"codeberg.org/readeck/blockdata/pkg/ctxr"
)

var (
	remoteIPKey = ctxr.New[net.IP]("remote-ip")
	realIPKey   = ctxr.New[net.IP]("real-ip")
	urlKey      = ctxr.New[*url.URL]("url")
	reqIDKey    = ctxr.New[string]("request-id")
)

// GetRemoteIP returns the request's [http.Request.RemoteAddr] as a
// [net.IP] without its port.
func GetRemoteIP(ctx context.Context) net.IP {
	return remoteIPKey.Get(ctx)
}

// GetRealIP returns the request's client real IP address based on the
// "X-Forwarded-For" header. It fallbacks to [http.Request.RemoteAddr].
func GetRealIP(ctx context.Context) net.IP {
	return realIPKey.Get(ctx)
}

// GetURL returns the request's absolute [*url.URL].
func GetURL(ctx context.Context) *url.URL {
	return urlKey.Get(ctx)
}

// GetReqID returns the request's ID.
func GetReqID(ctx context.Context) string {
	v, _ := reqIDKey.Check(ctx)
	return v
}

var (
	reqid       uint32
	reqIDPrefix [13]byte
)

func init() {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "localhost"
	}

	var b [6]byte
	rand.Read(b[4:])
	cs := adler32.New()
	cs.Write([]byte(hostname))
	copy(b[0:4], cs.Sum(nil))

	reqIDPrefix[8] = '/'
	hex.Encode(reqIDPrefix[0:8], b[0:4])
	hex.Encode(reqIDPrefix[9:], b[4:])
}

// makeRequestID creates a request ID of the form "host-checksum/random-seq",
// where "host-checksum" is an adler32 checksum of the host name (4 bytes),
// "random" is a 2 byte random value and "seq" a sequence number.
func makeRequestID() string {
	// The prefix is 13 bytes, we add a separator "-" and 8 bytes for the
	// sequence number.
	var id [22]byte
	copy(id[0:13], reqIDPrefix[:])
	id[13] = '-'

	hex.Encode(id[14:], binary.BigEndian.AppendUint32(nil, atomic.AddUint32(&reqid, 1)))
	return string(id[:])
}

// InitRequest adds the request's absolute URL (with scheme and host) to the
// context. It then sets the request URL itself. Host and scheme can be taken
// from X-Forwarded headers, only when the request's remoteAddr is in one of
// trustedProxies.
//
// When a request is seen as forwarded, its scheme defaults to https and is
// only downgraded to http when X-Forwarded-Proto is "http".
//
// The middleware also adds the remoteAddr (without port), the real remote IP
// (based on X-Forwarded-For) and a unique request ID.
func InitRequest(trustedProxies ...*net.IPNet) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Set remote IP
			remoteAddr, _, _ := net.SplitHostPort(r.RemoteAddr)
			remoteIP := net.ParseIP(remoteAddr)
			ctx = remoteIPKey.Set(ctx, remoteIP)

			isTrusted := isTrustedProxy(trustedProxies, remoteIP)

			// Set the real remote IP
			if isTrusted {
				for _, ip := range parseXForwardedFor(r.Header) {
					if isTrustedProxy(trustedProxies, ip) {
						continue
					}
					remoteIP = ip
					break
				}
			}
			ctx = realIPKey.Set(ctx, remoteIP)

			// Build the absolute request URL
			cu := &url.URL{}
			*cu = *r.URL
			cu.Scheme = "http"
			cu.Host = r.Host

			forwarded := isForwarded(r.Header)
			if forwarded {
				// If forwarded, we first default to https. It's the most
				// common use case and it avoids a whole class of
				// configuration errors.
				cu.Scheme = "https"
			}

			if isTrusted && forwarded {
				if parseXForwardedProto(r.Header) == "http" {
					cu.Scheme = "http"
				}
				if host := parseXForwardedHost(r.Header); host != "" {
					cu.Host = host
				}
			}
			ctx = urlKey.Set(ctx, cu)

			// Set the request's URL
			*(r.URL) = *cu

			// Add request's ID to context
			ctx = reqIDKey.Set(ctx, makeRequestID())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isTrustedProxy(p []*net.IPNet, ip net.IP) bool {
	return slices.ContainsFunc(p, func(cidr *net.IPNet) bool {
		return cidr.Contains(ip)
	})
}
