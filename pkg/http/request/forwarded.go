// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package request

import (
	"net"
	"net/http"
	"strings"
)

// isForwarded returns true when the request carries any X-Forwarded
// header.
func isForwarded(h http.Header) bool {
	return h.Get("X-Forwarded-For") != "" ||
		h.Get("X-Forwarded-Host") != "" ||
		h.Get("X-Forwarded-Proto") != ""
}

// parseXForwardedFor returns every valid IP address found in
// X-Forwarded-For headers, in header order. Bracketed IPv6 addresses and
// addresses carrying a port are accepted.
func parseXForwardedFor(h http.Header) []net.IP {
	var res []net.IP
	for _, value := range h.Values("X-Forwarded-For") {
		for part := range strings.SplitSeq(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if host, _, err := net.SplitHostPort(part); err == nil {
				part = host
			}
			part = strings.TrimPrefix(part, "[")
			part = strings.TrimSuffix(part, "]")
			if ip := net.ParseIP(part); ip != nil {
				res = append(res, ip)
			}
		}
	}
	return res
}

// parseXForwardedProto returns "http" or "https" when the header carries
// a valid scheme, an empty string otherwise.
func parseXForwardedProto(h http.Header) string {
	switch v := strings.ToLower(strings.TrimSpace(h.Get("X-Forwarded-Proto"))); v {
	case "http", "https":
		return v
	}
	return ""
}

// parseXForwardedHost returns the forwarded host, with an optional port,
// when it looks like a valid host name.
func parseXForwardedHost(h http.Header) string {
	host := strings.TrimSpace(h.Get("X-Forwarded-Host"))
	if host == "" || strings.ContainsAny(host, " /\\") {
		return ""
	}
	return host
}
