// Package httpheader holds header-bag helpers shared by the middleware and
// the forwarding service.
package httpheader

import (
	"net/http"

	"github.com/golang/gddo/httputil/header"
)

// hopByHop lists the RFC 7230 section 6.1 connection-scoped headers, in
// canonical form. Intermediaries must not relay them.
var hopByHop = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// StripHopByHop deletes hop-by-hop headers from h in place, including any
// header named as a token of the Connection header.
func StripHopByHop(h http.Header) {
	for _, name := range header.ParseList(h, "Connection") {
		h.Del(name)
	}
	for _, name := range hopByHop {
		h.Del(name)
	}
}

// CloneWithout returns a deep copy of src minus the named headers. Names are
// matched case-insensitively; the remaining keys keep their original spelling
// and value order.
func CloneWithout(src http.Header, names ...string) http.Header {
	dst := src.Clone()
	if dst == nil {
		dst = make(http.Header)
	}
	for _, name := range names {
		Remove(dst, name)
	}
	return dst
}

// Remove deletes every key of h equal to name under case folding. Unlike
// http.Header.Del it also catches keys that were stored non-canonically.
func Remove(h http.Header, name string) {
	canonical := http.CanonicalHeaderKey(name)
	for key := range h {
		if key == canonical || http.CanonicalHeaderKey(key) == canonical {
			delete(h, key)
		}
	}
}
