// Package nethttp is the ambient net/http-backed reference implementation
// of route.HttpContext: request/response helpers, gzip/brotli compression,
// cookie sessions and structured logging. The routing core (pattern, route,
// routing, discovery, dispatch) never imports net/http; this package is
// where a request actually meets a Route.
//
// Grounded in the teacher's ctx.go/context.go/response.go/writer.go/form.go
// quartet, reconciled into one coherent generation (the retrieved teacher
// tree carried several incompatible historical versions of this quartet
// side by side — see DESIGN.md).
package nethttp

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/ije/gox/log"
	"github.com/ije/gox/utils"

	"github.com/kodeshop/rex/route"
	"github.com/kodeshop/rex/session"
)

// Context is the reference route.HttpContext implementation built by Handler
// for every request and used by this package's tests.
type Context struct {
	w         *responseWriter
	r         *http.Request
	requestID string
	path      string
	params    map[string]string
	logger    *log.Logger

	sidStore    session.SIDStore
	sessionPool session.Pool
	sess        session.Session
}

// Options configures optional collaborators of a Context. A nil field
// disables the corresponding feature (e.g. Session returns an error without
// both a SIDStore and a SessionPool).
type Options struct {
	SIDStore    session.SIDStore
	SessionPool session.Pool
	Logger      *log.Logger
}

// NewContext wraps a net/http request/response pair as a route.HttpContext.
// The request ID is a fresh UUID (spec.md §6's "request.id", used across
// logging), grounded in the pattern rivaas-dev-rivaas and vitalvas-kasper
// both use for correlating a request across log lines.
func NewContext(w http.ResponseWriter, r *http.Request, opts Options) *Context {
	logger := opts.Logger
	if logger == nil {
		logger = &log.Logger{}
	}
	return &Context{
		w:           newResponseWriter(w),
		r:           r,
		requestID:   uuid.NewString(),
		path:        utils.CleanPath(r.URL.Path),
		params:      map[string]string{},
		logger:      logger,
		sidStore:    opts.SIDStore,
		sessionPool: opts.SessionPool,
	}
}

// Method implements route.HttpContext.
func (c *Context) Method() route.HttpMethod { return route.HttpMethod(c.r.Method) }

// Path implements route.HttpContext.
func (c *Context) Path() string { return c.path }

// RequestID implements route.HttpContext.
func (c *Context) RequestID() string { return c.requestID }

// Params implements route.HttpContext.
func (c *Context) Params() map[string]string { return c.params }

// MergeParams implements route.HttpContext.
func (c *Context) MergeParams(p map[string]string) {
	for k, v := range p {
		c.params[k] = v
	}
}

// Responded implements route.HttpContext.
func (c *Context) Responded() bool { return c.w.headerSent }

// Request returns the underlying *http.Request.
func (c *Context) Request() *http.Request { return c.r }

// ResponseWriter returns the underlying http.ResponseWriter, wrapped for
// compression and Hijack/Flush passthrough.
func (c *Context) ResponseWriter() http.ResponseWriter { return c.w }

// Query returns the request's parsed query string.
func (c *Context) Query() url.Values { return c.r.URL.Query() }

// Header returns the response header map.
func (c *Context) Header() http.Header { return c.w.Header() }

// SetHeader sets a response header.
func (c *Context) SetHeader(key, value string) { c.w.Header().Set(key, value) }

// RemoteIP returns the client's IP address, honoring X-Real-IP and
// X-Forwarded-For (teacher context.go RemoteIP).
func (c *Context) RemoteIP() string {
	ip := c.r.Header.Get("X-Real-IP")
	if ip == "" {
		ip = c.r.Header.Get("X-Forwarded-For")
		if ip != "" {
			ip, _ = utils.SplitByFirstByte(ip, ',')
		} else {
			ip = c.r.RemoteAddr
		}
	}
	ip, _ = utils.SplitByLastByte(ip, ':')
	return ip
}

// Logger returns the request-scoped logger.
func (c *Context) Logger() *log.Logger { return c.logger }

// Cookie returns a request cookie by name.
func (c *Context) Cookie(name string) (*http.Cookie, error) { return c.r.Cookie(name) }

// SetCookie appends a Set-Cookie response header.
func (c *Context) SetCookie(cookie *http.Cookie) {
	if cookie != nil {
		c.w.Header().Add("Set-Cookie", cookie.String())
	}
}

// Session lazily loads (or creates) this request's session. It returns an
// error when no SIDStore or SessionPool is configured.
func (c *Context) Session() (session.Session, error) {
	if c.sessionPool == nil || c.sidStore == nil {
		return nil, fmt.Errorf("nethttp: no session pool configured")
	}
	if c.sess != nil {
		return c.sess, nil
	}
	sid := c.sidStore.Get(c.r)
	sess, err := c.sessionPool.GetSession(sid)
	if err != nil {
		return nil, err
	}
	c.sess = sess
	if sess.SID() != sid {
		c.sidStore.Put(c.w, sess.SID())
	}
	return sess, nil
}

// JSON writes v as a compressed, negotiated JSON response (teacher
// context.go respondWith / ctx.go json path).
func (c *Context) JSON(status int, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.enableCompression("application/json", len(data))
	c.w.WriteHeader(status)
	_, err = c.w.Write(data)
	return err
}

// Text writes a plain-text response.
func (c *Context) Text(status int, s string) error {
	c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.enableCompression("text/plain", len(s))
	c.w.WriteHeader(status)
	_, err := c.w.Write([]byte(s))
	return err
}

// NoContent writes a status-only response with no body.
func (c *Context) NoContent(status int) {
	c.w.WriteHeader(status)
}

// Redirect writes an HTTP redirect.
func (c *Context) Redirect(url string, status int) {
	c.w.Header().Set("Location", url)
	c.w.WriteHeader(status)
}

// enableCompression negotiates gzip/brotli per the Accept-Encoding header,
// grounded in the teacher's context.go enableCompression, generalized to
// take an explicit content type/size instead of assuming ctx.compress.
func (c *Context) enableCompression(contentType string, contentSize int) {
	if contentSize <= 1024 || !isCompressible(contentType) {
		return
	}
	if c.w.headerSent {
		return
	}
	var encoding string
	for _, p := range strings.Split(c.r.Header.Get("Accept-Encoding"), ",") {
		name, _ := utils.SplitByFirstByte(p, ';')
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "br":
			encoding = "br"
		case "gzip":
			if encoding == "" {
				encoding = "gzip"
			}
		}
	}
	if encoding == "" {
		return
	}
	h := c.w.Header()
	vary := h.Get("Vary")
	if vary == "" {
		h.Set("Vary", "Accept-Encoding")
	} else if !strings.Contains(vary, "Accept-Encoding") {
		h.Set("Vary", vary+", Accept-Encoding")
	}
	h.Set("Content-Encoding", encoding)
	h.Del("Content-Length")
	switch encoding {
	case "br":
		c.w.compWriter = brotli.NewWriterLevel(c.w.raw, brotli.BestSpeed)
	case "gzip":
		c.w.compWriter, _ = gzip.NewWriterLevel(c.w.raw, gzip.BestSpeed)
	}
}

func isCompressible(contentType string) bool {
	return strings.HasPrefix(contentType, "text/") ||
		strings.HasPrefix(contentType, "application/json") ||
		strings.HasPrefix(contentType, "application/javascript") ||
		strings.HasPrefix(contentType, "application/xml")
}
