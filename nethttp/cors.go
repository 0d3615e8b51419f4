package nethttp

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/kodeshop/rex/route"
)

// CORSOptions configures the CORS before-hook (spec.md §4.6 "before").
// Grounded in the teacher's cors.go / config.go CORSConfig.
type CORSOptions struct {
	AllowOrigin      string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // seconds
}

// PublicCORS returns permissive defaults suitable for a public API,
// matching the teacher's PublicCORS().
func PublicCORS() CORSOptions {
	return CORSOptions{
		AllowOrigin:      "*",
		AllowMethods:     []string{"OPTIONS", "HEAD", "GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Accept", "Accept-Encoding", "Accept-Lang", "Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           60,
	}
}

// CORS builds a route.Handler suitable for dispatch.WithBefore: it sets the
// CORS response headers and, for a preflight OPTIONS request, responds
// immediately with 204 No Content (Responded() becomes true). The dispatcher
// still invokes the matched routes after the before-hook; a responded context
// only skips later Router.Use stages composed into the same hook.
func CORS(opts CORSOptions) route.Handler {
	return func(ctx route.HttpContext) route.HttpContext {
		c, ok := ctx.(*Context)
		if !ok || opts.AllowOrigin == "" {
			return ctx
		}
		c.SetHeader("Vary", "Origin")
		c.SetHeader("Access-Control-Allow-Origin", opts.AllowOrigin)
		if opts.AllowCredentials {
			c.SetHeader("Access-Control-Allow-Credentials", "true")
		}
		if len(opts.ExposeHeaders) > 0 {
			c.SetHeader("Access-Control-Expose-Headers", strings.Join(opts.ExposeHeaders, ", "))
		}
		if c.r.Method == http.MethodOptions {
			if len(opts.AllowMethods) > 0 {
				c.SetHeader("Access-Control-Allow-Methods", strings.Join(opts.AllowMethods, ", "))
			}
			if len(opts.AllowHeaders) > 0 {
				c.SetHeader("Access-Control-Allow-Headers", strings.Join(opts.AllowHeaders, ", "))
			}
			if opts.MaxAge > 0 {
				c.SetHeader("Access-Control-Max-Age", strconv.Itoa(opts.MaxAge))
			}
			c.NoContent(http.StatusNoContent)
		}
		return c
	}
}
