package nethttp

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/acme/autocert"

	"github.com/kodeshop/rex/dispatch"
	"github.com/kodeshop/rex/rexconfig"
	"github.com/kodeshop/rex/rexlog"
)

// Handler adapts a *dispatch.Dispatcher to http.Handler: every request
// becomes a Context, is routed, and NotFound/panic outcomes are converted
// to HTTP responses. Grounded in the teacher's Router.ServeHTTP (router.go)
// and the recover block of handler.go, generalized from one monolithic
// ServeHTTP to "build a Context, hand it to the transport-agnostic
// Dispatcher".
type Handler struct {
	Dispatcher  *dispatch.Dispatcher
	SessionOpts Options
	Logger      rexlog.Logger
}

// NewHandler builds an http.Handler from a frozen dispatcher.
func NewHandler(d *dispatch.Dispatcher, opts Options) *Handler {
	return &Handler{Dispatcher: d, SessionOpts: opts, Logger: rexlog.Default}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := NewContext(w, r, h.SessionOpts)

	defer func() {
		ctx.w.Close()
		if v := recover(); v != nil {
			h.Logger.Error(fmt.Sprintf("panic handling %s %s: %v", r.Method, r.URL.Path, v))
			if !ctx.Responded() {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	}()

	responded, err := h.Dispatcher.Route(ctx)
	if err != nil {
		if _, ok := err.(*dispatch.NotFoundError); ok {
			http.NotFound(w, r)
			return
		}
		h.Logger.Error(err.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if !responded {
		http.NotFound(w, r)
	}
}

// Serve runs a rex server per cfg, optionally alongside a TLS listener
// (static cert/key or autocert). Grounded in the teacher's rex.go Serve.
func Serve(handler http.Handler, cfg rexconfig.Config) error {
	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once
	record := func(err error) {
		errOnce.Do(func() { firstErr = err })
	}

	if cfg.Port > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			srv := &http.Server{
				Addr:           fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
				Handler:        handler,
				ReadTimeout:    time.Duration(cfg.ReadTimeout) * time.Second,
				WriteTimeout:   time.Duration(cfg.WriteTimeout) * time.Second,
				MaxHeaderBytes: int(cfg.MaxHeaderBytes),
			}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				record(err)
			}
		}()
	}

	https := cfg.HTTPS
	if https.AutoTLS.AcceptTOS || (https.CertFile != "" && https.KeyFile != "") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			port := https.Port
			if port == 0 {
				port = 443
			}
			srv := &http.Server{
				Addr:           fmt.Sprintf("%s:%d", cfg.Host, port),
				Handler:        handler,
				ReadTimeout:    time.Duration(cfg.ReadTimeout) * time.Second,
				WriteTimeout:   time.Duration(cfg.WriteTimeout) * time.Second,
				MaxHeaderBytes: int(cfg.MaxHeaderBytes),
			}
			if https.AutoTLS.AcceptTOS {
				m := &autocert.Manager{Prompt: autocert.AcceptTOS}
				if https.AutoTLS.Cache != nil {
					m.Cache = https.AutoTLS.Cache
				} else if dir := https.AutoTLS.CacheDir; dir != "" {
					if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
						record(fmt.Errorf("nethttp: autotls cache dir %q is not a directory", dir))
						return
					} else if os.IsNotExist(err) {
						if err := os.MkdirAll(dir, 0755); err != nil {
							record(fmt.Errorf("nethttp: create autotls cache dir %q: %w", dir, err))
							return
						}
					}
					m.Cache = autocert.DirCache(dir)
				}
				if len(https.AutoTLS.Hosts) > 0 {
					m.HostPolicy = autocert.HostWhitelist(https.AutoTLS.Hosts...)
				}
				srv.TLSConfig = m.TLSConfig()
			}
			if err := srv.ListenAndServeTLS(https.CertFile, https.KeyFile); err != nil && err != http.ErrServerClosed {
				record(err)
			}
		}()
	}

	wg.Wait()
	return firstErr
}
