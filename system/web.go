package system

import (
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/crewjam/csp"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
)

// Handler returns the full site: static pages, SEO files, status and the
// contact API, behind the logging, recovery and header middleware.
func (s *System) Handler() http.Handler {
	static := http.FileServer(publicFS{
		fs:     http.Dir(s.config.Meta.PathPublic),
		hidden: s.configPublicPath(),
	})

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.HitCounter)
	r.Use(middleware.Recoverer)
	r.Use(s.SecureHeaders)
	r.Use(middleware.GetHead)
	if s.config.Sec.CSRF {
		r.Use(s.csrfProtect)
	}

	r.Get("/", s.HomeHandler)
	r.Get("/sitemap.xml", s.SitemapHandler)
	r.Get("/robots.txt", s.RobotsHandler)
	r.Get("/status", s.StatusHandler)
	r.Post("/api/contact", s.ContactHandler)
	r.Get("/*", static.ServeHTTP)

	// only routed paths answer 405, anything else is a missing file
	routed := map[string]bool{"/": true, "/sitemap.xml": true, "/robots.txt": true, "/status": true, "/api/contact": true}
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		if !routed[r.URL.Path] {
			http.NotFound(w, r)
			return
		}
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})
	return r
}

// configPublicPath returns the URL path of the config file when it lies
// inside the public dir, or "".
func (s *System) configPublicPath() string {
	if s.config.ConfigFilePath == "" {
		return ""
	}
	conf, err := filepath.Abs(s.config.ConfigFilePath)
	if err != nil {
		return ""
	}
	public, err := filepath.Abs(s.config.Meta.PathPublic)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(public, conf)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return "/" + filepath.ToSlash(rel)
}

// SecureHeaders sets the security and cache headers on every response.
func (s *System) SecureHeaders(h http.Handler) http.Handler {
	policy := s.cspHeader()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("X-Content-Type-Options", "nosniff")
		hdr.Set("X-Frame-Options", "DENY")
		hdr.Set("X-XSS-Protection", "1; mode=block")
		hdr.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		hdr.Set("Cache-Control", "public, max-age=31536000")
		if policy != "" {
			hdr.Set("Content-Security-Policy", policy)
		}
		h.ServeHTTP(w, r)
	})
}

func (s *System) cspHeader() string {
	c := s.config.Sec.CSP
	if len(c.DefaultSrc) == 0 {
		return ""
	}
	return csp.Header{
		DefaultSrc: c.DefaultSrc,
		ScriptSrc:  c.ScriptSrc,
		StyleSrc:   c.StyleSrc,
		ImgSrc:     c.ImgSrc,
		FontSrc:    c.FontSrc,
		ConnectSrc: c.ConnectSrc,
	}.String()
}

func (s *System) csrfProtect(h http.Handler) http.Handler {
	protect := csrf.Protect([]byte(s.config.Sec.CSRFKey),
		csrf.Secure(!s.config.Meta.DevelopmentMode),
		csrf.Path("/"),
		csrf.FieldName("_csrf"),
		csrf.CookieName(s.config.Sec.CookieName+"_csrf"),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailure)))(h)
	if !s.config.Meta.DevelopmentMode {
		return protect
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protect.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func (s *System) csrfFailure(w http.ResponseWriter, r *http.Request) {
	s.log.Warn().Err(csrf.FailureReason(r)).Str("path", r.URL.Path).Msg("csrf check failed")
	s.serveJSON(w, failure(http.StatusForbidden, MsgForbidden))
}

// HomeHandler serves the root document.
func (s *System) HomeHandler(w http.ResponseWriter, r *http.Request) {
	if s.config.Sec.CSRF {
		w.Header().Set("X-CSRF-Token", csrf.Token(r))
	}
	http.ServeFile(w, r, filepath.Join(s.config.Meta.PathPublic, "index.html"))
}

func (s *System) SitemapHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml")
	http.ServeFile(w, r, filepath.Join(s.config.Meta.PathPublic, "sitemap.xml"))
}

func (s *System) RobotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	http.ServeFile(w, r, filepath.Join(s.config.Meta.PathPublic, "robots.txt"))
}

// publicFS hides dotfiles, the config file and directories without an
// index.html.
type publicFS struct {
	fs     http.FileSystem
	hidden string
}

func (p publicFS) Open(name string) (http.File, error) {
	if p.hidden != "" && path.Clean("/"+name) == p.hidden {
		return nil, os.ErrNotExist
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return nil, os.ErrNotExist
		}
	}
	f, err := p.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := p.fs.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, os.ErrNotExist
		}
		index.Close()
	}
	return f, nil
}

// HitCounter http middleware that logs and counts
func (s *System) HitCounter(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Stats.hits.Add(1)
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		s.log.Debug().
			Str("host", r.Host).
			Str("method", r.Method).
			Str("ua", truncate(r.UserAgent(), 50)).
			Str("ip", ip).
			Str("forwarded", r.Header.Get("X-Forwarded-For")).
			Str("path", r.URL.Path).
			Msg("request")
		h.ServeHTTP(w, r)
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
