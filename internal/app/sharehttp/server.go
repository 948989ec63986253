package sharehttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourname/fileshare/internal/metrics"
	"github.com/yourname/fileshare/internal/upload"
	"github.com/yourname/fileshare/pkg/shareproto"
)

// Deps collects what the HTTP layer needs from the rest of the process.
type Deps struct {
	// Root is the absolute share directory.
	Root string

	Ingester *upload.Ingester

	// MaxUploadBytes caps the request body of an upload; 0 disables the cap.
	MaxUploadBytes int64

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Server serves the share directory over HTTP.
type Server struct {
	root           string
	ingester       *upload.Ingester
	maxUploadBytes int64
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	log            *slog.Logger
}

// New создаёт HTTP-обработчик файлообменника.
func New(d Deps) http.Handler {
	srv := &Server{
		root:           d.Root,
		ingester:       d.Ingester,
		maxUploadBytes: d.MaxUploadBytes,
		metrics:        d.Metrics,
		gatherer:       d.Gatherer,
		log:            d.Logger,
	}
	if srv.gatherer == nil {
		srv.gatherer = prometheus.DefaultGatherer
	}
	if srv.log == nil {
		srv.log = slog.Default()
	}

	return srv.routes()
}

// routes регистрирует страницы, загрузку, раздачу файлов и служебные ручки.
func (a *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.logRequests)
	r.Use(a.instrument)
	r.Use(middleware.Recoverer)

	r.Get(shareproto.PathIndex, a.index)
	r.Post(shareproto.PathIndex, a.postUpload)
	r.Get(shareproto.PathUpload, a.uploadForm)
	r.Post(shareproto.PathUpload, a.postUpload)

	// Without the trailing slash FileServer would render links relative to "/".
	r.Get(shareproto.PathFiles, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, shareproto.FilesPrefix, http.StatusMovedPermanently)
	})
	files := http.StripPrefix(shareproto.PathFiles, http.FileServer(http.Dir(a.root)))
	r.Get(shareproto.FilesPrefix+"*", files.ServeHTTP)
	r.Head(shareproto.FilesPrefix+"*", files.ServeHTTP)

	r.Get(shareproto.PathHealth, a.health)
	r.Method(http.MethodGet, shareproto.PathMetrics, promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	return r
}
