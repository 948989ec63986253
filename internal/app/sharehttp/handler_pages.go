package sharehttp

import (
	_ "embed"
	"net/http"
)

var (
	//go:embed web/index.html
	indexPage []byte

	//go:embed web/upload.html
	uploadPage []byte
)

// index отдаёт стартовую страницу.
func (a *Server) index(w http.ResponseWriter, r *http.Request) {
	writePage(w, indexPage)
}

// uploadForm отдаёт форму загрузки.
func (a *Server) uploadForm(w http.ResponseWriter, r *http.Request) {
	writePage(w, uploadPage)
}

func writePage(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
