package sharehttp

import (
	"fmt"
	"net/http"
	"time"

	"github.com/yourname/fileshare/internal/metrics"
	"github.com/yourname/fileshare/internal/models"
	"github.com/yourname/fileshare/internal/upload"
	"github.com/yourname/fileshare/pkg/httperrors"
)

// postUpload принимает multipart/form-data и пишет каждую часть в отдельный
// файл корневого каталога. При успехе отвечает 200 с пустым телом.
func (a *Server) postUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if a.maxUploadBytes > 0 {
		if r.ContentLength > a.maxUploadBytes {
			a.uploadFailed(w, r, start, models.UploadResult{},
				fmt.Errorf("%w: content-length %d", models.ErrTooLarge, r.ContentLength))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	}

	mr, err := upload.NewReader(r.Body, r.Header.Get("Content-Type"))
	if err != nil {
		a.uploadFailed(w, r, start, models.UploadResult{}, err)
		return
	}

	res, err := a.ingester.Ingest(r.Context(), mr)
	if err != nil {
		a.uploadFailed(w, r, start, res, err)
		return
	}

	a.metrics.ObserveUpload(metrics.OutcomeOK, len(res.Files), res.Bytes(), time.Since(start).Seconds())
	w.WriteHeader(http.StatusOK)
}

func (a *Server) uploadFailed(w http.ResponseWriter, r *http.Request, start time.Time, res models.UploadResult, err error) {
	code := httperrors.Status(err)

	outcome := metrics.OutcomeIOError
	switch code {
	case http.StatusBadRequest:
		outcome = metrics.OutcomeMalformed
	case http.StatusRequestEntityTooLarge:
		outcome = metrics.OutcomeTooLarge
	}
	a.metrics.ObserveUpload(outcome, len(res.Files), res.Bytes(), time.Since(start).Seconds())

	log := a.log.With("path", r.URL.Path, "stored", len(res.Files), "err", err)
	if code >= http.StatusInternalServerError {
		log.Error("upload failed")
	} else {
		log.Warn("upload rejected")
	}

	httperrors.Write(w, err)
}
