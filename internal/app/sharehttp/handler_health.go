package sharehttp

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
)

// healthStats описывает ответ /health.
type healthStats struct {
	OK         bool  `json:"ok"`
	TotalBytes int64 `json:"total_bytes"`
	Files      int   `json:"files"`
}

// health обходит корневой каталог и возвращает суммарный размер и число файлов.
func (a *Server) health(w http.ResponseWriter, r *http.Request) {
	var stats healthStats
	err := filepath.WalkDir(a.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			// Файл могли удалить или перезаписать во время обхода.
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		stats.TotalBytes += info.Size()
		stats.Files++

		return nil
	})
	if err != nil {
		a.log.Error("health walk failed", "root", a.root, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	stats.OK = true
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}
