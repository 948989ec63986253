// Package sharehttp реализует HTTP-интерфейс файлообменника поверх одного
// каталога на диске. Основные эндпоинты:
//   - GET /: стартовая страница со ссылками на форму и листинг.
//   - GET /upload: HTML-форма multipart-загрузки.
//   - POST /upload, POST /: принимает multipart/form-data, каждая часть пишется в отдельный файл.
//   - GET /files/ и GET /files/{name}: листинг и скачивание через http.FileServer.
//   - GET /health: размер и число файлов в каталоге для health-check'ов.
//   - GET /metrics: метрики Prometheus.
package sharehttp
