package httpapi

import (
	"net/http"
	"path/filepath"
)

// ServiceWorkerFile is the worker script inside the static directory.
const ServiceWorkerFile = "service-worker.js"

func registerStatic(mux *http.ServeMux, staticDir string) {
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	swPath := filepath.Join(staticDir, ServiceWorkerFile)
	mux.HandleFunc("GET /"+ServiceWorkerFile, func(w http.ResponseWriter, r *http.Request) {
		// Served from the root so the worker may control the whole origin.
		w.Header().Set("Service-Worker-Allowed", "/")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		http.ServeFile(w, r, swPath)
	})
}
