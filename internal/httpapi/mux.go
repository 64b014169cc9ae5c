package httpapi

import (
	"database/sql"
	"net/http"
)

// NewMux registers the infrastructure routes: /healthz, /static/ and the
// service worker script. channel may be nil when no worker channel exists.
func NewMux(db *sql.DB, staticDir string, channel ChannelStatus) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, channel)
	registerStatic(mux, staticDir)
	return mux
}
