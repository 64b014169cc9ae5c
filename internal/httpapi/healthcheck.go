package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"pwa-weather/internal/utils"
)

// ChannelStatus reports whether the worker channel is connected.
type ChannelStatus interface {
	IsConnected() bool
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	db      *sql.DB
	channel ChannelStatus
}

func NewHealthchecker(db *sql.DB, channel ChannelStatus) healthchecker {
	return &healthcheckerImpl{db: db, channel: channel}
}

// handleHealthz fails only on the database. A missing worker channel is
// reported but the page keeps working without it.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	var ok int
	if err := h.db.QueryRowContext(r.Context(), `SELECT 1`).Scan(&ok); err != nil {
		slog.Error("healthz: database unreachable", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "database unreachable")
		return
	}

	worker := "disabled"
	if h.channel != nil {
		worker = "disconnected"
		if h.channel.IsConnected() {
			worker = "connected"
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "ok",
		"worker":   worker,
	})
}

func registerHealthcheck(mux *http.ServeMux, db *sql.DB, channel ChannelStatus) {
	mux.HandleFunc("GET /healthz", NewHealthchecker(db, channel).handleHealthz)
}
