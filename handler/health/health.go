package health

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"

	"github.com/mager/makampitch/docserver"
	"go.uber.org/zap"
)

// HealthHandler reports whether the server and its backends are usable.
type HealthHandler struct {
	log   *zap.SugaredLogger
	store *docserver.Store
	db    *sql.DB
}

func (*HealthHandler) Pattern() string {
	return "/health"
}

// NewHealthHandler builds a new HealthHandler.
func NewHealthHandler(log *zap.SugaredLogger, store *docserver.Store, db *sql.DB) *HealthHandler {
	return &HealthHandler{
		log:   log,
		store: store,
		db:    db,
	}
}

type Response struct {
	Status    string `json:"status"`
	Docserver bool   `json:"docserver"`
	Database  bool   `json:"database"`
}

// ServeHTTP handles an HTTP request to the /health endpoint.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := Response{Status: "OK"}

	h.log.Debug("health check")

	if h.store != nil {
		if info, err := os.Stat(h.store.Root); err == nil && info.IsDir() {
			resp.Docserver = true
		}
	}
	if h.db != nil && h.db.PingContext(r.Context()) == nil {
		resp.Database = true
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
