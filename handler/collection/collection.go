package collection

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mager/makampitch/musicbrainz"
	"go.uber.org/zap"
)

// Lister lists the contents of a MusicBrainz collection.
type Lister interface {
	CollectionName(ctx context.Context, collectionID string) (string, error)
	ReleasesInCollection(ctx context.Context, collectionID string) ([]string, error)
	WorksInCollection(ctx context.Context, collectionID string) ([]string, error)
}

// CollectionHandler is an http.Handler
type CollectionHandler struct {
	log    *zap.SugaredLogger
	lister Lister
}

func (*CollectionHandler) Pattern() string {
	return "/collection/{id}/{entity:releases|works}"
}

// NewCollectionHandler builds a new CollectionHandler.
func NewCollectionHandler(log *zap.SugaredLogger, musicbrainzClient *musicbrainz.MusicbrainzClient) *CollectionHandler {
	return &CollectionHandler{log: log, lister: musicbrainzClient}
}

type CollectionResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Entity string   `json:"entity"`
	Items  []string `json:"items"`
}

// ServeHTTP lists the releases or works of a collection.
func (h *CollectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, entity := vars["id"], vars["entity"]
	l := h.log.With("collection", id, "entity", entity)

	list := h.lister.ReleasesInCollection
	if entity == "works" {
		list = h.lister.WorksInCollection
	}

	name, err := h.lister.CollectionName(r.Context(), id)
	if err != nil {
		l.Errorw("error fetching collection", "error", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	items, err := list(r.Context(), id)
	if err != nil {
		l.Errorw("error listing collection", "error", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	l.Infow("listed collection", "items", len(items))

	json.NewEncoder(w).Encode(CollectionResponse{ID: id, Name: name, Entity: entity, Items: items})
}
