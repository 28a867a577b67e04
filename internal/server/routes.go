package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/caseflow/internal/api/v1"
	"github.com/gosuda/caseflow/internal/api/ws"
)

func registerAPIRoutes(api huma.API, store v1.DataStore, engine v1.TaskEngine) {
	v1.RegisterTaskRoutes(api, store, engine, nil)
	v1.RegisterCaseRoutes(api, store)
	v1.RegisterMessengerLinkRoutes(api, store)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/cases/{caseID}", hub.ServeCase)
	r.Get("/queue", hub.ServeQueue)
}
