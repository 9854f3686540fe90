// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/powcontest/app/services/coordinator/handlers/v1/public"
	"github.com/ardanlabs/powcontest/foundation/contest/coordinator"
	"github.com/ardanlabs/powcontest/foundation/events"
	"github.com/ardanlabs/powcontest/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	Coord *coordinator.Coordinator
	Evts  *events.Hub
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		Coord: cfg.Coord,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/tx/assign", pbl.Assign)
	app.Handle(http.MethodGet, version, "/tx/list", pbl.Transactions)
	app.Handle(http.MethodGet, version, "/tx/challenge/:txid", pbl.Challenge)
	app.Handle(http.MethodGet, version, "/tx/status/:txid", pbl.Status)
	app.Handle(http.MethodGet, version, "/tx/winner/:txid", pbl.Winner)
	app.Handle(http.MethodGet, version, "/tx/solution/:txid", pbl.Solution)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.Submit)
}
