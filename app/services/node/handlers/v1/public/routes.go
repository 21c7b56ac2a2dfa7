// Package public maintains the group of handlers for public access.
package public

import (
	"net/http"

	"github.com/ardanlabs/toyledger/foundation/blockchain/state"
	"github.com/ardanlabs/toyledger/foundation/events"
	"github.com/ardanlabs/toyledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// Routes binds all the public routes.
func Routes(app *web.App, cfg Config) {
	pbl := Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/blocks", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/blocks/:num", pbl.BlockByNumber)
	app.Handle(http.MethodGet, version, "/blocks/:num/merkle", pbl.Merkle)
	app.Handle(http.MethodPost, version, "/blocks/commit", pbl.Commit)
	app.Handle(http.MethodGet, version, "/tx/pending", pbl.Pending)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/validate", pbl.Validate)
}
