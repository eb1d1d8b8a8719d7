package middleware

import (
	"github.com/OFFIS-RIT/stormgraph/internal/queue"
	"github.com/OFFIS-RIT/stormgraph/internal/storage"
	"github.com/OFFIS-RIT/stormgraph/pkg/graph"
	"github.com/OFFIS-RIT/stormgraph/pkg/jobs"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/labstack/echo/v4"
)

type AppUser struct {
	Subject string
	Role    string
}

// App holds the process-wide dependencies shared by all handlers.
type App struct {
	Store      store.GraphStorage
	Tracker    *jobs.Tracker
	Dispatcher queue.Dispatcher
	Graph      *graph.GraphClient
	// Documents is nil when raw uploads are not archived.
	Documents *storage.DocumentStore
	// Key is nil when AUTH_URL is not configured.
	Key          keyfunc.Keyfunc
	MasterAPIKey string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
