package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mager/makampitch/config"
	"github.com/mager/makampitch/database"
	"github.com/mager/makampitch/docserver"
	"github.com/mager/makampitch/extractor"
	"github.com/mager/makampitch/firestore"
	"github.com/mager/makampitch/handler/collection"
	"github.com/mager/makampitch/handler/health"
	"github.com/mager/makampitch/handler/recording"
	"github.com/mager/makampitch/logger"
	"github.com/mager/makampitch/musicbrainz"
	"github.com/mager/makampitch/pipeline"
	"github.com/mager/makampitch/pitch"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Route is an http.Handler that knows the mux pattern
// under which it will be registered.
type Route interface {
	http.Handler

	// Pattern reports the path at which this is registered.
	Pattern() string
}

// MethodRoute is a Route served for methods other than GET.
type MethodRoute interface {
	Route

	// Methods reports the HTTP methods the route accepts.
	Methods() []string
}

func main() {
	fx.New(
		fx.Provide(
			fx.Annotate(
				NewHTTPServer,
				fx.ParamTags(``, ``, ``, `group:"routes"`),
			),
			config.Options,
			logger.Options,
			docserver.Options,
			extractor.Options,
			pitch.ProvideCorrectedPitch,
			pitch.ProvideDunyaPitch,
			musicbrainz.Options,
			database.Options,
			database.ProvideRunLog,
			firestore.Options,
			firestore.ProvidePublisher,
			pipeline.Options,

			AsRoute(health.NewHealthHandler),
			AsRoute(recording.NewCorrectedPitchHandler),
			AsRoute(recording.NewDunyaPitchHandler),
			AsRoute(collection.NewCollectionHandler),
		),
		fx.WithLogger(func(log *zap.SugaredLogger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Desugar()}
		}),
		fx.Invoke(func(*http.Server) {}),
	).Run()
}

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg config.Config,
	logger *zap.SugaredLogger,
	routes []Route,
) *http.Server {
	router := mux.NewRouter()
	for _, route := range routes {
		methods := []string{http.MethodGet}
		if m, ok := route.(MethodRoute); ok {
			methods = m.Methods()
		}
		router.Handle(route.Pattern(), route).Methods(methods...)
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: jsonMiddleware(router)}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Infow("Starting HTTP server", "addr", srv.Addr, "routes", len(routes))
			go srv.Serve(ln)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}

// AsRoute annotates the given constructor to state that
// it provides a route to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
