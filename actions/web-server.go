package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/aorist/flow"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/recipes"
	"github.com/spf13/afero"
)

const (
	urlContextDag   = "/dag"
	urlContextFlows = "/flows"
)

type WebServerConfig struct {
	LogLevel                  string `errorTxt:"log level" mandatory:"yes"`
	Scheme                    string `errorTxt:"scheme" mandatory:"no"`
	Addr                      net.IP `errorTxt:"address" mandatory:"no"`
	Port                      int    `errorTxt:"port" mandatory:"yes"`
	StatsDumpFrequencySeconds int
	Workers                   int
	RecipeFiles               []string
	Endpoints                 EndpointLoader
	Fs                        afero.Fs
	StackDumpOnPanic          bool
	ShutdownTimeout           time.Duration
}

// server holds what the HTTP handlers share.
type server struct {
	log      logger.Logger
	cfg      *WebServerConfig
	runs     *flow.SafeMapRunInfo
	recipes  *recipes.RecipeSet
	chanStop chan struct{}
	ctx      context.Context // parent of every flow run
	cancel   context.CancelFunc
}

func RunWebServer(web *WebServerConfig) error {
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	log, err := logger.NewLoggerE("aorist", web.LogLevel, web.StackDumpOnPanic, logger.WithJSONFormat())
	if err != nil {
		return err
	}
	s, err := newServer(log, web)
	if err != nil {
		return err
	}
	ctx, stop := flow.HandleSignals(context.Background(), log)
	defer stop()
	srv := s.start()
	return s.wait(ctx, srv)
}

func newServer(log logger.Logger, web *WebServerConfig) (*server, error) {
	if err := helper.ValidateStructIsPopulated(web); err != nil {
		return nil, err
	}
	r, err := loadRecipes(web.Fs, web.RecipeFiles)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &server{
		log:      log,
		cfg:      web,
		runs:     flow.NewSafeMapRunInfo(),
		recipes:  r,
		chanStop: make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/stop", GetHandlerStopServer(s.log, s.chanStop))
	r.Path("/health").HandlerFunc(GetHandlerHealth(s.log))
	r.Path(urlContextDag).Methods(http.MethodPost).HandlerFunc(GetHandlerDag(s))
	r.Path(urlContextFlows).Methods(http.MethodPost).HandlerFunc(GetHandlerFlowLaunch(s))
	r.Path(urlContextFlows).Methods(http.MethodGet).HandlerFunc(GetHandlerFlowList(s.log, s.runs))
	r.Path(urlContextFlows + "/{flowId}/status").HandlerFunc(GetHandlerFlowStatus(s.log, s.runs))
	r.Path(urlContextFlows + "/{flowId}/stats").HandlerFunc(GetHandlerFlowStats(s.log, s.runs))
	r.Path(urlContextFlows + "/{flowId}/stop").Methods(http.MethodPost).HandlerFunc(GetHandlerFlowStop(s.log, s.runs))
	return r
}

// start runs the HTTP server in the background.
func (s *server) start() *http.Server {
	srv := &http.Server{ // set timeouts to avoid Slowloris attacks.
		Addr:         fmt.Sprintf("%v:%v", s.cfg.Addr, s.cfg.Port),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      s.router(),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				s.log.Info(err)
			} else {
				s.log.Error(err)
				s.stop()
			}
		}
	}()
	scheme := s.cfg.Scheme
	if scheme == "" {
		scheme = "http"
	}
	s.log.Info(fmt.Sprintf("Listening on %v://%v:%v", strings.ToLower(scheme), s.cfg.Addr, s.cfg.Port))
	return srv
}

func (s *server) stop() {
	select {
	case s.chanStop <- struct{}{}:
	default: // a stop is already pending
	}
}

// wait blocks until the server is asked to stop or ctx is done, then stops all flow runs
// and shuts the server down.
func (s *server) wait(ctx context.Context, srv *http.Server) error {
	select {
	case <-s.chanStop:
	case <-ctx.Done():
	}
	s.log.Info("Shutting down web server...")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	s.runs.StopAll()
	if !s.waitForRuns(timeout) {
		s.log.Warn("Flow runs did not stop within ", timeout)
	}
	s.cancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// waitForRuns polls until every run has finished or timeout passes.
func (s *server) waitForRuns(timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		finished := true
		for _, ri := range s.runs.List() {
			if !ri.Status.IsFinished() {
				finished = false
				break
			}
		}
		if finished {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-time.After(100 * time.Millisecond):
		}
	}
}
