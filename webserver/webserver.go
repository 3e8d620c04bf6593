package webserver

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"beautycontest/config"
	"beautycontest/contestclient"
	"beautycontest/storage"
)

//go:embed static
var staticFiles embed.FS

type WebServer struct {
	storage       *storage.Storage
	fileConfig    *config.Config
	clientTimeout time.Duration
	templateVars  TemplateVars
	templates     *template.Template
	router        http.Handler
	httpSvr       *http.Server
	accessLog     io.WriteCloser
}

type WebServerArgs struct {
	Storage         *storage.Storage
	Config          *config.Config
	ClientTimeout   time.Duration
	BindAddr        string
	BindPort        int
	TemplateVars    TemplateVars
	ShutdownChannel <-chan interface{}
	WG              *sync.WaitGroup
}

type TemplateVars struct {
	Version string
}

type ApiError struct {
	Outcome  string `json:"outcome,omitempty"`
	Error    string `json:"error"`
	Status   int    `json:"status,omitempty"`
	Response string `json:"response,omitempty"`
}

// New builds the router without listening; Start serves it.
func New(args WebServerArgs) (*WebServer, error) {

	templates, err := template.ParseFS(staticFiles, "static/index.html")
	if err != nil {
		return nil, errors.Wrap(err, "Unable to parse templates")
	}

	clientTimeout := args.ClientTimeout
	if clientTimeout == 0 {
		clientTimeout = contestclient.REQUEST_TIMEOUT
	}

	fileConfig := args.Config
	if fileConfig == nil {
		fileConfig = config.New(nil)
	}

	ws := &WebServer{
		storage:       args.Storage,
		fileConfig:    fileConfig,
		clientTimeout: clientTimeout,
		templateVars:  args.TemplateVars,
		templates:     templates,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", ws.indexHandler).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/health", ws.health).Methods(http.MethodGet)
	apiRouter.HandleFunc("/commit", ws.doCommit).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/reveal", ws.doReveal).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/nonce", ws.suggestNonce).Methods(http.MethodGet)
	apiRouter.HandleFunc("/settings", ws.getSettings).Methods(http.MethodGet)
	apiRouter.HandleFunc("/settings", ws.saveSettings).Methods(http.MethodPost, http.MethodOptions)

	corsOpts := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	ws.accessLog = log.StandardLogger().WriterLevel(log.DebugLevel)
	ws.router = handlers.CombinedLoggingHandler(ws.accessLog, corsOpts(router))

	return ws, nil
}

func Start(args WebServerArgs) (*WebServer, error) {

	ws, err := New(args)
	if err != nil {
		return nil, err
	}

	httpAddr := fmt.Sprintf("%s:%d", args.BindAddr, args.BindPort)
	ws.httpSvr = &http.Server{
		Handler:      ws.router,
		Addr:         httpAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.WithField("Addr", httpAddr).Info("Beauty Contest WebUI Listening")

	// Launch webserver in background
	go func() {
		if err := ws.httpSvr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Errorf("Httpserver: ListenAndServe()")
		}
		log.Info("Httpserver: Shutdown")
	}()

	// Wait for shutdown signal on channel
	go func() {
		defer args.WG.Done()

		<-args.ShutdownChannel

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := ws.httpSvr.Shutdown(ctx); err != nil {
			log.WithError(err).Errorf("Httpserver: Shutdown()")
		}
		ws.accessLog.Close()
	}()

	return ws, nil
}

func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

func (ws *WebServer) indexHandler(w http.ResponseWriter, r *http.Request) {

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := ws.templates.ExecuteTemplate(w, "index.html", ws.templateVars); err != nil {
		log.WithError(err).Error("Unable to render index")
	}
}
