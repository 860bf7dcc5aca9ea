package server

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/minaorangina/removeone/store"
	"github.com/minaorangina/removeone/tournament"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TournamentListing is one row of GET /tournaments
type TournamentListing struct {
	ID       string            `json:"id"`
	Format   tournament.Format `json:"format"`
	Seed     int64             `json:"seed"`
	Games    int               `json:"games"`
	Errors   int               `json:"errors"`
	Champion string            `json:"champion"`
}

type ServerOpts struct {
	Addr   string
	Store  store.Store
	Hub    *Hub
	Logger logrus.FieldLogger
	// AccessLog receives one combined log line per request. It defaults to the logger.
	AccessLog io.Writer
}

// SpectatorServer is a read-only view of finished games and tournaments
type SpectatorServer struct {
	store store.Store
	hub   *Hub
	log   logrus.FieldLogger
	http.Server
}

// NewServer creates a SpectatorServer. A nil Hub means /ws is not served.
func NewServer(opts ServerOpts) *SpectatorServer {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.AccessLog == nil {
		opts.AccessLog = accessLog(opts.Logger)
	}

	s := &SpectatorServer{
		store: opts.Store,
		hub:   opts.Hub,
		log:   opts.Logger.WithField("component", "server"),
	}

	router := http.NewServeMux()
	router.Handle("/tournaments", http.HandlerFunc(s.HandleListTournaments))
	router.Handle("/tournaments/", http.HandlerFunc(s.HandleFindTournament))
	router.Handle("/games/", http.HandlerFunc(s.HandleFindGame))
	if s.hub != nil {
		router.Handle("/ws", http.HandlerFunc(s.HandleWS))
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet}),
	)

	s.Addr = opts.Addr
	s.Handler = handlers.CombinedLoggingHandler(opts.AccessLog, cors(router))

	return s
}

// ServeHTTP serves http
func (s *SpectatorServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler.ServeHTTP(w, r)
}

// Serve listens until ctx is cancelled, then shuts down and disconnects spectators
func (s *SpectatorServer) Serve(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() {
		errs <- s.ListenAndServe()
	}()

	s.log.WithField("addr", s.Addr).Info("serving spectators")

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	if s.hub != nil {
		s.hub.Close()
	}
	if err := s.Shutdown(context.Background()); err != nil {
		return err
	}
	if err := <-errs; err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *SpectatorServer) HandleListTournaments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	listings := []TournamentListing{}
	for _, summary := range s.store.Summaries() {
		listings = append(listings, TournamentListing{
			ID:       summary.ID,
			Format:   summary.Format,
			Seed:     summary.Seed,
			Games:    len(summary.Games),
			Errors:   summary.Errors,
			Champion: summary.Champion,
		})
	}

	s.writeJSON(w, listings)
}

func (s *SpectatorServer) HandleFindTournament(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, ok := pathID(w, r, "/tournaments/")
	if !ok {
		return
	}

	summary := s.store.FindSummary(id)
	if summary == nil {
		writeText(w, http.StatusNotFound, unknownIDMsg("tournament", id))
		return
	}

	s.writeJSON(w, summary)
}

func (s *SpectatorServer) HandleFindGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, ok := pathID(w, r, "/games/")
	if !ok {
		return
	}

	record := s.store.FindRecord(id)
	if record == nil {
		writeText(w, http.StatusNotFound, unknownIDMsg("game", id))
		return
	}

	data, err := record.Log()
	if err != nil {
		s.log.WithError(err).WithField("game_id", id).Error("could not encode record")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// HandleWS upgrades to a websocket that receives every GameResult published from now on
func (s *SpectatorServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		s.log.WithError(err).Warn("could not upgrade to websocket")
		return
	}

	s.hub.register(conn)
}

func unknownIDMsg(kind, id string) string {
	return fmt.Sprintf("unknown %s ID '%s'", kind, id)
}

// pathID extracts the single path segment after prefix, writing an error response if there isn't one
func pathID(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" {
		writeText(w, http.StatusBadRequest, "missing ID")
		return "", false
	}
	if strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return "", false
	}
	return id, true
}

// accessLog adapts a logrus logger or entry to the io.Writer gorilla/handlers wants
func accessLog(logger logrus.FieldLogger) io.Writer {
	type writerLogger interface {
		WriterLevel(level logrus.Level) *io.PipeWriter
	}
	if wl, ok := logger.(writerLogger); ok {
		return wl.WriterLevel(logrus.DebugLevel)
	}
	return ioutil.Discard
}
