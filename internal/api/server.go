// Package api serves the chart store and play history over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"git.lost.host/meutraa/autochart/internal/export"
	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/parser"
	"git.lost.host/meutraa/autochart/internal/score"
	"git.lost.host/meutraa/autochart/internal/session"
	"git.lost.host/meutraa/autochart/internal/store"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type Server struct {
	Store    store.Store
	Recorder score.Recorder // Optional
	Options  session.Options
	Origins  []string

	parser parser.DefaultParser
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/charts", s.handleList).Methods("GET")
	router.HandleFunc("/charts/{source}/{difficulty}", s.handleChart).Methods("GET")
	router.HandleFunc("/charts/{source}/{difficulty}/midi", s.handleMIDI).Methods("GET")
	router.HandleFunc("/charts/{source}/{difficulty}/scores", s.handleScores).Methods("GET")
	router.HandleFunc("/charts/{source}/{difficulty}/replay", s.handleReplay).Methods("POST")
	return router
}

// Handler is the router behind CORS, allowing every origin when none are
// configured.
func (s *Server) Handler() http.Handler {
	origins := s.Origins
	if 0 == len(origins) {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST"},
	}).Handler(s.Router())
}

func (s *Server) ListenAndServe(addr string) error {
	log.Println("listening on", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); nil != err {
		log.Println("unable to write response", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrConfig):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Println("request failed", err)
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) chart(r *http.Request) (*game.Chart, error) {
	vars := mux.Vars(r)
	return s.Store.Get(store.Key{SourceID: vars["source"], Difficulty: vars["difficulty"]})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Store.List()
	if nil != err {
		writeError(w, err)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	chart, err := s.chart(r)
	if nil != err {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := s.parser.Write(w, chart); nil != err {
		log.Println("unable to write chart", err)
	}
}

func (s *Server) handleMIDI(w http.ResponseWriter, r *http.Request) {
	chart, err := s.chart(r)
	if nil != err {
		writeError(w, err)
		return
	}
	smf, err := export.Build(chart)
	if nil != err {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", `attachment; filename="`+chart.SourceID+"-"+chart.Difficulty+`.mid"`)
	if _, err := smf.WriteTo(w); nil != err {
		log.Println("unable to write midi", err)
	}
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	if nil == s.Recorder {
		http.Error(w, "play history is disabled", http.StatusNotFound)
		return
	}
	chart, err := s.chart(r)
	if nil != err {
		writeError(w, err)
		return
	}
	histories, err := s.Recorder.Load(chart)
	if nil != err {
		writeError(w, err)
		return
	}
	writeJSON(w, histories)
}

// handleReplay scores an input log against a stored chart.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	chart, err := s.chart(r)
	if nil != err {
		writeError(w, err)
		return
	}
	var posted []Input
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxReplayBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&posted); nil != err {
		http.Error(w, "invalid input log: "+err.Error(), http.StatusBadRequest)
		return
	}
	ins, err := inputs(posted, chart, s.Options.Windows.Miss)
	if nil != err {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := session.Replay(chart, ins, s.Options)
	if errors.Is(err, game.ErrSerialization) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if nil != err {
		writeError(w, err)
		return
	}
	writeJSON(w, result)
}
