package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"story_weaver/config"
	"story_weaver/generator"
	"story_weaver/history"
	"story_weaver/logger"
	"story_weaver/metrics"
	"story_weaver/publisher"
)

//go:embed web
var embeddedStatic embed.FS

const sessionCookie = "sw_session"

var log = logger.Named("server")

type Server struct {
	cfg      config.Config
	store    *sessionStore
	metrics  *metrics.Metrics
	timeout  time.Duration
	staticFS http.Handler
}

func New(genAgent *generator.Agent, cfg config.Config, m *metrics.Metrics) (*Server, error) {
	if genAgent == nil {
		return nil, errors.New("generator agent required")
	}
	if m == nil {
		m = metrics.New()
	}

	sub, err := fs.Sub(embeddedStatic, "web")
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.LLM.Timeout)
	if timeout <= 0 {
		timeout = config.DefaultLLMTimeout
	}

	return &Server{
		cfg:      cfg,
		store:    newStore(genAgent, time.Duration(cfg.SessionTTL), m),
		metrics:  m,
		timeout:  timeout,
		staticFS: http.FileServer(http.FS(sub)),
	}, nil
}

// Run expires idle sessions until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.store.run(ctx)
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/custom", s.handleCustom)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("DELETE /api/history", s.handleClear)
	mux.HandleFunc("GET /api/history/{index}", s.handleRecord)
	mux.HandleFunc("GET /api/history/{index}/download", s.handleDownload)
	mux.HandleFunc("POST /api/translate", s.handleTranslate)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("GET /", s.staticFS)
	return s.logMiddleware(mux)
}

// --- Views ---

type generateReq struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
	Style    string `json:"style"`
	Length   string `json:"length"`
	Prompt   string `json:"prompt"`
}

type recordView struct {
	Index       int    `json:"index"`
	Epoch       uint64 `json:"epoch"`
	Title       string `json:"title"`
	Timestamp   string `json:"timestamp"`
	Theme       string `json:"theme"`
	Language    string `json:"language"`
	Style       string `json:"style"`
	Length      string `json:"length"`
	LengthLabel string `json:"length_label"`
	Custom      bool   `json:"custom"`
	Content     string `json:"content"`
	Preview     string `json:"preview"`
	HTML        string `json:"html,omitempty"`
	Filename    string `json:"filename"`
}

type historyResp struct {
	Order   string        `json:"order"`
	Records []recordView  `json:"records"`
	Stats   history.Stats `json:"stats"`
}

type translateReq struct {
	Index  int     `json:"index"`
	Epoch  *uint64 `json:"epoch,omitempty"`
	Target string  `json:"target"`
}

type translateResp struct {
	Record      recordView `json:"record"`
	Target      string     `json:"target"`
	Translation string     `json:"translation"`
}

type lengthOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type optionsResp struct {
	Styles    []string       `json:"styles"`
	Lengths   []lengthOption `json:"lengths"`
	Languages []string       `json:"languages"`
}

type statsResp struct {
	Total             int      `json:"total"`
	Languages         int      `json:"languages"`
	DistinctLanguages []string `json:"distinct_languages"`
}

func newRecordView(e generator.Entry, withHTML bool) recordView {
	r := e.Record
	v := recordView{
		Index:       e.Ref.Index,
		Epoch:       e.Ref.Epoch,
		Title:       r.Title(),
		Timestamp:   r.Stamp(),
		Theme:       r.Theme,
		Language:    r.Language,
		Style:       r.Style,
		Length:      r.Length.String(),
		LengthLabel: r.Length.Label(),
		Custom:      r.Custom,
		Content:     r.Content,
		Preview:     publisher.Preview(r.Content, publisher.PreviewWidth),
		Filename:    publisher.DownloadFilename(r.Theme, r.Language),
	}
	if withHTML {
		html, err := publisher.RenderHTML(r.Content)
		if err != nil {
			log.WithError(err).Warn("render markdown failed")
		} else {
			v.HTML = html
		}
	}
	return v
}

// --- Handlers ---

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, false)
}

func (s *Server) handleCustom(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, true)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, custom bool) {
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	length := history.Short
	if req.Length != "" {
		parsed, err := history.ParseLength(req.Length)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		length = parsed
	}
	params := generator.Params{
		Theme:        req.Theme,
		Language:     req.Language,
		Style:        req.Style,
		Length:       length,
		CustomPrompt: req.Prompt,
	}

	sess := s.session(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	mode := "template"
	start := time.Now()
	var (
		entry generator.Entry
		err   error
	)
	if custom {
		mode = "custom"
		entry, err = sess.GenerateCustom(ctx, params)
	} else {
		entry, err = sess.Generate(ctx, params)
	}
	if errors.Is(err, generator.ErrMissingField) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.RecordGeneration(mode, time.Since(start), err)
	if err != nil {
		log.WithError(err).WithField("mode", mode).Warn("generation failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	log.WithFields(logger.Fields{
		"session":  sess.ID,
		"index":    entry.Ref.Index,
		"language": entry.Record.Language,
		"mode":     mode,
	}).Info("generated record")
	writeJSON(w, http.StatusOK, newRecordView(entry, true))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	order := r.URL.Query().Get("order")
	if order == "" {
		order = "recent"
	}
	if order != "recent" && order != "original" {
		http.Error(w, "order must be recent or original", http.StatusBadRequest)
		return
	}
	sess := s.session(w, r)
	entries := sess.Entries(order == "recent")
	views := make([]recordView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newRecordView(e, false))
	}
	writeJSON(w, http.StatusOK, historyResp{Order: order, Records: views, Stats: sess.Stats()})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	n := sess.Clear()
	s.metrics.ClearsTotal.Inc()
	log.WithFields(logger.Fields{"session": sess.ID, "removed": n}).Info("cleared history")
	writeJSON(w, http.StatusOK, map[string]any{"cleared": n, "epoch": sess.Ref(0).Epoch})
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	entry, ok := s.lookup(w, r, sess)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newRecordView(entry, true))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	entry, ok := s.lookup(w, r, sess)
	if !ok {
		return
	}
	if err := publisher.WriteDownload(w, entry.Record); err != nil {
		log.WithError(err).Warn("download write failed")
	}
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess := s.session(w, r)
	ref := sess.Ref(req.Index)
	if req.Epoch != nil {
		ref.Epoch = *req.Epoch
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	start := time.Now()
	entry, text, err := sess.Translate(ctx, ref, req.Target)
	switch {
	case errors.Is(err, history.ErrIndexOutOfRange):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, generator.ErrMissingField):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.RecordTranslation(time.Since(start), err)
	if err != nil {
		log.WithError(err).Warn("translation failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, translateResp{
		Record:      newRecordView(entry, false),
		Target:      req.Target,
		Translation: text,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r).Stats()
	writeJSON(w, http.StatusOK, statsResp{
		Total:             st.Total,
		Languages:         len(st.Languages),
		DistinctLanguages: st.Languages,
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	lengths := make([]lengthOption, 0, 3)
	for _, l := range history.Lengths() {
		lengths = append(lengths, lengthOption{ID: l.String(), Label: l.Label()})
	}
	writeJSON(w, http.StatusOK, optionsResp{
		Styles:    generator.Styles(),
		Lengths:   lengths,
		Languages: generator.SuggestLanguages(r.URL.Query().Get("q"), 10),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"service":  "story_weaver",
		"sessions": s.store.len(),
	})
}

// --- Helpers ---

// session returns the caller's session, issuing a cookie for new ones.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *generator.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	sess, created := s.store.resolve(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// lookup resolves the {index} path value plus an optional ?epoch= query.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request, sess *generator.Session) (generator.Entry, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "index must be an integer", http.StatusBadRequest)
		return generator.Entry{}, false
	}
	ref := sess.Ref(index)
	if raw := r.URL.Query().Get("epoch"); raw != "" {
		epoch, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "epoch must be an unsigned integer", http.StatusBadRequest)
			return generator.Entry{}, false
		}
		ref.Epoch = epoch
	}
	entry, err := sess.Get(ref)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return generator.Entry{}, false
	}
	return entry, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.RecordHTTP(route, strconv.Itoa(rec.code), elapsed)
		log.WithFields(logger.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.code,
			"duration": elapsed.Round(time.Millisecond),
		}).Debug("request")
	})
}
