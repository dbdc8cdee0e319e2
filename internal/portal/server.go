package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-candela/internal/config"
	diag "github.com/coreman2200/funtimes-candela/internal/diagnostics"
)

// Store persists the effect settings after a successful apply.
type Store interface {
	SaveEffect(config.Raw) error
}

// Server is the configuration service: form, JSON API, status and a
// websocket feed of status and diagnostics.
type Server struct {
	Cfg     *config.Applier
	Status  func() diag.Status
	Store   Store            // optional
	Metrics metrics.Registry // optional
	Push    time.Duration    // status push period on /ws

	mu      sync.Mutex // guards clients and serializes websocket writes
	clients map[*websocket.Conn]bool
}

func New(cfg *config.Applier, status func() diag.Status) *Server {
	return &Server{
		Cfg:     cfg,
		Status:  status,
		Push:    500 * time.Millisecond,
		clients: map[*websocket.Conn]bool{},
	}
}

// Routes returns the HTTP handler for the service.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HandleRoot)
	mux.HandleFunc("/config", s.HandleConfig)
	mux.HandleFunc("/status", s.HandleStatus)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/metrics", s.HandleMetrics)
	mux.HandleFunc("/ws", s.HandleWS)
	// OS connectivity checks land on the form, as on a captive portal.
	for _, p := range []string{"/generate_204", "/hotspot-detect.html", "/connecttest.txt", "/ncsi.txt"} {
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/", http.StatusFound)
		})
	}
	return mux
}

func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderForm(w, http.StatusOK, "")
}

func (s *Server) HandleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.Cfg.Active().Raw())
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	isJSON := false
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "application/json" {
		isJSON = true
	}

	var raw config.Raw
	var err error
	if isJSON {
		err = json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&raw)
	} else {
		raw, err = parseForm(r)
	}
	if err != nil {
		log.Warn().Err(err).Msg("malformed configuration request")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	act, err := s.Cfg.Apply(raw)
	if err != nil {
		d := diag.Rejected(err)
		log.Warn().Err(err).Str("code", d.Code).Msg("configuration rejected")
		s.pushDiag(d)
		if isJSON {
			writeJSON(w, http.StatusUnprocessableEntity, d)
		} else {
			s.renderForm(w, http.StatusUnprocessableEntity, d.Summary+": "+d.Detail)
		}
		return
	}

	log.Info().
		Uint64("version", act.Version).
		Bool("darkness", act.Darkness).
		Bool("flicker", act.FlickerEnabled).
		Bool("rotation", act.RotationEnabled).
		Dur("flicker_interval", act.FlickerInterval).
		Dur("hue_interval", act.HueInterval).
		Int("hue_modulus", act.HueModulus).
		Msg("configuration applied")
	if s.Store != nil {
		if err := s.Store.SaveEffect(act.Raw()); err != nil {
			log.Warn().Err(err).Msg("persisting configuration failed")
		}
	}
	s.pushDiag(diag.Applied(act))

	if isJSON {
		writeJSON(w, http.StatusOK, s.Status())
	} else {
		s.renderForm(w, http.StatusOK, "Saved.")
	}
}

func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Status())
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"frames":   st.Frames,
		"uptime_s": st.UptimeS,
		"version":  st.Version,
	})
}

func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.Metrics == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	metrics.WriteJSONOnce(s.Metrics, w)
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.send(conn, wsMessage{Type: "status", Status: statusPtr(s.Status())})

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Run pushes status to websocket clients every Push until ctx is done.
func (s *Server) Run(ctx context.Context) {
	period := s.Push
	if period <= 0 {
		period = 500 * time.Millisecond
	}
	tick := time.NewTicker(period)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.broadcast(wsMessage{Type: "status", Status: statusPtr(s.Status())})
		}
	}
}

type wsMessage struct {
	Type       string           `json:"type"` // "status" | "diagnostic"
	Status     *diag.Status     `json:"status,omitempty"`
	Diagnostic *diag.Diagnostic `json:"diagnostic,omitempty"`
}

func statusPtr(st diag.Status) *diag.Status { return &st }

func (s *Server) pushDiag(d diag.Diagnostic) {
	s.broadcast(wsMessage{Type: "diagnostic", Diagnostic: &d})
}

func (s *Server) broadcast(m wsMessage) {
	b, err := json.Marshal(m)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("ws write")
		}
	}
}

func (s *Server) send(c *websocket.Conn, m wsMessage) {
	b, err := json.Marshal(m)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	_ = c.WriteMessage(websocket.TextMessage, b)
}

// parseForm reads the captive-portal form. Unchecked boxes are absent from
// the form; empty numeric fields are left unset.
func parseForm(r *http.Request) (config.Raw, error) {
	if err := r.ParseForm(); err != nil {
		return config.Raw{}, err
	}
	raw := config.Raw{
		Darkness: checked(r, "darkness"),
		Flicker:  checked(r, "flicker"),
		Rotation: checked(r, "rotation"),
	}
	for _, f := range []struct {
		name string
		dst  **int
	}{
		{"brightness", &raw.Brightness},
		{"flickerFPS", &raw.FlickerFPS},
		{"hueFPS", &raw.HueFPS},
		{"hueRepeat", &raw.HueRepeat},
	} {
		v := r.PostForm.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return config.Raw{}, fmt.Errorf("%s: not a number: %q", f.name, v)
		}
		*f.dst = config.Int(n)
	}
	return raw, nil
}

func checked(r *http.Request, name string) bool {
	switch r.PostForm.Get(name) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		log.Debug().Err(err).Msg("write response")
	}
}
