// Admin API: a small JSON control surface over the running simulator.
package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"sarsim/internal/geo"
	"sarsim/internal/scenario"
	"sarsim/internal/sim"
)

type Server struct {
	Sim *sim.Simulator
	mux *http.ServeMux
}

func NewServer(simulator *sim.Simulator) *Server {
	s := &Server{Sim: simulator, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/state", s.handleState)
	s.mux.HandleFunc("/scenario", s.handleScenario)
	s.mux.HandleFunc("/log", s.handleLog)
	s.mux.HandleFunc("/sensor-config", s.handleSensorConfig)
	s.mux.HandleFunc("/spawn", s.handleSpawn)
	s.mux.HandleFunc("/waypoint", s.handleWaypoint)
	s.mux.HandleFunc("/rtb", s.handleRTB)
	s.mux.HandleFunc("/speed", s.handleSpeed)
	s.mux.HandleFunc("/partition", s.handlePartition)
	s.mux.HandleFunc("/partition/clear", s.handlePartitionClear)
	s.mux.HandleFunc("/coverage", s.handleCoverage)
	s.mux.HandleFunc("/reset", s.handleReset)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Drones())
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Scenario())
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.DetectionLogEntries())
}

func (s *Server) handleSensorConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.Sim.SensorConfigSnapshot())
	case http.MethodPut, http.MethodPost:
		var cfg sim.SensorConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, "invalid sensor config: "+err.Error(), http.StatusBadRequest)
			return
		}
		s.Sim.SetSensorConfig(cfg)
		writeJSON(w, s.Sim.SensorConfigSnapshot())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	model := r.URL.Query().Get("model")
	if model == "" {
		model = "vtol-scout"
	}
	at := s.Sim.Hub()
	if v := r.URL.Query().Get("x"); v != "" {
		at.X, _ = strconv.ParseFloat(v, 64)
	}
	if v := r.URL.Query().Get("y"); v != "" {
		at.Y, _ = strconv.ParseFloat(v, 64)
	}
	d, ok := s.Sim.Spawn(model, at)
	if !ok {
		http.Error(w, "unknown drone model: "+model, http.StatusBadRequest)
		return
	}
	writeJSON(w, d)
}

type waypointRequest struct {
	IDs    []string `json:"ids"`
	Point  geo.Vec2 `json:"point"`
	Append bool     `json:"append"`
}

func (s *Server) handleWaypoint(w http.ResponseWriter, r *http.Request) {
	var req waypointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid waypoint request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		http.Error(w, "ids must not be empty", http.StatusBadRequest)
		return
	}
	s.Sim.SetWaypoint(req.IDs, req.Point, req.Append)
	w.WriteHeader(http.StatusNoContent)
}

type rtbRequest struct {
	IDs       []string `json:"ids"`
	Immediate bool     `json:"immediate"`
}

func (s *Server) handleRTB(w http.ResponseWriter, r *http.Request) {
	var req rtbRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid rtb request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		for _, d := range s.Sim.Drones() {
			req.IDs = append(req.IDs, d.ID)
		}
	}
	s.Sim.ReturnToBase(req.IDs, req.Immediate)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	kts, err := strconv.ParseFloat(r.URL.Query().Get("kts"), 64)
	if err != nil {
		http.Error(w, "kts must be a number", http.StatusBadRequest)
		return
	}
	s.Sim.SetSpeed(id, kts)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePartition(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.Sim.Cells())
	case http.MethodPost:
		var req struct {
			IDs []string `json:"ids"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		writeJSON(w, s.Sim.RunPartition(req.IDs))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handlePartitionClear(w http.ResponseWriter, r *http.Request) {
	s.Sim.ClearPartition()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	spacing, err := strconv.ParseFloat(r.URL.Query().Get("spacing"), 64)
	if err != nil || spacing <= 0 {
		http.Error(w, "spacing must be a positive number", http.StatusBadRequest)
		return
	}
	overlap := 0.0
	if v := r.URL.Query().Get("overlap"); v != "" {
		overlap, err = strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "overlap must be a number", http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, s.Sim.StartCoverage(spacing, overlap))
}

type resetRequest struct {
	Seed     string  `json:"seed"`
	WidthKm  float64 `json:"widthKm"`
	HeightKm float64 `json:"heightKm"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid reset request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Seed == "" {
		http.Error(w, "seed is required", http.StatusBadRequest)
		return
	}
	scn := scenario.Generate(req.Seed, scenario.KmBounds{Width: req.WidthKm, Height: req.HeightKm})
	s.Sim.Reset(scn)
	writeJSON(w, scn)
}
