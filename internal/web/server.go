package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"sync"

	"pysweep/internal/model"
	"pysweep/internal/scan"
)

//go:embed static/*
var staticFS embed.FS

// Server exposes a read-only browser view of a discovery pass. Deletion is
// deliberately not reachable over HTTP.
type Server struct {
	engine *scan.Engine

	mu       sync.Mutex
	result   *model.DiscoveryResult
	analyzer *scan.Analyzer
}

func NewServer(engine *scan.Engine) *Server {
	return &Server{engine: engine}
}

// Start scans once and serves results on the given port until the process
// exits.
func (s *Server) Start(port string) {
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()

	subFS, _ := fs.Sub(staticFS, "static")
	mux.Handle("/", http.FileServer(http.FS(subFS)))

	mux.HandleFunc("/api/interpreters", s.handleInterpreters)
	mux.HandleFunc("/api/venvs", s.handleVenvs)
	mux.HandleFunc("/api/analysis", s.handleAnalysis)
	mux.HandleFunc("/api/rescan", s.handleRescan)

	fmt.Printf("Starting pysweep web server at http://localhost:%s\n", port)
	fmt.Printf("Go to http://localhost:%s in your browser.\n", port)

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

// discovery returns the cached pass, scanning on first use.
func (s *Server) discovery() *model.DiscoveryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		s.result = s.engine.Scan(false)
		s.analyzer = nil
	}
	return s.result
}

func (s *Server) handleInterpreters(w http.ResponseWriter, r *http.Request) {
	result := s.discovery()
	writeJSON(w, struct {
		Version      string              `json:"version"`
		Interpreters []model.Interpreter `json:"interpreters"`
	}{model.Version, result.Interpreters})
}

func (s *Server) handleVenvs(w http.ResponseWriter, r *http.Request) {
	result := s.discovery()
	writeJSON(w, struct {
		Version string             `json:"version"`
		Venvs   []model.VirtualEnv `json:"venvs"`
	}{model.Version, result.Venvs})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	result := s.discovery()

	s.mu.Lock()
	if s.analyzer == nil {
		s.analyzer = scan.NewAnalyzer(s.engine, result.Venvs)
	}
	analyzer := s.analyzer
	s.mu.Unlock()

	type dupEntry struct {
		Name     string   `json:"name"`
		Copies   int      `json:"copies"`
		Versions []string `json:"versions"`
		Venvs    []string `json:"venvs"`
	}

	dups := analyzer.Duplicates()
	var entries []dupEntry
	for _, name := range analyzer.TopDuplicates(len(dups)) {
		installs := dups[name]
		seen := map[string]struct{}{}
		var versions, venvs []string
		for _, inst := range installs {
			if _, ok := seen[inst.Version]; !ok {
				seen[inst.Version] = struct{}{}
				versions = append(versions, inst.Version)
			}
			venvs = append(venvs, inst.Venv.Path)
		}
		entries = append(entries, dupEntry{
			Name: name, Copies: len(installs), Versions: versions, Venvs: venvs,
		})
	}

	writeJSON(w, struct {
		UniquePackages int                 `json:"unique_packages"`
		Duplicates     []dupEntry          `json:"duplicates"`
		Conflicts      map[string][]string `json:"conflicts"`
	}{analyzer.UniquePackages(), entries, analyzer.VersionConflicts()})
}

func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	s.result = nil
	s.analyzer = nil
	s.mu.Unlock()
	result := s.discovery()
	writeJSON(w, struct {
		Interpreters int `json:"interpreters"`
		Venvs        int `json:"venvs"`
	}{len(result.Interpreters), len(result.Venvs)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
