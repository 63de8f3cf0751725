package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
)

type repository struct {
	Name  string `json:"name"`
	Stars int    `json:"stars"`
}

type store struct {
	mu    sync.Mutex
	repos []repository
}

func (s *store) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.repos
	if name := r.URL.Query().Get("name"); name != "" {
		out = nil
		for _, repo := range s.repos {
			if repo.Name == name {
				out = append(out, repo)
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *store) get(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, repo := range s.repos {
		if repo.Name == r.PathValue("name") {
			writeJSON(w, http.StatusOK, repo)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func (s *store) create(w http.ResponseWriter, r *http.Request) {
	var repo repository
	if err := json.NewDecoder(r.Body).Decode(&repo); err != nil || repo.Name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Validation Failed"})
		return
	}

	s.mu.Lock()
	s.repos = append(s.repos, repo)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, repo)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func main() {
	s := &store{repos: []repository{{Name: "spyder", Stars: 42}, {Name: "warp", Stars: 7}}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repositories", s.list)
	mux.HandleFunc("POST /repositories", s.create)
	mux.HandleFunc("GET /repositories/{name}", s.get)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	log.Println("demo-backend listening on :9000")
	log.Fatal(http.ListenAndServe(":9000", mux))
}
