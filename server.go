package sieve

import (
	"log"
	"net/http"
	"path/filepath"
	"strings"
)

// openCollections opens every collection found in the data folder so a
// restarted server serves the same data.
func (s *Server) openCollections() {
	files, err := filepath.Glob(filepath.Join(globalConfig.DataFolder, "*.dat"))
	if err != nil {
		log.Printf("Error scanning data folder: %v", err)
		return
	}
	for _, file := range files {
		name := s.fileNameToCollectionName(file)
		collection, err := NewCollection(CollectionOptions{Name: file})
		if err != nil {
			log.Printf("Skipping %s: %v", file, err)
			continue
		}
		s.collections[name] = collection
		log.Printf("Opened collection %s (%d records)", name, collection.ComputeStats().RecordCount)
	}
}

// handleAPI routes /api/v1/collections/{name}/... to the right handler.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 5:
		s.handleCollection(w, r)
	case len(parts) == 6 && parts[5] == "search":
		s.handleSearch(w, r)
	case len(parts) == 6 && parts[5] == "watch":
		s.handleWatch(w, r)
	case len(parts) == 6 && parts[5] == "records":
		s.handleInsertRecords(w, r)
	case len(parts) == 7 && parts[5] == "records":
		s.handleRecord(w, r)
	default:
		http.Error(w, "Invalid path", http.StatusBadRequest)
	}
}

// RunServer starts the HTTP API on the configured host and blocks.
func RunServer() {
	server := NewServer()
	server.openCollections()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/collections", requireAuth(server.handleCollections))
	mux.HandleFunc("/api/v1/collections/", requireAuth(server.handleAPI))

	log.Printf("Listening on %s", globalConfig.SieveHost)
	log.Fatal(http.ListenAndServe(globalConfig.SieveHost, mux))
}
