package sieve

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/smhanov/sieve/query"
)

type Server struct {
	collections map[string]*Collection
	mutex       sync.Mutex
}

func NewServer() *Server {
	return &Server{collections: make(map[string]*Collection)}
}

func (s *Server) collectionNameToFileName(name string) string {
	return filepath.Join(globalConfig.DataFolder, name+".dat")
}

func (s *Server) fileNameToCollectionName(fileName string) string {
	return strings.TrimSuffix(filepath.Base(fileName), ".dat")
}

// collectionFromPath resolves /api/v1/collections/{name}/... to a
// collection, writing the error response itself when the path is bad or the
// collection does not exist.
func (s *Server) collectionFromPath(w http.ResponseWriter, r *http.Request) (*Collection, bool) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return nil, false
	}
	name := parts[4]

	s.mutex.Lock()
	collection, exists := s.collections[name]
	s.mutex.Unlock()

	if !exists {
		log.Printf("Collection %s not found", name)
		http.Error(w, "Collection not found", http.StatusNotFound)
		return nil, false
	}
	return collection, true
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	log.Printf("Received %s request for %s", r.Method, r.URL.Path)

	switch r.Method {
	case http.MethodPost:
		var temp struct {
			Name   string          `json:"name"`
			Fields *query.FieldSet `json:"fields"`
		}

		if err := json.NewDecoder(r.Body).Decode(&temp); err != nil {
			log.Printf("Error decoding request body: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		s.mutex.Lock()
		defer s.mutex.Unlock()

		if _, exists := s.collections[temp.Name]; exists {
			log.Printf("Collection %s already exists", temp.Name)
			http.Error(w, "Collection already exists", http.StatusBadRequest)
			return
		}

		collection, err := NewCollection(CollectionOptions{
			Name:   s.collectionNameToFileName(temp.Name),
			Fields: temp.Fields,
		})
		if err != nil {
			log.Printf("Error creating collection %s: %v", temp.Name, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.collections[temp.Name] = collection
		log.Printf("Collection %s created successfully", temp.Name)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "Collection created successfully.", "collection_name": temp.Name})

	case http.MethodGet:
		s.mutex.Lock()
		defer s.mutex.Unlock()

		collectionsInfo := []map[string]interface{}{}
		for name, collection := range s.collections {
			stats := collection.ComputeStats()
			collectionsInfo = append(collectionsInfo, map[string]interface{}{
				"name":          name,
				"num_records":   stats.RecordCount,
				"storage_space": stats.StorageSize,
				"num_fields":    stats.FieldCount,
			})
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(collectionsInfo)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	log.Printf("Received %s request for %s", r.Method, r.URL.Path)

	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	collectionName := parts[4]

	s.mutex.Lock()
	defer s.mutex.Unlock()

	collection, exists := s.collections[collectionName]

	if !exists {
		log.Printf("Collection %s not found", collectionName)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"message": "Collection did not exist."})
			return
		}
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		stats := collection.ComputeStats()
		info := map[string]interface{}{
			"name":          collectionName,
			"num_records":   stats.RecordCount,
			"storage_space": stats.StorageSize,
			"fields":        collection.Fields(),
		}
		json.NewEncoder(w).Encode(info)

	case http.MethodDelete:
		log.Printf("Deleting collection %s", collectionName)
		delete(s.collections, collectionName)
		collection.Close()
		os.Remove(s.collectionNameToFileName(collectionName))
		os.Remove(schemaFileName(s.collectionNameToFileName(collectionName)))
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"message": "Collection deleted successfully."})
	}
}

func (s *Server) handleInsertRecords(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collectionFromPath(w, r)
	if !ok {
		return
	}

	var records []struct {
		ID       uint64                 `json:"id"`
		Metadata map[string]interface{} `json:"metadata"`
	}

	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	for _, record := range records {
		if err := collection.AddRecord(record.ID, record.Metadata); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Records inserted successfully.", "count": len(records)})
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collectionFromPath(w, r)
	if !ok {
		return
	}

	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 7 {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[6], 10, 64)
	if err != nil {
		http.Error(w, "Invalid record ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		metadata, err := collection.GetRecord(id)
		if err != nil {
			http.Error(w, "Record not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": id, "metadata": metadata})

	case http.MethodPut:
		var body struct {
			Metadata map[string]interface{} `json:"metadata"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := collection.UpdateRecord(id, body.Metadata); err != nil {
			http.Error(w, "Record not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "Record updated successfully.", "id": id})

	case http.MethodDelete:
		if err := collection.RemoveRecord(id); err != nil {
			http.Error(w, "Record not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "Record deleted successfully.", "id": id})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSearch filters a collection. The q parameter carries the
// advanced-search string; simple mode instead reads one parameter per
// declared field. The mode parameter forces a mode; otherwise the presence
// of a stored advanced string selects Advanced, mirroring the client-side
// toggle.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collectionFromPath(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()

	toggle := query.NewToggle(params.Get("q"))
	switch params.Get("mode") {
	case "simple":
		toggle.SwitchToSimple()
	case "advanced":
		toggle.SwitchToAdvanced()
	}

	q, err := toggle.Parse(collection.Fields(), params)
	if err != nil {
		log.Printf("Rejected query %q: %v", params.Get("q"), err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	var args FilterArgs
	args.Offset, _ = strconv.Atoi(params.Get("offset"))
	args.Limit, _ = strconv.Atoi(params.Get("limit"))

	results, err := collection.Filter(q, args)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(struct {
		Results      []FilterResult `json:"results"`
		TotalMatched int            `json:"total_matched"`
		Mode         string         `json:"mode"`
		Query        string         `json:"query"`
	}{
		Results:      results.Results,
		TotalMatched: results.TotalMatched,
		Mode:         toggle.Mode().String(),
		Query:        q.String(),
	})
}
