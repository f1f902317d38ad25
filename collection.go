package sieve

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/smhanov/sieve/query"
)

// CollectionOptions defines the configuration options for creating a
// Collection.
type CollectionOptions struct {
	// Name is the path of the store file, e.g. "people.dat".
	Name string

	// Fields declares the searchable schema. Required when the collection
	// does not exist yet; ignored when an existing collection is opened,
	// because the schema is loaded from disk.
	Fields *query.FieldSet
}

// Collection is a named set of JSON records backed by a memory-mapped
// store file, searchable through the query language. The schema is kept in
// a sidecar file next to the store so a collection reopens with the same
// declared fields.
type Collection struct {
	Name string

	fields *query.FieldSet
	store  *recordStore

	mutex       sync.Mutex
	watchers    map[uint64]*Watcher
	nextWatcher uint64
}

func schemaFileName(name string) string {
	return name + ".schema"
}

// NewCollection creates a new collection or opens an existing one.
func NewCollection(opts CollectionOptions) (*Collection, error) {
	fields := query.NewFieldSet()
	schemaData, err := os.ReadFile(schemaFileName(opts.Name))
	if err == nil {
		if err := json.Unmarshal(schemaData, fields); err != nil {
			return nil, fmt.Errorf("failed to load schema for %s: %v", opts.Name, err)
		}
	} else {
		if opts.Fields == nil || opts.Fields.Len() == 0 {
			return nil, fmt.Errorf("collection %s requires at least one field", opts.Name)
		}
		fields = opts.Fields
		data, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(schemaFileName(opts.Name), data, 0644); err != nil {
			return nil, err
		}
	}

	store, err := openStore(opts.Name)
	if err != nil {
		return nil, err
	}

	return &Collection{
		Name:     opts.Name,
		fields:   fields,
		store:    store,
		watchers: make(map[uint64]*Watcher),
	}, nil
}

// Fields returns the declared schema of the collection.
func (c *Collection) Fields() *query.FieldSet {
	return c.fields
}

// AddRecord stores a record under the given ID, replacing any existing
// record with that ID. Watchers whose query matches are notified.
func (c *Collection) AddRecord(id uint64, metadata map[string]interface{}) error {
	data, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode record: %v", err)
	}
	c.store.setRecord(id, data)
	c.notifyWatchers(id, data)
	return nil
}

// UpdateRecord replaces the metadata of an existing record.
func (c *Collection) UpdateRecord(id uint64, metadata map[string]interface{}) error {
	if !c.store.hasRecord(id) {
		return fmt.Errorf("record %d not found", id)
	}
	return c.AddRecord(id, metadata)
}

// GetRecord returns the metadata of a record.
func (c *Collection) GetRecord(id uint64) (map[string]interface{}, error) {
	data, err := c.store.readRecord(id)
	if err != nil {
		return nil, err
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

// RemoveRecord deletes a record.
func (c *Collection) RemoveRecord(id uint64) error {
	return c.store.deleteRecord(id)
}

// FilterArgs controls paging of filter results.
type FilterArgs struct {
	Offset int
	Limit  int // 0 means no limit
}

type FilterResult struct {
	ID       uint64                 `json:"id"`
	Metadata map[string]interface{} `json:"metadata"`
}

type FilterResults struct {
	Results      []FilterResult `json:"results"`
	TotalMatched int            `json:"total_matched"`
}

// Filter scans the collection and returns the records matching the query,
// in ascending ID order. TotalMatched counts all matches regardless of
// paging.
func (c *Collection) Filter(q *query.Query, args FilterArgs) (FilterResults, error) {
	match := q.MatchFunc(c.fields)

	results := FilterResults{Results: []FilterResult{}}
	err := c.store.forEach(func(id uint64, data []byte) error {
		ok, err := match(data)
		if err != nil {
			log.Printf("collection %s: skipping record %d: %v", c.Name, id, err)
			return nil
		}
		if !ok {
			return nil
		}
		results.TotalMatched++
		if results.TotalMatched <= args.Offset {
			return nil
		}
		if args.Limit > 0 && len(results.Results) >= args.Limit {
			return nil
		}
		var metadata map[string]interface{}
		if err := json.Unmarshal(data, &metadata); err != nil {
			return nil
		}
		results.Results = append(results.Results, FilterResult{ID: id, Metadata: metadata})
		return nil
	})
	return results, err
}

// CollectionStats summarizes a collection for the API.
type CollectionStats struct {
	RecordCount int
	StorageSize int64
	FieldCount  int
}

func (c *Collection) ComputeStats() CollectionStats {
	return CollectionStats{
		RecordCount: c.store.count(),
		StorageSize: c.store.size(),
		FieldCount:  c.fields.Len(),
	}
}

// Close closes the underlying store and releases all watchers.
func (c *Collection) Close() error {
	c.mutex.Lock()
	for id, w := range c.watchers {
		close(w.events)
		delete(c.watchers, id)
	}
	c.mutex.Unlock()
	return c.store.close()
}
