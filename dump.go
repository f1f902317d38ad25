package sieve

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/smhanov/sieve/query"
)

type exportedCollection struct {
	Fields  *query.FieldSet `json:"fields"`
	Records []FilterResult  `json:"records"`
}

// ExportJSON writes the schema and every record of a collection as a
// single JSON document.
func ExportJSON(c *Collection, w io.Writer) error {
	export := exportedCollection{Fields: c.Fields()}

	err := c.store.forEach(func(id uint64, data []byte) error {
		var metadata map[string]interface{}
		if err := json.Unmarshal(data, &metadata); err != nil {
			return fmt.Errorf("record %d: %v", id, err)
		}
		export.Records = append(export.Records, FilterResult{ID: id, Metadata: metadata})
		return nil
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON creates a collection at outputFile from a document produced by
// ExportJSON.
func ImportJSON(outputFile string, r io.Reader) error {
	var export exportedCollection
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return fmt.Errorf("invalid export document: %v", err)
	}

	collection, err := NewCollection(CollectionOptions{
		Name:   outputFile,
		Fields: export.Fields,
	})
	if err != nil {
		return err
	}
	defer collection.Close()

	for _, record := range export.Records {
		if err := collection.AddRecord(record.ID, record.Metadata); err != nil {
			return err
		}
	}
	return nil
}

// DumpStore prints the physical layout of a store file record by record.
func DumpStore(filename string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		return
	}
	if len(data) < storeHeaderSize || string(data[:len(storeMagic)]) != string(storeMagic) {
		fmt.Fprintf(os.Stderr, "%s is not a sieve store file\n", filename)
		return
	}

	fmt.Printf("File: %s (%d bytes)\n", filename, len(data))

	offset := int64(storeHeaderSize)
	for offset+freeMarkerSize <= int64(len(data)) {
		length := binary.LittleEndian.Uint64(data[offset:])
		if length == 0 {
			fmt.Printf("%8d: unwritten tail (%d bytes)\n", offset, int64(len(data))-offset)
			return
		}
		if int64(length) < freeMarkerSize || offset+int64(length) > int64(len(data)) {
			fmt.Printf("%8d: corrupt length %d\n", offset, length)
			return
		}
		id := binary.LittleEndian.Uint64(data[offset+8:])
		if id == deletedID {
			fmt.Printf("%8d: free (%d bytes)\n", offset, length)
		} else {
			dataLen := binary.LittleEndian.Uint64(data[offset+16:])
			fmt.Printf("%8d: record id=%d length=%d data=%s\n", offset, id, length, truncateForDump(data[offset+recordHeaderSize:offset+recordHeaderSize+int64(dataLen)]))
		}
		offset += int64(length)
	}
}

func truncateForDump(b []byte) string {
	const max = 60
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
