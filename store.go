package sieve

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/go-mmap/mmap"
)

// The store file is a header followed by a series of records.
// Each record is:
// uint64 - total length of the allocation
// uint64 - record ID, or all 0xff if the space is free
// uint64 - length of the data
// data
//
// Free space always starts with a valid length/ID pair so the file can be
// scanned record by record when it is reopened.

const (
	storeHeaderSize  = 16
	recordHeaderSize = 24
	freeMarkerSize   = 16
	minGrowthBytes   = 4096
	deletedID        = 0xffffffffffffffff
)

var storeMagic = []byte("SIEVEDB1")

type recordStore struct {
	*mmap.File
	sync.Mutex

	// offsets of each record id into the file
	idOffsets map[uint64]int64

	freemap freeMap

	name string
}

// openStore opens or creates a memory-mapped store file and rebuilds the
// record index and free-space map by scanning it.
func openStore(name string) (*recordStore, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() < minGrowthBytes {
		if err := f.Truncate(minGrowthBytes); err != nil {
			f.Close()
			return nil, err
		}
	}
	if info.Size() == 0 {
		if _, err := f.WriteAt(storeMagic, 0); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.Close()

	mf, err := mmap.OpenFile(name, mmap.Read|mmap.Write)
	if err != nil {
		return nil, err
	}

	s := &recordStore{
		File:      mf,
		idOffsets: make(map[uint64]int64),
		name:      name,
	}

	header := make([]byte, len(storeMagic))
	s.ReadAt(header, 0)
	if string(header) != string(storeMagic) {
		s.File.Close()
		return nil, fmt.Errorf("%s is not a sieve store file", name)
	}

	s.scan()
	return s, nil
}

// scan walks the records in the file, rebuilding idOffsets and the free
// map. A zero length means the rest of the file has never been written.
func (s *recordStore) scan() {
	fileLen := int64(s.File.Len())
	offset := int64(storeHeaderSize)

	for offset+freeMarkerSize <= fileLen {
		length := int64(s.readUint64(offset))
		if length == 0 {
			break
		}
		if length < freeMarkerSize || offset+length > fileLen {
			log.Printf("store %s: corrupt record at offset %d, ignoring remainder", s.name, offset)
			break
		}
		id := s.readUint64(offset + 8)
		if id == deletedID {
			s.freemap.markFree(int(offset), int(length))
		} else {
			s.idOffsets[id] = offset
		}
		offset += length
	}

	s.freemap.markFree(int(offset), int(fileLen-offset))
}

// ensureLength grows the file to at least the given length and remaps it.
func (s *recordStore) ensureLength(length int) {
	curSize := s.File.Len()
	if curSize >= length {
		return
	}

	length += minGrowthBytes

	if err := s.File.Close(); err != nil {
		log.Panic(err)
	}

	file, err := os.OpenFile(s.name, os.O_RDWR, 0644)
	if err != nil {
		log.Panic(err)
	}
	defer file.Close()

	if err := file.Truncate(int64(length)); err != nil {
		log.Panic(err)
	}

	s.freemap.markFree(curSize, length-curSize)

	s.File, err = mmap.OpenFile(s.name, mmap.Read|mmap.Write)
	if err != nil {
		log.Panic(err)
	}
}

// allocate finds space for a record of the given total length. The
// remainder of the containing free block is swallowed when it is too small
// to hold a free marker, otherwise a marker is written so the file still
// scans cleanly.
func (s *recordStore) allocate(need int) (int64, int64) {
	start, remaining, err := s.freemap.getFreeRange(need)
	if err != nil {
		s.ensureLength(s.File.Len() + need)
		start, remaining, err = s.freemap.getFreeRange(need)
		if err != nil {
			log.Panic("failed to allocate space for record")
		}
	}

	total := int64(need)
	if remaining > 0 && remaining < freeMarkerSize {
		s.freemap.markUsed(int(start)+need, int(remaining))
		total += remaining
	} else if remaining > 0 {
		s.writeUint64(start+total, uint64(remaining))
		s.writeUint64(start+total+8, deletedID)
	}
	return start, total
}

// setRecord writes a record, replacing any previous record with the same
// ID and freeing its space.
func (s *recordStore) setRecord(id uint64, data []byte) {
	s.Lock()
	defer s.Unlock()

	start, total := s.allocate(recordHeaderSize + len(data))

	s.writeUint64(start, uint64(total))
	s.writeUint64(start+8, id)
	s.writeUint64(start+16, uint64(len(data)))
	s.WriteAt(data, start+recordHeaderSize)
	s.File.Sync()

	if oldOffset, exists := s.idOffsets[id]; exists {
		oldLength := s.readUint64(oldOffset)
		s.writeUint64(oldOffset+8, deletedID)
		s.freemap.markFree(int(oldOffset), int(oldLength))
	}

	s.idOffsets[id] = start
}

// readRecord reads a record by its ID.
func (s *recordStore) readRecord(id uint64) ([]byte, error) {
	s.Lock()
	defer s.Unlock()
	return s.readRecordLocked(id)
}

func (s *recordStore) readRecordLocked(id uint64) ([]byte, error) {
	offset, exists := s.idOffsets[id]
	if !exists {
		return nil, errors.New("record not found")
	}

	dataLen := s.readUint64(offset + 16)
	data := make([]byte, dataLen)
	s.ReadAt(data, offset+recordHeaderSize)
	return data, nil
}

// deleteRecord marks a record as deleted and frees its space.
func (s *recordStore) deleteRecord(id uint64) error {
	s.Lock()
	defer s.Unlock()

	offset, exists := s.idOffsets[id]
	if !exists {
		return errors.New("record not found")
	}

	s.writeUint64(offset+8, deletedID)

	recordLength := s.readUint64(offset)
	s.freemap.markFree(int(offset), int(recordLength))
	s.File.Sync()

	delete(s.idOffsets, id)
	return nil
}

func (s *recordStore) hasRecord(id uint64) bool {
	s.Lock()
	defer s.Unlock()
	_, exists := s.idOffsets[id]
	return exists
}

// ids returns all record IDs in ascending order.
func (s *recordStore) ids() []uint64 {
	s.Lock()
	defer s.Unlock()

	result := make([]uint64, 0, len(s.idOffsets))
	for id := range s.idOffsets {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// forEach calls fn for every record in ascending ID order. Iteration stops
// on the first error.
func (s *recordStore) forEach(fn func(id uint64, data []byte) error) error {
	for _, id := range s.ids() {
		data, err := s.readRecord(id)
		if err != nil {
			continue // deleted between ids() and here
		}
		if err := fn(id, data); err != nil {
			return err
		}
	}
	return nil
}

func (s *recordStore) count() int {
	s.Lock()
	defer s.Unlock()
	return len(s.idOffsets)
}

func (s *recordStore) size() int64 {
	return int64(s.File.Len())
}

func (s *recordStore) close() error {
	return s.File.Close()
}

func (s *recordStore) readUint64(offset int64) uint64 {
	buf := make([]byte, 8)
	s.ReadAt(buf, offset)
	return binary.LittleEndian.Uint64(buf)
}

func (s *recordStore) writeUint64(offset int64, value uint64) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, value)
	s.WriteAt(buf, offset)
}
