package sieve

import (
	"errors"
	"log"
	"sort"
)

const verboseFreeMap = false

// freeMap tracks unused byte ranges inside a store file so deleted record
// space can be reused.
type freeMap struct {
	freeSpaces []space
}

type space struct {
	start  int
	length int
}

// markUsed marks a range of space as used.
func (fm *freeMap) markUsed(start, length int) {
	if verboseFreeMap {
		log.Printf("markUsed: start=%d, length=%d", start, length)
	}
	if length <= 0 {
		return
	}

	for i, s := range fm.freeSpaces {
		if s.start <= start && start+length <= s.start+s.length {
			if start == s.start {
				// Used space is at the beginning
				fm.freeSpaces[i].start += length
				fm.freeSpaces[i].length -= length
			} else if start+length == s.start+s.length {
				// Used space is at the end
				fm.freeSpaces[i].length -= length
			} else {
				// Used space is in the middle, split the free space
				fm.freeSpaces = append(fm.freeSpaces, space{
					start:  start + length,
					length: s.start + s.length - (start + length),
				})
				fm.freeSpaces[i].length = start - s.start
			}

			if fm.freeSpaces[i].length == 0 {
				fm.freeSpaces = append(fm.freeSpaces[:i], fm.freeSpaces[i+1:]...)
			}
			sort.Slice(fm.freeSpaces, func(i, j int) bool {
				return fm.freeSpaces[i].start < fm.freeSpaces[j].start
			})
			break
		}
	}
}

// markFree marks a range of space as free, merging it with any contiguous
// free ranges.
func (fm *freeMap) markFree(start, length int) {
	if verboseFreeMap {
		log.Printf("markFree: start=%d, length=%d", start, length)
	}
	if length <= 0 {
		return
	}

	fm.freeSpaces = append(fm.freeSpaces, space{start, length})

	sort.Slice(fm.freeSpaces, func(i, j int) bool {
		return fm.freeSpaces[i].start < fm.freeSpaces[j].start
	})

	merged := []space{}
	for _, s := range fm.freeSpaces {
		if len(merged) == 0 || merged[len(merged)-1].start+merged[len(merged)-1].length < s.start {
			merged = append(merged, s)
		} else if s.start+s.length > merged[len(merged)-1].start+merged[len(merged)-1].length {
			merged[len(merged)-1].length = s.start + s.length - merged[len(merged)-1].start
		}
	}
	fm.freeSpaces = merged
}

// getFreeRange finds a free range of the specified length and marks it as
// used. It returns the start of the range and how much of the containing
// free block remains after it.
func (fm *freeMap) getFreeRange(length int) (int64, int64, error) {
	if length <= 0 {
		return 0, 0, errors.New("length must be positive")
	}

	for i, s := range fm.freeSpaces {
		if s.length >= length {
			start := s.start
			fm.freeSpaces[i].start += length
			fm.freeSpaces[i].length -= length

			if fm.freeSpaces[i].length == 0 {
				fm.freeSpaces = append(fm.freeSpaces[:i], fm.freeSpaces[i+1:]...)
			}

			return int64(start), int64(s.length - length), nil
		}
	}
	return 0, 0, errors.New("no sufficient free space available")
}
