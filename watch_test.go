package sieve

import (
	"testing"
	"time"

	"github.com/smhanov/sieve/query"
)

func TestWatcherReceivesMatchingRecords(t *testing.T) {
	c := makePeopleCollection(t, "test_people_watch.dat")
	defer c.Close()

	q, err := query.Parse(c.Fields(), `state=open`)
	if err != nil {
		t.Fatal(err)
	}

	watcher := c.Watch(q)
	defer watcher.Close()

	c.AddRecord(10, map[string]interface{}{"name": "Dave", "age": 40.0, "state": "open"})
	c.AddRecord(11, map[string]interface{}{"name": "Eve", "age": 41.0, "state": "closed"})
	c.AddRecord(12, map[string]interface{}{"name": "Frank", "age": 42.0, "state": "open"})

	var got []uint64
	timeout := time.After(time.Second)
	for len(got) < 2 {
		select {
		case event := <-watcher.Events():
			got = append(got, event.ID)
		case <-timeout:
			t.Fatalf("Timed out waiting for events, got %v", got)
		}
	}

	if got[0] != 10 || got[1] != 12 {
		t.Errorf("Expected events for records 10 and 12, got %v", got)
	}

	// nothing else should arrive
	select {
	case event := <-watcher.Events():
		t.Errorf("Unexpected extra event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatcherCloseStopsEvents(t *testing.T) {
	c := makePeopleCollection(t, "test_people_watch_close.dat")
	defer c.Close()

	q, _ := query.Parse(c.Fields(), ``)
	watcher := c.Watch(q)
	watcher.Close()
	watcher.Close() // closing twice is fine

	if _, open := <-watcher.Events(); open {
		t.Error("Expected events channel closed after Close")
	}

	// writing after close must not panic
	c.AddRecord(20, map[string]interface{}{"name": "Gina", "age": 30.0, "state": "new"})
}
