package query

import (
	"net/url"
	"testing"
)

func TestFromValues(t *testing.T) {
	fields := testFields()

	values := url.Values{}
	values.Set("name", "smith")
	values.Set("age", "34")
	values.Set("ignored", "whatever") // not a declared field

	q, err := FromValues(fields, values)
	if err != nil {
		t.Fatalf("FromValues error: %v", err)
	}

	if len(q.Clauses) != 2 {
		t.Fatalf("Expected 2 clauses, got %d", len(q.Clauses))
	}

	// bound in declaration order, all with implicit "="
	if q.Clauses[0].Field != "name" || q.Clauses[1].Field != "age" {
		t.Errorf("Expected clauses for name then age, got %v", q.Clauses)
	}
	for _, c := range q.Clauses {
		if c.Op != OpEqual {
			t.Errorf("Expected operator =, got %q", c.Op)
		}
	}
	if q.Clauses[1].Value.(float64) != 34 {
		t.Errorf("Expected age value 34, got %v", q.Clauses[1].Value)
	}
}

func TestFromValuesEmpty(t *testing.T) {
	q, err := FromValues(testFields(), url.Values{})
	if err != nil {
		t.Fatalf("FromValues error: %v", err)
	}
	if !q.Empty() {
		t.Errorf("Expected empty query, got %v", q.Clauses)
	}
}

func TestFromValuesInvalidValue(t *testing.T) {
	values := url.Values{}
	values.Set("age", "asds")

	_, err := FromValues(testFields(), values)
	if err == nil {
		t.Fatal("Expected error for invalid number, got nil")
	}
	qerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if qerr.Kind != InvalidLiteral || qerr.Field != "age" {
		t.Errorf("Unexpected error details: %+v", qerr)
	}
}
