/*
Package sieve provides an embeddable filterable record store written in Go. Collections of JSON records are kept on disk in memory-mapped files and searched with a small advanced-query language, so applications get declarative filtering without pulling in a database server.

# The query language

A query is a whitespace-separated list of clauses, each of the form

	field operator value

where the operator is one of =, !=, :, <, <=, > and >=. Values containing spaces are double-quoted, and quotes inside quoted values are escaped with a backslash:

	name="John Smith" age>=18 state=open

Adjacent clauses are ANDed together; there is no OR or grouping. Every field used in a query must be declared up front with a type (text, number, date, boolean or choice), and each type permits only the operators that make sense for it: substring match (:) works on text, ordering works on numbers and dates, choices accept only =. A query that names an unknown field, applies a forbidden operator or supplies a malformed value is rejected as a whole with a message suitable for showing next to the search box.

# Simple and advanced search

Search runs in one of two modes. In simple mode each declared field is its own form parameter and submitted values filter with an implicit =. In advanced mode a single string in the query language drives filtering. The toggle between the modes preserves the advanced string when the user switches away and back, and a request arriving with a non-empty advanced string starts out in advanced mode.

# Usage

Declare a schema and create a collection:

	fields := query.NewFieldSet().
	    AddText("name").
	    AddNumber("age").
	    AddChoice("state", "new", "open", "closed")

	collection, err := sieve.NewCollection(sieve.CollectionOptions{
	    Name:   "people.dat",
	    Fields: fields,
	})

Add records and filter them:

	collection.AddRecord(1, map[string]interface{}{"name": "Ada", "age": 36, "state": "open"})

	q, err := query.Parse(collection.Fields(), `age>=18 state=open`)
	if err != nil {
	    // user-facing parse error
	}
	results, err := collection.Filter(q, sieve.FilterArgs{Limit: 10})

The same functionality is available over HTTP via RunServer, including a websocket endpoint that streams newly written records matching a query.
*/
package sieve
