// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package solr

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Well-known document fields.
const (
	// IDField is the unique key field of a collection.
	IDField = "id"

	// VersionField is the internal field Solr uses for optimistic
	// concurrency. It is only meaningful within the collection that
	// assigned it.
	VersionField = "_version_"
)

// Field is a single name/value pair of a document.
type Field struct {
	Name  string
	Value interface{}
}

// Document is an ordered set of fields, keeping the field order the engine
// returned them in. Top-level key order survives a JSON round trip; values
// are decoded with encoding/json semantics (numbers as json.Number).
type Document []Field

// Get returns the value of the first field with the given name.
func (d Document) Get(name string) (interface{}, bool) {
	for _, field := range d {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// ID returns the value of the document's unique key field, or nil if the
// document has none.
func (d Document) ID() interface{} {
	id, _ := d.Get(IDField)
	return id
}

// Set replaces the value of the first field with the given name, appending a
// new field if none exists.
func (d *Document) Set(name string, value interface{}) {
	for i, field := range *d {
		if field.Name == name {
			(*d)[i].Value = value
			return
		}
	}
	*d = append(*d, Field{Name: name, Value: value})
}

// Remove deletes every field with the given name. Removing a field that is
// not present is a no-op.
func (d *Document) Remove(name string) {
	kept := (*d)[:0]
	for _, field := range *d {
		if field.Name != name {
			kept = append(kept, field)
		}
	}
	*d = kept
}

// Has returns whether the document contains a field with the given name.
func (d Document) Has(name string) bool {
	_, ok := d.Get(name)
	return ok
}

func (d Document) String() string {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf("Document(%v fields)", len(d))
	}
	return string(raw)
}

// MarshalJSON renders the document as a JSON object with its fields in order.
func (d Document) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBufferString("{")
	for i, field := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving the order of its top-level
// keys. Numbers are kept as json.Number so they re-serialize byte for byte.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("cannot unmarshal non-object JSON value into a document")
	}

	doc := Document{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in document key position", keyTok)
		}

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		doc = append(doc, Field{Name: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = doc
	return nil
}
