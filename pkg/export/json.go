// Package export renders a parsed cycle for downstream collaborators. The
// business-record layer consumes this JSON instead of the in-memory types,
// which keeps the parsing core free of persistence concerns.
package export

import (
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/steriliza/cycletape/pkg/model"
)

// Document is the serialized form of one fully parsed tape.
type Document struct {
	File      FileMeta          `json:"file"`
	Header    map[string]string `json:"header"`
	StartDate string            `json:"start_date"`
	Columns   []string          `json:"columns"`
	State     model.CycleState  `json:"state"`
	Rows      []Row             `json:"measurements"`
	Phases    []PhaseEntry      `json:"phases"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// FileMeta carries the file-identity metadata of the tape.
type FileMeta struct {
	Name       string    `json:"name"`
	CreateDate time.Time `json:"create_date"`
	ChangeDate time.Time `json:"change_date"`
}

// Row is one measurement sample.
type Row struct {
	Timestamp time.Time `json:"timestamp"`
	Values    []float64 `json:"values"`
}

// PhaseEntry is one phase marker.
type PhaseEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Label     string    `json:"label"`
}

// NewDocument assembles the export form of a parsed header and body.
func NewDocument(header *model.HeaderRecord, body *model.CycleBody) *Document {
	doc := &Document{
		File: FileMeta{
			Name:       header.FileName,
			CreateDate: header.CreateDate,
			ChangeDate: header.ChangeDate,
		},
		Header:    make(map[string]string, len(header.Fields)),
		StartDate: header.StartDate.Format("2006-01-02"),
		Columns:   body.Columns,
		State:     body.State,
		Rows:      make([]Row, 0, len(body.Measurements)),
		Phases:    make([]PhaseEntry, 0, len(body.Phases)),
		Warnings:  header.Warnings,
	}
	for k, v := range header.Fields {
		doc.Header[string(k)] = v
	}
	for _, m := range body.Measurements {
		doc.Rows = append(doc.Rows, Row{Timestamp: m.Timestamp, Values: m.Values})
	}
	for _, p := range body.Phases {
		doc.Phases = append(doc.Phases, PhaseEntry{Timestamp: p.Timestamp, Label: p.Label})
	}
	return doc
}

// WriteJSON writes the document as indented JSON.
func WriteJSON(w io.Writer, header *model.HeaderRecord, body *model.CycleBody) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(header, body)); err != nil {
		return fmt.Errorf("encoding cycle document: %w", err)
	}
	return nil
}
