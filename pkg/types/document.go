// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Document holds one retrieved abstract and its metadata.
// Per prd001-retrieval R3.1: PMID, title, abstract text, publication year,
// and first author. Documents are immutable once fetched and live only for
// the duration of one pipeline run.
type Document struct {
	// ID is the literature-database identifier (PubMed PMID).
	ID string `json:"id" yaml:"id"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// AbstractText is the abstract body.
	AbstractText string `json:"abstract_text" yaml:"abstract_text"`

	// Year is the publication year. Zero means unknown.
	Year int `json:"year" yaml:"year"`

	// FirstAuthor is the last name of the first listed author.
	FirstAuthor string `json:"first_author,omitempty" yaml:"first_author,omitempty"`
}
