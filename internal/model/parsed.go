package model

// ParsedDocument is the parser output, ready for ingestion.
type ParsedDocument struct {
	Title           string
	Type            DocumentType
	SourceURL       string
	Citation        string
	Jurisdiction    string
	DateEnacted     int64
	DateCommenced   int64
	DateLastAmended int64
	PublishedAt     int64
	RawText         string
	Sections        []ParsedSection
	ContentHash     string
}

type ParsedSection struct {
	Index   int
	Heading string
	Text    string
}
