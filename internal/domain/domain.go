package domain

import "time"

// Document is one processed upload together with its generated summary.
type Document struct {
	ID         int64
	Filename   string
	Filepath   string
	CharCount  int64
	ChunkCount int64
	Summary    string
	CreatedAt  time.Time
}
