package docmodel

import "time"

type Document struct {
	Id         string    `json:"doc_id"`
	UserId     string    `json:"user_id"`
	Filename   string    `json:"filename"`
	IngestedAt time.Time `json:"ingested_at"`
	ChunkCount int       `json:"chunk_count"`
}

type DocChunk struct {
	Doc        Document
	ChunkId    string `json:"chunk_id"`
	Content    string `json:"content"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
}

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	ERR  DocType = "ERROR"
)

// Match is a retrieved chunk with its payload metadata, most similar first.
type Match struct {
	Content    string  `json:"content"`
	DocID      string  `json:"doc_id"`
	Filename   string  `json:"filename"`
	ChunkID    string  `json:"chunk_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float32 `json:"score"`
}
