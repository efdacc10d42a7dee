package commonModels

import "time"

type DocType string

var PDF DocType = "PDF"
var TXT DocType = "TXT"
var MD DocType = "MARKDOWN"
var ERR DocType = "ERROR"

// Document is identified by filename within one community.
type Document struct {
	CommunityID int64   `json:"community_id"`
	Filename    string  `json:"filename"`
	ContentType DocType `json:"content_type"`
}

type DocChunk struct {
	Doc        Document  `json:"doc"`
	ChunkId    string    `json:"chunk_id"`
	Content    string    `json:"content"`
	ChunkOrder int       `json:"chunk_order"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChunkMatch is one nearest neighbour hit. Lower distance is closer.
type ChunkMatch struct {
	Content     string  `json:"content"`
	CommunityID int64   `json:"community_id"`
	Filename    string  `json:"filename"`
	Partition   string  `json:"partition"`
	IsGlobal    bool    `json:"is_global"`
	Distance    float64 `json:"distance"`
}

type DocumentSummary struct {
	Filename          string    `json:"filename"`
	CommunityID       int64     `json:"community_id"`
	CommunityName     string    `json:"community_name,omitempty"`
	ChunkCount        int       `json:"chunk_count"`
	EarliestCreatedAt time.Time `json:"earliest_created_at"`
}

// DocumentFilter selects chunks of one filename. CommunityID 0 matches every community.
type DocumentFilter struct {
	CommunityID int64
	Filename    string
}

type ChunkError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

type IngestResult struct {
	CommunityID   int64        `json:"community_id"`
	Filename      string       `json:"filename"`
	ChunkCount    int          `json:"chunk_count"`
	InsertedCount int          `json:"inserted_count"`
	Errors        []ChunkError `json:"skipped_chunk_errors"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one transcript entry.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
