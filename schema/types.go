package schema

import "time"

// Document is a single passage stored in the knowledge base.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Vector    []float32      `json:"vector,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// SearchOptions controls a single vector search call.
type SearchOptions struct {
	TopK      int     `json:"top_k"`
	Threshold float64 `json:"threshold,omitempty"`
}

// ServiceRequestEnvelope is the wire format posted to downstream
// assistant services. Document carries an optional base64 payload.
type ServiceRequestEnvelope struct {
	Query    string `json:"query"`
	Document string `json:"document,omitempty"`
}

// ServiceResponseEnvelope is the uniform result shape returned to
// callers for every intent, successful or not.
type ServiceResponseEnvelope struct {
	OK           bool   `json:"ok"`
	Payload      any    `json:"payload,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	StatusCode   int    `json:"status_code,omitempty"`
}
