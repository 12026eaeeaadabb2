package handlers

import "encoding/json"

type CreateNodeRequest struct {
	Title string   `json:"title" validate:"required,max=300"`
	Type  string   `json:"type"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags" validate:"max=50"`
}

// UpdateNodeRequest is a partial update. An absent body or tags field keeps
// the stored value; an empty tags array clears it.
type UpdateNodeRequest struct {
	Title string   `json:"title" validate:"max=300"`
	Type  string   `json:"type"`
	Body  *string  `json:"body"`
	Tags  []string `json:"tags" validate:"max=50"`
}

type ImportRequest struct {
	Nodes json.RawMessage `json:"nodes"`
}

type SuggestTagsRequest struct {
	Content string `json:"content"`
}

type SuggestTagsResponse struct {
	Tags []string `json:"tags"`
}

type ExecutionRequest struct {
	Code   string   `json:"code"`
	Output []string `json:"output"`
}

type CreateEdgeRequest struct {
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required"`
	Label string `json:"label"`
}

type GenerateFlashcardsRequest struct {
	NodeID   string `json:"nodeId" validate:"required"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	UseAI    bool   `json:"useAI"`
	Content  string `json:"content"`
}

// ProgressRequest carries a review rating. Quality is a pointer so that a
// missing field is told apart from a zero rating.
type ProgressRequest struct {
	Quality *int `json:"quality" validate:"required"`
}

type AutoConnectRequest struct {
	NodeID string `json:"nodeId"`
}
