package contracts

import "time"

// ReportArtifact is a persisted per-brand summary document.
type ReportArtifact struct {
	BrandID     string    `json:"brand_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Path        string    `json:"path"`
	Summary     string    `json:"summary"`
}

// ReportBatchArtifact is the result of generating reports for the current
// top of the feed.
type ReportBatchArtifact struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Count       int              `json:"count"`
	Reports     []ReportArtifact `json:"reports"`
}

// ChatMessage is one turn in a chat exchange.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest asks a question, optionally grounded in one brand's profile.
// Mode is one of analysis, memo, diligence, production_plan.
type ChatRequest struct {
	BrandID  string        `json:"brand_id,omitempty"`
	Messages []ChatMessage `json:"messages"`
	Mode     string        `json:"mode"`
}

// ChatResponse is a grounded answer with the evidence it cites.
type ChatResponse struct {
	Answer     string             `json:"answer"`
	Confidence float64            `json:"confidence"`
	Citations  []EvidenceCitation `json:"citations"`
	Model      string             `json:"model"`
}
