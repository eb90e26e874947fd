package domain

import "time"

type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "applied"
	StatusScreening   ApplicationStatus = "screening"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusRejected    ApplicationStatus = "rejected"
	StatusHired       ApplicationStatus = "hired"
)

// ActiveStatuses is the "active consideration" set read by the matching pipeline.
func ActiveStatuses() []ApplicationStatus {
	return []ApplicationStatus{StatusApplied, StatusScreening, StatusShortlisted, StatusSubmitted}
}

const RoleCandidate = "candidate"

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	RoleID string `json:"role_id"`
	Status string `json:"status"`
}

type JobPost struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Location     string    `json:"location,omitempty"`
	Level        string    `json:"level,omitempty"`
	PostedByID   string    `json:"posted_by_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// CombinedText is the query/index text for a job post.
func (j JobPost) CombinedText() string {
	return j.Title + "\n" + j.Description + "\n" + j.Requirements
}

type Resume struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Filename   string    `json:"filename"`
	FileURL    string    `json:"file_url"`
	FileSize   int64     `json:"file_size,omitempty"`
	ParsedData string    `json:"parsed_data,omitempty"` // regenerable structured-parse cache
	UploadedAt time.Time `json:"uploaded_at"`
}

type Application struct {
	ID        string            `json:"id"`
	JobID     string            `json:"job_id"`
	ResumeID  string            `json:"resume_id"`
	Status    ApplicationStatus `json:"status"`
	AppliedAt time.Time         `json:"applied_at"`
}

// MatchCandidate is one (resume, application, candidate-user) triple under
// active consideration for a job post.
type MatchCandidate struct {
	Resume      Resume
	Application Application
	Candidate   User
}

// VectorRecord is one entry of a logical vector collection.
type VectorRecord struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// VectorHit is a nearest-neighbor result. Distance is inverted similarity:
// lower means more similar.
type VectorHit struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"meta_data"`
	Distance float64        `json:"distance"`
}
