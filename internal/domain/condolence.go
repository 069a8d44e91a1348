package domain

import "time"

// CondolenceStatus tracks moderation state of a visitor message.
type CondolenceStatus string

const (
	CondolencePending  CondolenceStatus = "pending"
	CondolenceApproved CondolenceStatus = "approved"
	CondolenceRejected CondolenceStatus = "rejected"
)

// Condolence is a visitor-submitted message awaiting moderation.
type Condolence struct {
	ID         string           `json:"id"`
	FuneralID  string           `json:"funeral_id"`
	AuthorName string           `json:"author_name"`
	Message    string           `json:"message"`
	Status     CondolenceStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// CondolenceRepository defines persistence operations for condolences.
type CondolenceRepository interface {
	Create(condolence *Condolence) error
	GetApprovedByFuneralID(funeralID string) ([]*Condolence, error)
	GetPending(token string) ([]*Condolence, error)
	SetStatus(id string, status CondolenceStatus, token string) error
	Delete(id string, token string) error
}
