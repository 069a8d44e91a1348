package domain

import "time"

// Donation is a stub donation record. No payment processing happens here;
// the row only records intent. Totals are maintained by a store-side
// atomic increment, never by app-level read-modify-write.
type Donation struct {
	ID          string    `json:"id"`
	FuneralID   string    `json:"funeral_id"`
	DonorName   string    `json:"donor_name,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DonationRepository defines persistence operations for donations.
type DonationRepository interface {
	Create(donation *Donation) error
	GetByFuneralID(funeralID string, token string) ([]*Donation, error)
	// TotalForFuneral runs the store-side aggregate RPC.
	TotalForFuneral(funeralID string) (int64, error)
}
