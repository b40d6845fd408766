package domain

import "time"

// Role is the platform role of a user.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

// Stream is the durable stream record. IsLive is the live flag that
// new viewers are admitted against.
type Stream struct {
	ID        string     `json:"id"`
	CreatorID string     `json:"creator_id"`
	Title     string     `json:"title"`
	IsLive    bool       `json:"is_live"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// User is a platform account with a token wallet.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Wallet    int64     `json:"wallet"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransactionKind classifies wallet movements.
type TransactionKind string

const TransactionKindTip TransactionKind = "tip"

// Transaction records one completed wallet transfer.
type Transaction struct {
	ID          string          `json:"id"`
	SenderID    string          `json:"sender_id"`
	RecipientID string          `json:"recipient_id"`
	StreamID    string          `json:"stream_id"`
	Amount      int64           `json:"amount"`
	Kind        TransactionKind `json:"kind"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Tip is a request to move Amount tokens from Sender to the stream creator.
type Tip struct {
	StreamID    string
	SenderID    string
	RecipientID string
	Amount      int64
}
