package domain

import "time"

// StreamModel is the GORM model for the streams table.
type StreamModel struct {
	ID        string `gorm:"type:varchar(64);primaryKey"`
	CreatorID string `gorm:"type:varchar(64);index;not null"`
	Title     string `gorm:"type:varchar(200)"`
	IsLive    bool   `gorm:"index;not null;default:false"`
	StartedAt *time.Time
	EndedAt   *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for StreamModel.
func (StreamModel) TableName() string {
	return "streams"
}

// ToDomain converts StreamModel to domain Stream.
func (m *StreamModel) ToDomain() *Stream {
	return &Stream{
		ID:        m.ID,
		CreatorID: m.CreatorID,
		Title:     m.Title,
		IsLive:    m.IsLive,
		StartedAt: m.StartedAt,
		EndedAt:   m.EndedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// StreamToModel converts domain Stream to StreamModel.
func StreamToModel(s *Stream) *StreamModel {
	return &StreamModel{
		ID:        s.ID,
		CreatorID: s.CreatorID,
		Title:     s.Title,
		IsLive:    s.IsLive,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Username  string    `gorm:"type:varchar(50);not null"`
	Role      string    `gorm:"type:varchar(20);not null;default:'viewer'"`
	Wallet    int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:        m.ID,
		Username:  m.Username,
		Role:      Role(m.Role),
		Wallet:    m.Wallet,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		Wallet:    u.Wallet,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// TransactionModel is the GORM model for the transactions table.
type TransactionModel struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	SenderID    string    `gorm:"type:varchar(64);index;not null"`
	RecipientID string    `gorm:"type:varchar(64);index;not null"`
	StreamID    string    `gorm:"type:varchar(64);index"`
	Amount      int64     `gorm:"not null"`
	Kind        string    `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for TransactionModel.
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts TransactionModel to domain Transaction.
func (m *TransactionModel) ToDomain() *Transaction {
	return &Transaction{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		StreamID:    m.StreamID,
		Amount:      m.Amount,
		Kind:        TransactionKind(m.Kind),
		CreatedAt:   m.CreatedAt,
	}
}

// TransactionToModel converts domain Transaction to TransactionModel.
func TransactionToModel(t *Transaction) *TransactionModel {
	return &TransactionModel{
		ID:          t.ID,
		SenderID:    t.SenderID,
		RecipientID: t.RecipientID,
		StreamID:    t.StreamID,
		Amount:      t.Amount,
		Kind:        string(t.Kind),
		CreatedAt:   t.CreatedAt,
	}
}

// Models lists every table for auto-migration.
func Models() []interface{} {
	return []interface{}{&StreamModel{}, &UserModel{}, &TransactionModel{}}
}
