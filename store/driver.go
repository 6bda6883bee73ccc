package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for database access.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Migrate(ctx context.Context) error

	CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error)
	UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error)
	DeleteConversation(ctx context.Context, delete *DeleteConversation) error

	CreateMessage(ctx context.Context, create *Message) (*Message, error)
	ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error)
	DeleteMessage(ctx context.Context, delete *DeleteMessage) error

	UpsertPendingRequest(ctx context.Context, upsert *PendingRequest) (*PendingRequest, error)
	GetPendingRequest(ctx context.Context, slot string) (*PendingRequest, error)
	DeletePendingRequest(ctx context.Context, slot string) error

	CreateFarm(ctx context.Context, create *Farm) (*Farm, error)
	ListFarms(ctx context.Context, find *FindFarm) ([]*Farm, error)
	UpdateFarm(ctx context.Context, update *UpdateFarm) (*Farm, error)
	DeleteFarm(ctx context.Context, delete *DeleteFarm) error

	CreateTransaction(ctx context.Context, create *Transaction) (*Transaction, error)
	ListTransactions(ctx context.Context, find *FindTransaction) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, delete *DeleteTransaction) error
	SummarizeTransactions(ctx context.Context, find *FindTransaction) (*TransactionSummary, error)

	// Snapshot key-value access. GetKV returns (nil, nil) when the key is absent.
	GetKV(ctx context.Context, key string) ([]byte, error)
	SetKV(ctx context.Context, key string, value []byte) error
	DeleteKV(ctx context.Context, key string) error
}
