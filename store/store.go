package store

import (
	"context"
	"time"

	"github.com/cropify/cropify/internal/profile"
	"github.com/cropify/cropify/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Caches for read-heavy collaborator data.
	WeatherCache *cache.Cache
	MarketCache  *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	collaboratorCache := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        256,
	}

	return &Store{
		driver:       driver,
		profile:      profile,
		WeatherCache: cache.New(collaboratorCache),
		MarketCache:  cache.New(collaboratorCache),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	s.WeatherCache.Close()
	s.MarketCache.Close()
	return s.driver.Close()
}

func (s *Store) CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error) {
	return s.driver.CreateConversation(ctx, create)
}

func (s *Store) ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error) {
	return s.driver.ListConversations(ctx, find)
}

// GetConversation returns the single conversation matching find, or nil.
func (s *Store) GetConversation(ctx context.Context, find *FindConversation) (*Conversation, error) {
	list, err := s.driver.ListConversations(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error) {
	return s.driver.UpdateConversation(ctx, update)
}

func (s *Store) DeleteConversation(ctx context.Context, delete *DeleteConversation) error {
	return s.driver.DeleteConversation(ctx, delete)
}

func (s *Store) CreateMessage(ctx context.Context, create *Message) (*Message, error) {
	return s.driver.CreateMessage(ctx, create)
}

func (s *Store) ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error) {
	return s.driver.ListMessages(ctx, find)
}

func (s *Store) DeleteMessage(ctx context.Context, delete *DeleteMessage) error {
	return s.driver.DeleteMessage(ctx, delete)
}

func (s *Store) UpsertPendingRequest(ctx context.Context, upsert *PendingRequest) (*PendingRequest, error) {
	return s.driver.UpsertPendingRequest(ctx, upsert)
}

func (s *Store) GetPendingRequest(ctx context.Context, slot string) (*PendingRequest, error) {
	return s.driver.GetPendingRequest(ctx, slot)
}

func (s *Store) DeletePendingRequest(ctx context.Context, slot string) error {
	return s.driver.DeletePendingRequest(ctx, slot)
}

func (s *Store) CreateFarm(ctx context.Context, create *Farm) (*Farm, error) {
	return s.driver.CreateFarm(ctx, create)
}

func (s *Store) ListFarms(ctx context.Context, find *FindFarm) ([]*Farm, error) {
	return s.driver.ListFarms(ctx, find)
}

func (s *Store) UpdateFarm(ctx context.Context, update *UpdateFarm) (*Farm, error) {
	return s.driver.UpdateFarm(ctx, update)
}

func (s *Store) DeleteFarm(ctx context.Context, delete *DeleteFarm) error {
	return s.driver.DeleteFarm(ctx, delete)
}

func (s *Store) CreateTransaction(ctx context.Context, create *Transaction) (*Transaction, error) {
	return s.driver.CreateTransaction(ctx, create)
}

func (s *Store) ListTransactions(ctx context.Context, find *FindTransaction) ([]*Transaction, error) {
	return s.driver.ListTransactions(ctx, find)
}

func (s *Store) DeleteTransaction(ctx context.Context, delete *DeleteTransaction) error {
	return s.driver.DeleteTransaction(ctx, delete)
}

func (s *Store) SummarizeTransactions(ctx context.Context, find *FindTransaction) (*TransactionSummary, error) {
	return s.driver.SummarizeTransactions(ctx, find)
}

// GetKV, SetKV and DeleteKV expose the raw snapshot table; most callers should
// go through store/kv which layers the lenient load/save policy on top.
func (s *Store) GetKV(ctx context.Context, key string) ([]byte, error) {
	return s.driver.GetKV(ctx, key)
}

func (s *Store) SetKV(ctx context.Context, key string, value []byte) error {
	return s.driver.SetKV(ctx, key, value)
}

func (s *Store) DeleteKV(ctx context.Context, key string) error {
	return s.driver.DeleteKV(ctx, key)
}
