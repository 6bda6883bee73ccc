package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cropify/cropify/internal/profile"
	"github.com/cropify/cropify/store"
	"github.com/cropify/cropify/store/db/sqlite"
)

// newTestStore spins up a throwaway sqlite-backed store.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	dir := t.TempDir()
	p := &profile.Profile{
		Mode:    "dev",
		Driver:  "sqlite",
		DSN:     filepath.Join(dir, "cropify_test.db"),
		Data:    dir,
		Version: "0.1.0",
	}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)

	s := store.New(driver, p)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// newTestConversation creates a conversation for controller tests.
func newTestConversation(t *testing.T, s *store.Store) *store.Conversation {
	t.Helper()

	conversation, err := s.CreateConversation(context.Background(), &store.Conversation{
		UID:         "test-conversation",
		Title:       "New Chat",
		TitleSource: store.TitleSourceDefault,
	})
	require.NoError(t, err)
	return conversation
}
