package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"edubot/internal/repository"
	"edubot/internal/seed"
	"edubot/pkg/config"
	"edubot/pkg/database"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testStore struct {
	db            *database.DB
	static        *repository.StaticResponseRepository
	facts         *repository.EducationFactRepository
	conversations *repository.ConversationRepository
}

// newSeededStore opens a fresh sqlite knowledge base with the default seed.
func newSeededStore(t *testing.T) *testStore {
	t.Helper()
	ctx := context.Background()
	cfg := &config.DatabaseConfig{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "kb.db")}
	db, err := database.Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := &testStore{
		db:            db,
		static:        repository.NewStaticResponseRepository(db, zap.NewNop()),
		facts:         repository.NewEducationFactRepository(db, zap.NewNop()),
		conversations: repository.NewConversationRepository(db, zap.NewNop()),
	}

	data, err := seed.Default()
	require.NoError(t, err)
	_, err = NewSeedService(s.static, s.facts, zap.NewNop()).Seed(ctx, data)
	require.NoError(t, err)
	return s
}

// fakeCompleter returns a canned reply and counts the prompts it saw.
type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	ok      bool
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.ok
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
