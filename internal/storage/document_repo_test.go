package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *DocumentRepo {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDocumentRepo(db)
}

func TestDocumentRepo_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	doc, err := repo.Get(context.Background(), KeyTasks)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestDocumentRepo_PutOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, Document{Key: KeyUser, Version: 0, Data: json.RawMessage(`{"health":5}`)}))
	require.NoError(t, repo.Put(ctx, Document{Key: KeyUser, Version: 1, Data: json.RawMessage(`{"experience":5}`)}))

	doc, err := repo.Get(ctx, KeyUser)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 1, doc.Version)
	assert.JSONEq(t, `{"experience":5}`, string(doc.Data))
	assert.NotNil(t, doc.CreatedAt)
}

func TestDocumentRepo_PutAllIsAtomic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.PutAll(ctx,
		Document{Key: KeyTasks, Version: 3, Data: json.RawMessage(`{"tasks":[]}`)},
		Document{Key: KeyRecords, Version: 1, Data: json.RawMessage(`{not json`)},
	)
	require.Error(t, err)

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	require.NoError(t, repo.PutAll(ctx,
		Document{Key: KeyTasks, Version: 3, Data: json.RawMessage(`{"tasks":[]}`)},
		Document{Key: KeyRecords, Version: 1, Data: json.RawMessage(`{"records":[]}`)},
	))
	docs, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, KeyRecords, docs[0].Key)
	assert.Equal(t, KeyTasks, docs[1].Key)
}

func TestDocumentRepo_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, Document{Key: KeyRewards, Version: 1, Data: json.RawMessage(`{}`)}))
	require.NoError(t, repo.Delete(ctx, KeyRewards))

	doc, err := repo.Get(ctx, KeyRewards)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestResolveDBPath(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/from-env.db")

	p, err := ResolveDBPath("/tmp/explicit.db")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit.db", p)

	p, err = ResolveDBPath("  ")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", p)
}
