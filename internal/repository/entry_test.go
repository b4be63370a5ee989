//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/pagination"
	"github.com/hivemindhq/hivemind/internal/testutil"
)

func TestEntryRepository(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	spaceRepo := NewSpaceRepository(pool)
	repo := NewEntryRepository(pool)

	t.Run("CreateAndGetRoundTrip", func(t *testing.T) {
		space := createTestSpace(ctx, t, spaceRepo)

		entry := &domain.Entry{
			ID:          uuid.NewString(),
			SpaceID:     space.ID,
			Content:     "Channels synchronize goroutines.",
			SourceType:  domain.SourceTypeChat,
			Contributor: "bob",
			Metadata: domain.EntryMetadata{
				ConversationID: "conv-42",
				Tags:           []string{"concurrency", "golang"},
			},
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}

		require.NoError(t, repo.Create(ctx, entry))

		got, err := repo.GetByID(ctx, space.ID, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, entry.Content, got.Content)
		assert.Equal(t, domain.SourceTypeChat, got.SourceType)
		assert.Equal(t, "conv-42", got.Metadata.ConversationID)
		assert.Equal(t, []string{"concurrency", "golang"}, got.Metadata.Tags)
	})

	t.Run("GetByIDScopedToSpace", func(t *testing.T) {
		spaceA := createTestSpace(ctx, t, spaceRepo)
		spaceB := createTestSpace(ctx, t, spaceRepo)
		entry := createTestEntry(ctx, t, repo, spaceA.ID)

		_, err := repo.GetByID(ctx, spaceB.ID, entry.ID)
		assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	})

	t.Run("GetByIDs", func(t *testing.T) {
		space := createTestSpace(ctx, t, spaceRepo)
		first := createTestEntry(ctx, t, repo, space.ID)
		second := createTestEntry(ctx, t, repo, space.ID)

		entries, err := repo.GetByIDs(ctx, space.ID, []string{first.ID, second.ID, uuid.NewString()})
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		empty, err := repo.GetByIDs(ctx, space.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("ListBySpaceWithCursor", func(t *testing.T) {
		space := createTestSpace(ctx, t, spaceRepo)

		base := time.Now().UTC().Truncate(time.Microsecond)
		for i := 0; i < 5; i++ {
			entry := &domain.Entry{
				ID:         uuid.NewString(),
				SpaceID:    space.ID,
				Content:    "entry content",
				SourceType: domain.SourceTypeManual,
				CreatedAt:  base.Add(time.Duration(i) * time.Second),
			}
			require.NoError(t, repo.Create(ctx, entry))
		}

		page1, err := repo.ListBySpaceWithCursor(ctx, space.ID, nil, 3)
		require.NoError(t, err)
		assert.Len(t, page1.Items, 3)
		assert.True(t, page1.HasMore)

		cursor, err := pagination.DecodeCursor(page1.NextCursor)
		require.NoError(t, err)

		page2, err := repo.ListBySpaceWithCursor(ctx, space.ID, cursor, 3)
		require.NoError(t, err)
		assert.Len(t, page2.Items, 2)
		assert.False(t, page2.HasMore)

		// Newest first, no overlap between pages.
		seen := map[string]bool{}
		for _, e := range append(page1.Items, page2.Items...) {
			assert.False(t, seen[e.ID])
			seen[e.ID] = true
		}
	})
}
