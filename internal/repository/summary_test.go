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

func createTestSpace(ctx context.Context, t *testing.T, repo *SpaceRepository) *domain.Space {
	t.Helper()
	space := &domain.Space{
		ID:        uuid.NewString(),
		Name:      "space-" + uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, space))
	return space
}

func createTestEntry(ctx context.Context, t *testing.T, repo *EntryRepository, spaceID string) *domain.Entry {
	t.Helper()
	entry := &domain.Entry{
		ID:         uuid.NewString(),
		SpaceID:    spaceID,
		Content:    "Goroutines are lightweight threads.",
		SourceType: domain.SourceTypeManual,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, entry))
	return entry
}

func TestSummaryRepository(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	spaceRepo := NewSpaceRepository(pool)
	entryRepo := NewEntryRepository(pool)
	repo := NewSummaryRepository(pool)

	t.Run("CreateAndGetRoundTrip", func(t *testing.T) {
		space := createTestSpace(ctx, t, spaceRepo)
		entry := createTestEntry(ctx, t, entryRepo, space.ID)

		summary := domain.NewSummary(space.ID, "programming", "golang",
			"Goroutines are lightweight threads.", entry.ID,
			[]string{"goroutines", "scheduling"}, time.Now().UTC().Truncate(time.Microsecond))

		require.NoError(t, repo.Create(ctx, summary))

		got, err := repo.GetByID(ctx, space.ID, "programming__golang")
		require.NoError(t, err)
		assert.Equal(t, summary.Content, got.Content)
		assert.Equal(t, int64(1), got.Version)
		assert.Equal(t, []string{entry.ID}, got.TopicSources["goroutines"])
		assert.Equal(t, []string{entry.ID}, got.TopicSources["scheduling"])
		assert.Equal(t, []string{entry.ID}, got.ContributingEntries)
		assert.Equal(t, 1, got.EntryCount)
	})

	t.Run("DuplicateCreateReturnsAlreadyExists", func(t *testing.T) {
		space := createTestSpace(ctx, t, spaceRepo)
		entry := createTestEntry(ctx, t, entryRepo, space.ID)

		summary := domain.NewSummary(space.ID, "cooking", "baking", "Bread basics.", entry.ID, []string{"bread"}, time.Now().UTC())
		require.NoError(t, repo.Create(ctx, summary))

		again := domain.NewSummary(space.ID, "cooking", "baking", "Other content.", entry.ID, []string{"bread"}, time.Now().UTC())
		err := repo.Create(ctx, again)
		assert.ErrorIs(t, err, domain.ErrSummaryAlreadyExists)
	})

	t.Run("SameIDInDifferentSpaces", func(t *testing.T) {
		spaceA := createTestSpace(ctx, t, spaceRepo)
		spaceB := createTestSpace(ctx, t, spaceRepo)
		entryA := createTestEntry(ctx, t, entryRepo, spaceA.ID)
		entryB := createTestEntry(ctx, t, entryRepo, spaceB.ID)

		require.NoError(t, repo.Create(ctx, domain.NewSummary(spaceA.ID, "music", "jazz", "A side.", entryA.ID, []string{"swing"}, time.Now().UTC())))
		require.NoError(t, repo.Create(ctx, domain.NewSummary(spaceB.ID, "music", "jazz", "B side.", entryB.ID, []string{"swing"}, time.Now().UTC())))

		gotA, err := repo.GetByID(ctx, spaceA.ID, "music__jazz")
		require.NoError(t, err)
		assert.Equal(t, "A side.", gotA.Content)
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		space := createTestSpace(ctx, t, spaceRepo)
		_, err := repo.GetByID(ctx, space.ID, "no__such")
		assert.ErrorIs(t, err, domain.ErrSummaryNotFound)
	})

	t.Run("UpdateVersionedSucceedsOnMatch", func(t *testing.T) {
		space := createTestSpace(ctx, t, spaceRepo)
		entry := createTestEntry(ctx, t, entryRepo, space.ID)

		summary := domain.NewSummary(space.ID, "gardening", "roses", "Prune in spring.", entry.ID, []string{"pruning"}, time.Now().UTC().Truncate(time.Microsecond))
		require.NoError(t, repo.Create(ctx, summary))

		summary.Content = "Prune in spring, feed in summer."
		summary.AddTopicSource("feeding", entry.ID)
		summary.Version = 2
		summary.LastUpdated = time.Now().UTC().Truncate(time.Microsecond)

		require.NoError(t, repo.UpdateVersioned(ctx, summary, 1))

		got, err := repo.GetByID(ctx, space.ID, summary.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
		assert.Contains(t, got.Content, "feed in summer")
		assert.Equal(t, []string{entry.ID}, got.TopicSources["feeding"])
	})

	t.Run("UpdateVersionedConflictOnStaleVersion", func(t *testing.T) {
		space := createTestSpace(ctx, t, spaceRepo)
		entry := createTestEntry(ctx, t, entryRepo, space.ID)

		summary := domain.NewSummary(space.ID, "medicine", "cardiology", "Content v1.", entry.ID, []string{"hearts"}, time.Now().UTC())
		require.NoError(t, repo.Create(ctx, summary))

		summary.Version = 2
		require.NoError(t, repo.UpdateVersioned(ctx, summary, 1))

		// A writer still holding version 1 must not clobber version 2.
		stale := *summary
		stale.Content = "Stale overwrite."
		stale.Version = 2
		err := repo.UpdateVersioned(ctx, &stale, 1)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)

		got, err := repo.GetByID(ctx, space.ID, summary.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "Stale overwrite.", got.Content)
	})

	t.Run("ListBySpaceAndDomains", func(t *testing.T) {
		space := createTestSpace(ctx, t, spaceRepo)
		entry := createTestEntry(ctx, t, entryRepo, space.ID)

		require.NoError(t, repo.Create(ctx, domain.NewSummary(space.ID, "art", "painting", "x", entry.ID, []string{"oil"}, time.Now().UTC())))
		require.NoError(t, repo.Create(ctx, domain.NewSummary(space.ID, "art", "sculpture", "y", entry.ID, []string{"clay"}, time.Now().UTC())))
		require.NoError(t, repo.Create(ctx, domain.NewSummary(space.ID, "science", "physics", "z", entry.ID, []string{"mass"}, time.Now().UTC())))

		summaries, err := repo.ListBySpace(ctx, space.ID)
		require.NoError(t, err)
		assert.Len(t, summaries, 3)

		domains, err := repo.ListDomains(ctx, space.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"art", "science"}, domains)
	})

	t.Run("ListBySpaceWithCursor", func(t *testing.T) {
		space := createTestSpace(ctx, t, spaceRepo)
		entry := createTestEntry(ctx, t, entryRepo, space.ID)

		base := time.Now().UTC().Truncate(time.Microsecond)
		for i := 0; i < 5; i++ {
			s := domain.NewSummary(space.ID, "history", "era"+string(rune('a'+i)), "content", entry.ID, []string{"events"}, base.Add(time.Duration(i)*time.Second))
			require.NoError(t, repo.Create(ctx, s))
		}

		page1, err := repo.ListBySpaceWithCursor(ctx, space.ID, nil, 3)
		require.NoError(t, err)
		assert.Len(t, page1.Items, 3)
		assert.True(t, page1.HasMore)
		require.NotEmpty(t, page1.NextCursor)

		cursor, err := pagination.DecodeCursor(page1.NextCursor)
		require.NoError(t, err)

		page2, err := repo.ListBySpaceWithCursor(ctx, space.ID, cursor, 3)
		require.NoError(t, err)
		assert.Len(t, page2.Items, 2)
		assert.False(t, page2.HasMore)
	})
}
