package recordsRepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/models"
)

func visit(master, client, date, at string, status models.VisitStatus) models.VisitHistoryRecord {
	return models.VisitHistoryRecord{
		MasterID:   master,
		ClientID:   client,
		ClientName: "Client " + client,
		Date:       date,
		Time:       at,
		Status:     status,
	}
}

func TestMemoryRecordRepo_DuplicatesCollapsedOnRead(t *testing.T) {
	repo := NewMemoryRecordRepo(nil)
	ctx := context.Background()

	rec := visit("1", "A", "2024-06-10", "14:00", models.VisitCompleted)
	require.NoError(t, repo.Append(ctx, rec))
	require.NoError(t, repo.Append(ctx, rec))
	assert.Equal(t, 2, repo.Count())

	byMaster, err := repo.ListByMaster(ctx, "1")
	require.NoError(t, err)
	require.Len(t, byMaster, 1)
	assert.NotEmpty(t, byMaster[0].ID)
	assert.False(t, byMaster[0].RecordedAt.IsZero())

	byClient, err := repo.ListByClient(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, byClient, 1)
}

func TestMemoryRecordRepo_OrderingAndStatusDistinct(t *testing.T) {
	repo := NewMemoryRecordRepo(nil)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, visit("1", "A", "2024-06-12", "10:00", models.VisitCompleted)))
	require.NoError(t, repo.Append(ctx, visit("1", "B", "2024-06-10", "15:00", models.VisitCancelled)))
	require.NoError(t, repo.Append(ctx, visit("1", "A", "2024-06-10", "11:00", models.VisitCompleted)))
	// Same slot, different outcome: not a duplicate.
	require.NoError(t, repo.Append(ctx, visit("1", "B", "2024-06-10", "15:00", models.VisitCompleted)))

	byMaster, err := repo.ListByMaster(ctx, "1")
	require.NoError(t, err)
	require.Len(t, byMaster, 4)
	assert.Equal(t, "11:00", byMaster[0].Time)
	assert.Equal(t, "15:00", byMaster[1].Time)
	assert.Equal(t, "2024-06-12", byMaster[3].Date)

	byClient, err := repo.ListByClient(ctx, "A")
	require.NoError(t, err)
	require.Len(t, byClient, 2)
	assert.Equal(t, "2024-06-10", byClient[0].Date)
}

func TestMemoryRecordRepo_Exists(t *testing.T) {
	repo := NewMemoryRecordRepo(nil)
	ctx := context.Background()

	rec := visit("2", "A", "2024-05-01", "10:00", models.VisitCompleted)
	ok, err := repo.Exists(ctx, rec)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Append(ctx, rec))
	ok, err = repo.Exists(ctx, rec)
	require.NoError(t, err)
	assert.True(t, ok)

	rec.Status = models.VisitCancelled
	ok, err = repo.Exists(ctx, rec)
	require.NoError(t, err)
	assert.False(t, ok)
}
