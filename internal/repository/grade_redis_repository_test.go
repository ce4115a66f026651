package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

func newMiniredisGradeRepo(t *testing.T) (*GradeRedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewGradeRedisRepository(client), mr
}

func TestGradeSnapshotKey(t *testing.T) {
	assert.Equal(t, "grades_mat-101", GradeSnapshotKey("mat-101"))
}

func TestDecodeRegistry(t *testing.T) {
	registry, err := decodeRegistry(map[string]string{
		"mat-101": `{"s1":{"u1":{"Exam":"70"}}}`,
		"mat-202": ``,
	})
	require.NoError(t, err)
	raw, ok := registry["mat-101"].Get("s1", "u1", "Exam")
	require.True(t, ok)
	assert.Equal(t, "70", raw)
	assert.Empty(t, registry["mat-202"])

	_, err = decodeRegistry(map[string]string{"bad": `{`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject bad")
}

func TestGradeRedisRepositoryPutOverwrites(t *testing.T) {
	repo, mr := newMiniredisGradeRepo(t)
	ctx := context.Background()

	first := models.GradeSnapshot{}
	first.Set("s1", "u1", "Exam", "70")
	first.Set("s2", "u1", "Exam", "90")
	require.NoError(t, repo.Put(ctx, "mat-101", first))

	other := models.GradeSnapshot{}
	other.Set("s9", "u3", "Quiz", "55")
	require.NoError(t, repo.Put(ctx, "fis-202", other))

	second := models.GradeSnapshot{}
	second.Set("s1", "u1", "Exam", "85")
	require.NoError(t, repo.Put(ctx, "mat-101", second))

	stored, err := repo.Get(ctx, "mat-101")
	require.NoError(t, err)
	assert.Equal(t, second, stored)
	_, ok := stored.Get("s2", "u1", "Exam")
	assert.False(t, ok)

	var keyPayload models.GradeSnapshot
	raw, err := mr.Get(GradeSnapshotKey("mat-101"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(raw), &keyPayload))
	assert.Equal(t, second, keyPayload)

	var hashPayload models.GradeSnapshot
	require.NoError(t, json.Unmarshal([]byte(mr.HGet(AllGradesKey, "mat-101")), &hashPayload))
	assert.Equal(t, second, hashPayload)

	registry, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, registry, 2)
	assert.Equal(t, second, registry["mat-101"])
	assert.Equal(t, other, registry["fis-202"])
}

func TestGradeRedisRepositoryEmpty(t *testing.T) {
	repo, _ := newMiniredisGradeRepo(t)
	ctx := context.Background()

	snapshot, err := repo.Get(ctx, "mat-101")
	require.NoError(t, err)
	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)

	registry, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, registry)

	require.NoError(t, repo.Put(ctx, "mat-101", nil))
	registry, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.GradeSnapshot{}, registry["mat-101"])
}

func TestGradeRedisRepositoryUnavailable(t *testing.T) {
	repo, mr := newMiniredisGradeRepo(t)
	mr.Close()

	err := repo.Put(context.Background(), "mat-101", models.GradeSnapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis put grades mat-101")
}
