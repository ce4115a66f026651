package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

// AllGradesKey is the hash holding every subject snapshot.
const AllGradesKey = "allGrades"

// GradeSnapshotKey returns the string key of one subject snapshot.
func GradeSnapshotKey(subjectID string) string {
	return "grades_" + subjectID
}

// GradeRedisRepository stores grade snapshots in Redis. Each subject has its
// own key and a field in the allGrades hash; both are written together.
type GradeRedisRepository struct {
	client redis.UniversalClient
}

// NewGradeRedisRepository constructs the repository.
func NewGradeRedisRepository(client redis.UniversalClient) *GradeRedisRepository {
	return &GradeRedisRepository{client: client}
}

// Get returns the saved snapshot of a subject, or an empty one.
func (r *GradeRedisRepository) Get(ctx context.Context, subjectID string) (models.GradeSnapshot, error) {
	raw, err := r.client.Get(ctx, GradeSnapshotKey(subjectID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.GradeSnapshot{}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", GradeSnapshotKey(subjectID), err)
	}
	return decodeSnapshot(raw)
}

// Put replaces the subject key and its registry entry in one transaction.
func (r *GradeRedisRepository) Put(ctx context.Context, subjectID string, snapshot models.GradeSnapshot) error {
	if snapshot == nil {
		snapshot = models.GradeSnapshot{}
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal grade snapshot %s: %w", subjectID, err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, GradeSnapshotKey(subjectID), payload, 0)
		pipe.HSet(ctx, AllGradesKey, subjectID, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put grades %s: %w", subjectID, err)
	}
	return nil
}

// All returns the allGrades registry.
func (r *GradeRedisRepository) All(ctx context.Context) (models.GradeRegistry, error) {
	fields, err := r.client.HGetAll(ctx, AllGradesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", AllGradesKey, err)
	}
	return decodeRegistry(fields)
}

func decodeSnapshot(raw []byte) (models.GradeSnapshot, error) {
	snapshot := models.GradeSnapshot{}
	if len(raw) == 0 {
		return snapshot, nil
	}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal grade snapshot: %w", err)
	}
	return snapshot, nil
}

func decodeRegistry(fields map[string]string) (models.GradeRegistry, error) {
	registry := make(models.GradeRegistry, len(fields))
	for subjectID, raw := range fields {
		snapshot, err := decodeSnapshot([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("subject %s: %w", subjectID, err)
		}
		registry[subjectID] = snapshot
	}
	return registry, nil
}
