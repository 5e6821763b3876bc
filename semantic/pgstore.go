package semantic

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/guestgraph/guestgraph/helper"
	"github.com/guestgraph/guestgraph/model"
	loadSql "github.com/guestgraph/guestgraph/sql"
)

// PGStoreFunctions defines the interface for the PostgreSQL-backed
// chunk store.
type PGStoreFunctions interface {
	InsertChunk(ctx context.Context, content string, metadata model.Metadata, embedding []float32) (int, error)
	SearchBySimilarity(ctx context.Context, embedding []float32, limit int, minScore float64) ([]model.SemanticResult, error)
	CountChunks(ctx context.Context) (int64, error)
	ClearChunks(ctx context.Context) error
}

// PGStore persists review chunks in PostgreSQL with pgvector. It is
// the durable alternative to the file-pair Index for deployments that
// already run a database: inserts are transactional and similarity
// search happens in the store, so nothing can go out of sync.
type PGStore struct {
	db *helper.Database
}

// NewPGStore loads the review chunk SQL functions and creates the
// table for the given embedding dimension. If force is true the SQL
// functions are reloaded even if they already exist.
func NewPGStore(db *helper.Database, embeddingDim int, force bool) (*PGStore, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	store := &PGStore{db: db}

	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("init database extensions", err)
	}

	err = loadSql.LoadReviewChunksSql(db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load review chunks sql", err)
	}

	err = store.createTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized PGStore")

	return store, nil
}

func (s *PGStore) createTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.db.Instance.ExecContext(ctx, `SELECT init_review_chunks($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init review chunks", err)
	}

	s.db.Logger.Info("Checked/created table review_chunks")

	return nil
}

// InsertChunk inserts a new review chunk and returns its assigned id.
func (s *PGStore) InsertChunk(ctx context.Context, content string, metadata model.Metadata, embedding []float32) (int, error) {
	if metadata == nil {
		metadata = model.Metadata{}
	}

	row := s.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_review_chunk($1, $2, $3)`,
		content,
		metadata,
		pq.Array(embedding),
	)

	var id int
	var storedContent string
	var storedMetadata model.Metadata
	var createdAt time.Time
	err := row.Scan(&id, &storedContent, &storedMetadata, &createdAt)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return id, nil
}

// SearchBySimilarity returns up to limit chunks ordered by rising L2
// distance to the query embedding, each converted to a [0,1] score and
// every score at least minScore.
func (s *PGStore) SearchBySimilarity(ctx context.Context, embedding []float32, limit int, minScore float64) ([]model.SemanticResult, error) {
	embeddingVector := pgvector.NewVector(embedding)

	rows, err := s.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_review_chunks_by_similarity($1, $2, $3)`,
		embeddingVector,
		limit,
		minScore,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []model.SemanticResult
	for rows.Next() {
		var id int
		var content string
		var metadata model.Metadata
		var distance float64
		if err := rows.Scan(&id, &content, &metadata, &distance); err != nil {
			return nil, helper.NewError("scan", err)
		}
		results = append(results, model.SemanticResult{
			ID:       strconv.Itoa(id),
			Content:  content,
			Score:    DistanceScore(distance),
			Metadata: metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows", err)
	}

	return results, nil
}

// CountChunks returns the number of stored chunks.
func (s *PGStore) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.Instance.QueryRowContext(ctx, `SELECT count_review_chunks();`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// ClearChunks removes all stored chunks.
func (s *PGStore) ClearChunks(ctx context.Context) error {
	_, err := s.db.Instance.ExecContext(ctx, `SELECT clear_review_chunks();`)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
