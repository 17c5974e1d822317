package milvus

import (
	"context"
	"fmt"
	"sync"

	"Aivatar/backend/go/internal/config"
	"Aivatar/backend/go/internal/models"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

var (
	instance *MilvusClient
	once     sync.Once
	initErr  error
)

// MilvusClient wraps the Milvus SDK client plus the knowledge chunk
// collection configuration.
type MilvusClient struct {
	Client client.Client
	Config *config.MilvusConfig
}

// GetClient initializes and returns the Milvus client. The connection is
// established once per process; later calls return the same instance.
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*MilvusClient, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("unable to connect to Milvus: %w", err)
			return
		}
		instance = &MilvusClient{Client: c, Config: cfg}
	})
	return instance, initErr
}

// Close closes the Milvus connection.
func (c *MilvusClient) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

// HealthCheck verifies the Milvus connection.
func (c *MilvusClient) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("milvus client is nil")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}

// EnsureCollection creates the knowledge chunk collection and its index if
// they do not exist yet. Schema: id (PK), agent_id, chunk, embedding.
func (c *MilvusClient) EnsureCollection(ctx context.Context) error {
	collName := c.Config.Collection

	exists, err := c.Client.HasCollection(ctx, collName)
	if err != nil {
		return fmt.Errorf("unable to check collection '%s': %w", collName, err)
	}
	if exists {
		return nil
	}

	schema := entity.NewSchema().
		WithName(collName).
		WithDescription("agent knowledge base chunks").
		WithField(entity.NewField().WithName("id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true)).
		WithField(entity.NewField().WithName("agent_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(32)).
		WithField(entity.NewField().WithName("chunk").WithDataType(entity.FieldTypeVarChar).WithMaxLength(8192)).
		WithField(entity.NewField().WithName("embedding").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(c.Config.Dim)))

	if err := c.Client.CreateCollection(ctx, schema, 2); err != nil {
		return fmt.Errorf("unable to create collection '%s': %w", collName, err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
	if err != nil {
		return fmt.Errorf("unable to build index config: %w", err)
	}
	if err := c.Client.CreateIndex(ctx, collName, "embedding", idx, false); err != nil {
		return fmt.Errorf("unable to create index on '%s': %w", collName, err)
	}
	return nil
}

// InsertBatch inserts chunk texts with their embeddings for one agent.
func (c *MilvusClient) InsertBatch(ctx context.Context, agentID string, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch between number of chunks (%d) and vectors (%d)", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	agentIDs := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = uuid.New().String()
		agentIDs[i] = agentID
	}

	idCol := entity.NewColumnVarChar("id", ids)
	agentCol := entity.NewColumnVarChar("agent_id", agentIDs)
	chunkCol := entity.NewColumnVarChar("chunk", chunks)
	vectorCol := entity.NewColumnFloatVector("embedding", len(vectors[0]), vectors)

	if _, err := c.Client.Insert(ctx, c.Config.Collection, "", idCol, agentCol, chunkCol, vectorCol); err != nil {
		return fmt.Errorf("unable to insert chunks into Milvus: %w", err)
	}
	return nil
}

// Search runs a similarity search over one agent's chunks and returns the
// chunk texts with their cosine similarity scores, best first.
func (c *MilvusClient) Search(ctx context.Context, agentID string, topK int, vector []float32) ([]models.ScoredChunk, error) {
	collName := c.Config.Collection

	if err := c.Client.LoadCollection(ctx, collName, false); err != nil {
		return nil, fmt.Errorf("unable to load collection '%s': %w", collName, err)
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(10)
	expr := fmt.Sprintf("agent_id == %q", agentID)

	results, err := c.Client.Search(
		ctx,
		collName,
		nil,
		expr,
		[]string{"chunk"},
		[]entity.Vector{entity.FloatVector(vector)},
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	var chunks []models.ScoredChunk
	for _, result := range results {
		var chunkCol *entity.ColumnVarChar
		for _, field := range result.Fields {
			if col, ok := field.(*entity.ColumnVarChar); ok && col.Name() == "chunk" {
				chunkCol = col
			}
		}
		if chunkCol == nil {
			continue
		}
		for i := 0; i < result.ResultCount; i++ {
			text, err := chunkCol.ValueByIdx(i)
			if err != nil {
				continue
			}
			chunks = append(chunks, models.ScoredChunk{Text: text, Score: result.Scores[i]})
		}
	}
	return chunks, nil
}
