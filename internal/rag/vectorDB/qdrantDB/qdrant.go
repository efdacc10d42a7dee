package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/metrics"
	"github.com/akolanti/CommunityRAG/internal/rag/embedding"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const (
	fieldCommunityID = "community_id"
	fieldFilename    = "filename"
	fieldContent     = "content"
	fieldChunkOrder  = "chunk_order"
	fieldCreatedAt   = "created_at"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var initErr error

type ClientHolder struct {
	QObj       *qdrant.Client
	collection string
	dimension  int
}

var _ vectorDB.DataProcessor = (*ClientHolder)(nil)

// GetQuadrantClient connects once, creates the collection and its payload indexes when
// missing, and refuses to start when an existing collection has a different vector size.
func GetQuadrantClient(ctx context.Context, dimension int) (*ClientHolder, error) {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res, err := newClient(ctx, dimension)
		if err != nil {
			initErr = err
			return
		}
		quadrantInstance = res
		go closeQdrant(ctx, quadrantInstance)
	})

	if initErr != nil {
		return nil, initErr
	}
	return &ClientHolder{
		QObj:       quadrantInstance,
		collection: config.Env("QDRANT_COLLECTION", config.EmbeddingDBName),
		dimension:  dimension,
	}, nil
}

func newClient(ctx context.Context, dimension int) (*qdrant.Client, error) {
	host := config.Env("QDRANT_HOST", config.QdrantHost)
	port := config.EnvInt("QDRANT_PORT", config.QdrantGrpcPort)

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		APIKey:   config.Env("QDRANT_API_KEY", ""),
		UseTLS:   config.EnvBool("QDRANT_TLS", config.QdrantUseTLS),
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil, err
	}

	collection := config.Env("QDRANT_COLLECTION", config.EmbeddingDBName)
	setupCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()

	if err = createCollection(setupCtx, client, collection, dimension); err != nil {
		logger.Error("could not prepare collection: ", "collectionName", collection, "error:", err)
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Dimension() int {
	return db.dimension
}

func (db *ClientHolder) InsertChunk(ctx context.Context, chunk commonModels.DocChunk, vector []float32) error {
	if err := embedding.CheckDimension(vector, db.dimension); err != nil {
		return err
	}
	id := chunk.ChunkId
	if id == "" {
		id = uuid.NewString()
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				fieldCommunityID: chunk.Doc.CommunityID,
				fieldFilename:    chunk.Doc.Filename,
				fieldContent:     chunk.Content,
				fieldChunkOrder:  chunk.ChunkOrder,
				fieldCreatedAt:   chunk.CreatedAt.Unix(),
			}),
		}},
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) DeleteDocument(ctx context.Context, filter commonModels.DocumentFilter) error {
	conditions := []*qdrant.Condition{qdrant.NewMatch(fieldFilename, filter.Filename)}
	if filter.CommunityID != 0 {
		conditions = append(conditions, qdrant.NewMatchInt(fieldCommunityID, filter.CommunityID))
	}
	return db.deleteWhere(ctx, &qdrant.Filter{Must: conditions})
}

func (db *ClientHolder) DeleteCommunity(ctx context.Context, communityID int64) error {
	return db.deleteWhere(ctx, &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatchInt(fieldCommunityID, communityID)},
	})
}

func (db *ClientHolder) deleteWhere(ctx context.Context, filter *qdrant.Filter) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, communityID int64, vector []float32, limit int) ([]commonModels.ChunkMatch, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if err := vectorDB.ValidateSearch(vector, db.dimension, limit); err != nil {
		return nil, err
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchInt(fieldCommunityID, communityID)},
		},
		Limit:       qdrant.PtrOf(uint64(limit)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]commonModels.ChunkMatch, 0, len(result))
	for _, hit := range result {
		matches = append(matches, commonModels.ChunkMatch{
			Content:     hit.Payload[fieldContent].GetStringValue(),
			CommunityID: hit.Payload[fieldCommunityID].GetIntegerValue(),
			Filename:    hit.Payload[fieldFilename].GetStringValue(),
			// cosine score is similarity, the contract speaks distance
			Distance: 1 - float64(hit.Score),
		})
	}

	loggr.Debug("qdrant matches", "community", communityID, "count", len(matches))
	return matches, nil
}

// ListDocuments pages through payloads with scroll and aggregates client side.
func (db *ClientHolder) ListDocuments(ctx context.Context, communityID int64) ([]commonModels.DocumentSummary, error) {
	var filter *qdrant.Filter
	if communityID != 0 {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchInt(fieldCommunityID, communityID)},
		}
	}

	builder := vectorDB.NewSummaryBuilder()
	var offset *qdrant.PointId
	for {
		points, next, err := db.QObj.ScrollAndOffset(ctx, &qdrant.ScrollPoints{
			CollectionName: db.collection,
			Filter:         filter,
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(config.QdrantScrollPageSize)),
			WithPayload:    qdrant.NewWithPayloadInclude(fieldCommunityID, fieldFilename, fieldCreatedAt),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant scroll failed: %w", err)
		}
		for _, p := range points {
			builder.Add(
				p.Payload[fieldCommunityID].GetIntegerValue(),
				p.Payload[fieldFilename].GetStringValue(),
				unixTime(p.Payload[fieldCreatedAt].GetIntegerValue()),
			)
		}
		if next == nil || len(points) == 0 {
			break
		}
		offset = next
	}
	return builder.Build(), nil
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dimension int) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return verifyDimension(ctx, client, collectionName, dimension)
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}
	return createIndexes(ctx, client, collectionName)
}

func createIndexes(ctx context.Context, client *qdrant.Client, collectionName string) error {
	indexes := map[string]qdrant.FieldType{
		fieldCommunityID: qdrant.FieldType_FieldTypeInteger,
		fieldFilename:    qdrant.FieldType_FieldTypeKeyword,
	}
	for field, fieldType := range indexes {
		_, err := client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: collectionName,
			Wait:           qdrant.PtrOf(true),
			FieldName:      field,
			FieldType:      fieldType.Enum(),
		})
		if err != nil {
			return fmt.Errorf("could not index %s: %w", field, err)
		}
	}
	return nil
}

func verifyDimension(ctx context.Context, client *qdrant.Client, collectionName string, dimension int) error {
	info, err := client.GetCollectionInfo(ctx, collectionName)
	if err != nil {
		return err
	}
	size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if size != uint64(dimension) {
		metrics.CountConfigMismatch()
		return fmt.Errorf("%w: collection %s stores %d dimensions, embedder produces %d",
			commonModels.ErrConfigurationMismatch, collectionName, size, dimension)
	}
	return nil
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
