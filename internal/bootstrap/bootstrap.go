// Package bootstrap picks the backends named by the environment and wires them into a
// rag.Service. Both binaries (the API server and the admin CLI) start from here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/customHttpClient"
	"github.com/akolanti/CommunityRAG/internal/data/postgresStore"
	"github.com/akolanti/CommunityRAG/internal/data/store"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/akolanti/CommunityRAG/internal/rag"
	"github.com/akolanti/CommunityRAG/internal/rag/conversation"
	"github.com/akolanti/CommunityRAG/internal/rag/embedding"
	"github.com/akolanti/CommunityRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/CommunityRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/CommunityRAG/internal/rag/ingest"
	"github.com/akolanti/CommunityRAG/internal/rag/llm"
	"github.com/akolanti/CommunityRAG/internal/rag/llm/gemini"
	"github.com/akolanti/CommunityRAG/internal/rag/llm/openaiLLM"
	"github.com/akolanti/CommunityRAG/internal/rag/retrieval"
	"github.com/akolanti/CommunityRAG/internal/rag/synthesis"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB/pgvectorDB"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	StoreQdrant   = "qdrant"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// Settings name the backends. FromEnv fills it from LLM_PROVIDER, EMBEDDING_PROVIDER,
// VECTOR_STORE and REGISTRY_STORE.
type Settings struct {
	LLMProvider       string
	EmbeddingProvider string
	VectorStore       string
	RegistryStore     string
	KnowledgeFile     string
	Dimension         int
	RelevanceCutoff   float64
	PostgresDSN       string
	GoogleAPIKey      string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
}

func FromEnv() Settings {
	return Settings{
		LLMProvider:       strings.ToLower(config.Env("LLM_PROVIDER", ProviderGemini)),
		EmbeddingProvider: strings.ToLower(config.Env("EMBEDDING_PROVIDER", ProviderGemini)),
		VectorStore:       strings.ToLower(config.Env("VECTOR_STORE", StoreQdrant)),
		RegistryStore:     strings.ToLower(config.Env("REGISTRY_STORE", StoreRedis)),
		KnowledgeFile:     config.Env("KNOWLEDGE_FILE", ""),
		Dimension:         config.EnvInt("EMBEDDING_DIMENSION", int(config.EmbeddingOutputDimensionality)),
		RelevanceCutoff:   config.EnvFloat("RELEVANCE_CUTOFF", 0),
		PostgresDSN:       config.Env("POSTGRES_DSN", config.PostgresDSN),
		GoogleAPIKey:      config.Env("GOOGLE_API_KEY", config.Env("GEMINI_API_KEY", "")),
		OpenAIAPIKey:      config.Env("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     config.Env("OPENAI_BASE_URL", ""),
	}
}

// App is everything a binary needs after startup.
type App struct {
	Rag      rag.Service
	Jobs     jobModel.JobStore
	Messages jobModel.MessageStore
	Rules    config.Knowledge
}

type clients struct {
	genai  *genai.Client
	openai *openai.Client
}

// Build connects every backend. Redis backed stores fall back to in-process ones when redis
// is unreachable, every other backend failure is returned.
func Build(ctx context.Context, s Settings) (*App, error) {
	logger := logger_i.NewLogger("bootstrap")

	rules, err := config.LoadKnowledge(s.KnowledgeFile)
	if err != nil {
		return nil, err
	}

	var c clients
	vectors, pool, err := openVectorStore(ctx, s)
	if err != nil {
		return nil, err
	}
	communities, err := openRegistry(ctx, s, pool, logger)
	if err != nil {
		return nil, err
	}
	queryEmbedder, err := c.embedder(ctx, s, googleEmbedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	documentEmbedder, err := c.embedder(ctx, s, googleEmbedding.TaskRetrievalDocument)
	if err != nil {
		return nil, err
	}
	provider, err := c.llm(ctx, s)
	if err != nil {
		return nil, err
	}

	var transcriber ingest.Transcriber
	if c.genai != nil {
		transcriber = gemini.NewProvider(c.genai, config.Env("OCR_MODEL", config.GeminiModelName))
	} else {
		logger.Warn("no google api key, PDFs without a text layer cannot be transcribed")
	}

	app := &App{Rules: rules}
	app.Jobs, app.Messages = openRedisStores(ctx, logger)

	pipeline := ingest.NewPipeline(ingest.Deps{
		Store:       vectors,
		Embedder:    documentEmbedder,
		Registry:    communities,
		Transcriber: transcriber,
	})
	app.Rag = rag.NewService(rag.Deps{
		Vectors:     vectors,
		Communities: communities,
		Messages:    app.Messages,
		Embedder:    queryEmbedder,
		Pipeline:    pipeline,
		Retriever:   retrieval.NewEngine(vectors, communities),
		Analyzer:    conversation.NewAnalyzer(rules),
		Synthesizer: synthesis.NewSynthesizer(provider, rules, synthesis.WithRelevanceCutoff(s.RelevanceCutoff)),
		Rules:       rules,
	})

	logger.Info("services wired", "llm", s.LLMProvider, "embeddings", s.EmbeddingProvider,
		"vectors", s.VectorStore, "registry", s.RegistryStore, "dimension", s.Dimension)
	return app, nil
}

func openVectorStore(ctx context.Context, s Settings) (vectorDB.DataProcessor, *pgxpool.Pool, error) {
	switch s.VectorStore {
	case StoreQdrant:
		holder, err := qdrantDB.GetQuadrantClient(ctx, s.Dimension)
		if err != nil {
			return nil, nil, fmt.Errorf("qdrant: %w", err)
		}
		return holder, nil, nil
	case StorePostgres:
		pool, err := postgresStore.Connect(ctx, s.PostgresDSN, s.Dimension)
		if err != nil {
			return nil, nil, err
		}
		return pgvectorDB.New(pool, s.Dimension), pool, nil
	case StoreMemory:
		return memoryDB.New(s.Dimension), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown VECTOR_STORE %q", s.VectorStore)
	}
}

func openRegistry(ctx context.Context, s Settings, pool *pgxpool.Pool, logger *logger_i.Logger) (communityModel.CommunityStore, error) {
	switch s.RegistryStore {
	case StorePostgres:
		if pool == nil {
			var err error
			if pool, err = postgresStore.Connect(ctx, s.PostgresDSN, s.Dimension); err != nil {
				return nil, err
			}
		}
		return postgresStore.NewCommunityStore(pool), nil
	case StoreRedis:
		if redisStore := store.GetRedisCommunityStore(ctx); redisStore != nil {
			return redisStore, nil
		}
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			return nil, errors.New("redis community store is offline")
		}
		logger.Error("Redis community store is offline, communities will not survive a restart")
		return store.InitInMemoryCommunityStore(), nil
	case StoreMemory:
		return store.InitInMemoryCommunityStore(), nil
	default:
		return nil, fmt.Errorf("unknown REGISTRY_STORE %q", s.RegistryStore)
	}
}

func openRedisStores(ctx context.Context, logger *logger_i.Logger) (jobModel.JobStore, jobModel.MessageStore) {
	var (
		jobs     jobModel.JobStore
		messages jobModel.MessageStore
	)
	if s := store.GetRedisJobStore(ctx); s != nil {
		jobs = s
	}
	if s := store.GetRedisMessageStore(ctx); s != nil {
		messages = s
	}
	if jobs == nil || messages == nil {
		logger.Error("Redis stores are offline, using in-memory job and transcript stores")
		jobs = store.InitInMemoryJobStore()
		messages = store.InitMessageStore()
	}
	return jobs, messages
}

func (c *clients) genaiClient(ctx context.Context, s Settings) (*genai.Client, error) {
	if c.genai == nil {
		client, err := googleEmbedding.NewGenAIClient(ctx, s.GoogleAPIKey, customHttpClient.GetClient())
		if err != nil {
			return nil, err
		}
		c.genai = client
	}
	return c.genai, nil
}

func (c *clients) openaiClient(s Settings) (openai.Client, error) {
	if c.openai == nil {
		client, err := openaiEmbedding.NewOpenAIClient(s.OpenAIAPIKey, s.OpenAIBaseURL, customHttpClient.GetClient())
		if err != nil {
			return openai.Client{}, err
		}
		c.openai = &client
	}
	return *c.openai, nil
}

func (c *clients) embedder(ctx context.Context, s Settings, task string) (embedding.Embedder, error) {
	switch s.EmbeddingProvider {
	case ProviderGemini:
		client, err := c.genaiClient(ctx, s)
		if err != nil {
			return nil, err
		}
		return googleEmbedding.NewEmbedder(client, config.Env("EMBEDDING_MODEL", config.GoogleEmbeddingModel), int32(s.Dimension), task), nil
	case ProviderOpenAI:
		client, err := c.openaiClient(s)
		if err != nil {
			return nil, err
		}
		return openaiEmbedding.NewEmbedder(client, config.Env("EMBEDDING_MODEL", config.OpenAIEmbeddingModel), s.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown EMBEDDING_PROVIDER %q", s.EmbeddingProvider)
	}
}

func (c *clients) llm(ctx context.Context, s Settings) (llm.Provider, error) {
	switch s.LLMProvider {
	case ProviderGemini:
		client, err := c.genaiClient(ctx, s)
		if err != nil {
			return nil, err
		}
		return gemini.NewProvider(client, config.Env("LLM_MODEL", config.GeminiModelName)), nil
	case ProviderOpenAI:
		client, err := c.openaiClient(s)
		if err != nil {
			return nil, err
		}
		if s.GoogleAPIKey != "" {
			// the gemini transcriber still needs its client
			if _, err := c.genaiClient(ctx, s); err != nil {
				return nil, err
			}
		}
		return openaiLLM.NewProvider(client, config.Env("LLM_MODEL", config.OpenAIModelName)), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", s.LLMProvider)
	}
}
