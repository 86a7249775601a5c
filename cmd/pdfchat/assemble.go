package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"pdfchat/internal/bedrockclient"
	"pdfchat/internal/chunker"
	"pdfchat/internal/config"
	"pdfchat/internal/conversation"
	"pdfchat/internal/domain"
	"pdfchat/internal/embedding"
	embedbedrock "pdfchat/internal/embedding/bedrock"
	embedopenai "pdfchat/internal/embedding/openai"
	"pdfchat/internal/embedding/tfidf"
	"pdfchat/internal/engine"
	"pdfchat/internal/extractor"
	"pdfchat/internal/index"
	"pdfchat/internal/llm"
	llmbedrock "pdfchat/internal/llm/bedrock"
	llmopenai "pdfchat/internal/llm/openai"
	"pdfchat/internal/logging"
	"pdfchat/internal/service"
	"pdfchat/internal/session"
	"pdfchat/internal/summarizer"
	"pdfchat/internal/vectorstore"
	"pdfchat/internal/vectorstore/memory"
	"pdfchat/internal/vectorstore/pgvector"
	"pdfchat/internal/vectorstore/pinecone"
	"pdfchat/internal/vectorstore/qdrant"
)

// app owns everything that needs closing on exit.
type app struct {
	session *session.Session
	logger  *slog.Logger
	closers []io.Closer
}

func (a *app) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// assemble wires the session from cfg. headless mirrors logs to stderr
// when --verbose is set.
func assemble(ctx context.Context, cfg *config.AppConfig, headless bool) (*app, error) {
	dir := cfg.Log.Dir
	if dir == "" {
		dir = config.DefaultLogDir()
	}
	var tee io.Writer
	if headless && verbose {
		tee = os.Stderr
	}
	logger, logCloser, err := logging.New(dir, cfg.Log.Level, tee)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	a := &app{logger: logger, closers: []io.Closer{logCloser}}

	clients := &bedrockClients{}

	emb, err := newEmbedder(ctx, cfg, clients)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("embedder: %w", err)
	}
	store, err := newStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("vector store: %w", err)
	}
	a.closers = append(a.closers, store)

	ch, err := chunker.NewCharacterChunker(
		chunker.WithSeparator(cfg.Chunker.Separator),
		chunker.WithChunkSize(cfg.Chunker.ChunkSize),
		chunker.WithOverlap(cfg.Chunker.Overlap()),
		chunker.WithLogger(logger),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("chunker: %w", err)
	}

	var sum domain.Summarizer
	if cfg.Summarizer.Type == "frequency" {
		sum = summarizer.NewFrequencySummarizer()
	}

	ix := index.NewIndexer(emb, store, cfg.VectorStore.Collection, index.NamespaceMode(cfg.VectorStore.Namespace), logger)
	pipeline := service.NewPipeline(extractor.New(logger), ch, ix, sum, cfg.Summarizer.MaxSentences, logger)

	newEngine := func(ctx context.Context, h *index.Handle) (*engine.Engine, error) {
		gen, err := newGenerator(ctx, cfg, clients)
		if err != nil {
			return nil, err
		}
		return engine.New(h, conversation.NewBuffer(), gen, engine.WithTopK(cfg.Retriever.TopK)), nil
	}
	a.session = session.New(pipeline, newEngine, cfg.Upload.MaxFiles, logger)

	logger.Info("pdfchat started",
		slog.String("embedder", cfg.Embedder.Type),
		slog.String("vector_store", cfg.VectorStore.Type),
		slog.String("collection", cfg.VectorStore.Collection),
		slog.String("llm", cfg.LLM.Type),
		slog.String("model", cfg.LLM.ModelID))
	return a, nil
}

// bedrockClients shares one runtime client per region.
type bedrockClients struct {
	byRegion map[string]*bedrockruntime.Client
}

func (b *bedrockClients) get(ctx context.Context, region string) (*bedrockruntime.Client, error) {
	if c, ok := b.byRegion[region]; ok {
		return c, nil
	}
	c, err := bedrockclient.New(ctx, region)
	if err != nil {
		return nil, err
	}
	if b.byRegion == nil {
		b.byRegion = make(map[string]*bedrockruntime.Client)
	}
	b.byRegion[region] = c
	return c, nil
}

func newEmbedder(ctx context.Context, cfg *config.AppConfig, clients *bedrockClients) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf":
		return tfidf.NewEmbedder(), nil
	case "openai":
		oc := cfg.Embedder.OpenAI
		return embedopenai.NewClient(embedopenai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     oc.Model,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
		})
	case "bedrock":
		bc := cfg.Embedder.Bedrock
		client, err := clients.get(ctx, bc.Region)
		if err != nil {
			return nil, err
		}
		return embedbedrock.NewEmbedder(client, bc.ModelID), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func newStore(ctx context.Context, cfg *config.AppConfig) (vectorstore.Storage, error) {
	vs := cfg.VectorStore
	switch vs.Type {
	case "memory":
		return memory.NewStorage(), nil
	case "qdrant":
		return qdrant.NewStorage(qdrant.Config{
			URL:        vs.Qdrant.URL,
			APIKey:     vs.Qdrant.APIKey,
			Collection: vs.Collection,
			Timeout:    time.Duration(vs.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	case "pgvector":
		dsn := os.Getenv(vs.Pgvector.DSNEnv)
		if dsn == "" {
			return nil, fmt.Errorf("missing connection string in env %s", vs.Pgvector.DSNEnv)
		}
		return pgvector.Open(ctx, pgvector.Config{DSN: dsn, Collection: vs.Collection})
	case "pinecone":
		pc := vs.Pinecone
		return pinecone.NewStorage(pinecone.Config{
			ControllerURL: pc.ControllerURL,
			APIKey:        os.Getenv(pc.APIKeyEnv),
			Index:         vs.Collection,
			Cloud:         pc.Cloud,
			Region:        pc.Region,
			Timeout:       time.Duration(pc.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown vector store: %s", vs.Type)
	}
}

// newGenerator is the language-model factory; it runs once per processing cycle.
func newGenerator(ctx context.Context, cfg *config.AppConfig, clients *bedrockClients) (llm.Generator, error) {
	params := llm.Params{
		ModelID:     cfg.LLM.ModelID,
		MaxGenLen:   cfg.LLM.MaxGenLen,
		Temperature: cfg.LLM.Temp(),
		TopP:        cfg.LLM.TopP,
	}
	switch cfg.LLM.Type {
	case "bedrock":
		client, err := clients.get(ctx, cfg.LLM.Region)
		if err != nil {
			return nil, err
		}
		return llmbedrock.NewGenerator(client, params)
	case "openai":
		oc := cfg.LLM.OpenAI
		return llmopenai.NewGenerator(llmopenai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
		}, params)
	default:
		return nil, fmt.Errorf("unknown llm: %s", cfg.LLM.Type)
	}
}
