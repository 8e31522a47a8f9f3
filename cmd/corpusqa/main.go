package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"corpusqa/internal/chunker"
	"corpusqa/internal/config"
	"corpusqa/internal/domain"
	"corpusqa/internal/embedding"
	"corpusqa/internal/embedding/openai"
	"corpusqa/internal/embedding/tfidf"
	"corpusqa/internal/llm"
	"corpusqa/internal/logging"
	"corpusqa/internal/service"
	"corpusqa/internal/source"
	"corpusqa/internal/summarizer"
	"corpusqa/internal/tui"
	"corpusqa/internal/vectorcache"
	"corpusqa/internal/vectorstore/hnsw"
	"corpusqa/internal/vectorstore/memory"
	"corpusqa/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, question, modeFlag string
	var demo bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/corpusqa/config.yaml if not provided)")
	flag.StringVar(&question, "ask", "", "Answer a single question and exit")
	flag.StringVar(&modeFlag, "mode", "", "Answer mode: rag, all_docs or base_model (default from config)")
	flag.BoolVar(&demo, "demo", false, "Answer the sample questions in every mode and exit")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	mode := service.ParseMode(cfg.Retrieval.Mode)
	if modeFlag != "" {
		mode = service.ParseMode(modeFlag)
	}

	logger, closeLog, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		log.Fatalf("failed to init logging: %v", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Assemble components
	var emb embedding.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv:  cfg.Embedder.OpenAI.APIKeyEnv,
			Model:      cfg.Embedder.OpenAI.Model,
			Timeout:    time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Embedder.OpenAI.MaxRetries,
			Normalize:  cfg.Embedder.OpenAI.Normalize,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var cache vectorcache.Store
	switch cfg.Cache.Type {
	case "file", "":
		cache = vectorcache.NewFileStore(cfg.Cache.Path)
	case "sqlite":
		db, err := vectorcache.OpenSQLite(cfg.Cache.Path)
		if err != nil {
			log.Fatalf("sqlite cache init failed: %v", err)
		}
		defer db.Close()
		cache = db
	case "none":
		cache = vectorcache.Noop{}
	default:
		log.Fatalf("unknown cache: %s", cfg.Cache.Type)
	}

	hcfg := hnsw.Config{
		M:              cfg.VectorStore.HNSW.M,
		EfConstruction: cfg.VectorStore.HNSW.EfConstruction,
		EfSearch:       cfg.VectorStore.HNSW.EfSearch,
		Seed:           cfg.VectorStore.HNSW.Seed,
	}
	var indexer domain.IndexBuilder
	switch cfg.VectorStore.Type {
	case "hnsw", "":
		indexer = hnsw.NewBuilder(hcfg)
	case "memory":
		indexer = memory.NewBuilder()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		qcfg := qdrant.Config{
			URL:         cfg.VectorStore.Qdrant.URL,
			Collection:  cfg.VectorStore.Qdrant.Collection,
			Timeout:     time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
			M:           hcfg.M,
			EfConstruct: hcfg.EfConstruction,
			EfSearch:    hcfg.EfSearch,
		}
		if env := cfg.VectorStore.Qdrant.APIKeyEnv; env != "" {
			qcfg.APIKey = os.Getenv(env)
		}
		indexer = qdrant.NewBuilder(qcfg)
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	case "none":
	default:
		log.Fatalf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	completer, err := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("llm init failed: %v", err)
	}

	fragOpts := chunker.Options{
		ChunkSize:  cfg.Chunker.ChunkSize,
		GroupSize:  cfg.Chunker.GroupSize,
		Separators: cfg.Chunker.Separators,
	}
	if cfg.Chunker.ChunkOverlap != nil {
		fragOpts.ChunkOverlap = *cfg.Chunker.ChunkOverlap
	}
	fragmenter, err := chunker.NewFragmenter(fragOpts)
	if err != nil {
		log.Fatalf("chunker config: %v", err)
	}

	logger.Info("starting",
		"embedder", emb.Name(),
		"vector_store", cfg.VectorStore.Type,
		"cache", cfg.Cache.Type,
		"llm", completer.Model(),
		"mode", string(mode))
	pipeline, err := service.Build(ctx, service.Deps{
		Documents:  source.NewPDFReader(),
		Tables:     source.NewCSVReader(),
		Fragmenter: fragmenter,
		Embedder:   emb,
		Cache:      cache,
		Indexer:    indexer,
		Completer:  completer,
		Summarizer: sum,
		Logger:     logger,
	}, service.Options{
		DocumentPath:     cfg.Sources.Document,
		TablePath:        cfg.Sources.Table,
		TopK:             cfg.Retrieval.TopK,
		BatchSize:        cfg.Embedder.BatchSize,
		SummarySentences: cfg.Summarizer.MaxSentences,
	})
	if err != nil {
		log.Fatalf("pipeline build failed: %v", err)
	}

	switch {
	case demo:
		runDemo(ctx, pipeline)
	case question != "":
		fmt.Println(pipeline.Answer(ctx, question, mode))
	default:
		if cfg.Log.File == "" {
			// stderr output would corrupt the TUI
			pipeline = pipeline.WithLogger(logging.Discard())
		}
		m := tui.New(ctx, pipeline, pipeline.Summary(), mode)
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			log.Fatal(err)
		}
	}
}

func runDemo(ctx context.Context, p *service.Pipeline) {
	rule := strings.Repeat("=", 100)
	for i, q := range demoQuestions {
		fmt.Println("\n" + rule)
		fmt.Printf("Question %d: %s\n", i+1, q)
		for _, m := range service.Modes() {
			fmt.Printf("\n[%s]\n%s\n", m.Label(), p.Answer(ctx, q, m))
		}
	}
}
