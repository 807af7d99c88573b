package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"library-chat/internal/chat"
	"library-chat/internal/config"
	"library-chat/internal/db"
	"library-chat/internal/embedding"
	"library-chat/internal/helper"
	"library-chat/internal/llmservice"
	"library-chat/internal/mapreduce"
	"library-chat/internal/models"
	"library-chat/internal/parser"
	"library-chat/internal/rag"
	"library-chat/internal/registry"
	"library-chat/internal/vectorstore"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	addFile := flag.String("add", "", "Path of a document file to add to the library")
	removeTitle := flag.String("remove", "", "Title of a document to remove from the library")
	list := flag.Bool("list", false, "List the documents in the library")
	ask := flag.String("ask", "", "Question to answer from the library")
	search := flag.String("search", "", "Optional search text used for retrieval instead of the question")
	digestFile := flag.String("digest", "", "Path of a large document to feed through map-reduce chat")
	prompt := flag.String("prompt", "", "Request to run against the digested document")
	chatMode := flag.Bool("chat", false, "Start an interactive chat session")
	model := flag.String("model", "", "Override the inference model from the config")
	backup := flag.Bool("backup", false, "Export the vector collection to an encrypted file")
	restore := flag.Bool("restore", false, "Import the vector collection from an encrypted file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()
	switch {
	case *addFile != "":
		addDocument(ctx, cfg, *addFile)
	case *removeTitle != "":
		removeDocument(ctx, cfg, *removeTitle)
	case *list:
		listDocuments(ctx, cfg)
	case *ask != "":
		askLibrary(ctx, cfg, *ask, *search, *model)
	case *digestFile != "":
		digestDocument(ctx, cfg, *digestFile, *prompt, *model)
	case *chatMode:
		chatLoop(ctx, cfg, *model)
	case *backup:
		backupCollection(ctx, cfg)
	case *restore:
		restoreCollection(ctx, cfg)
	default:
		flag.Usage()
	}
}

// buildRegistry wires the embedder, the vector store, and the configured
// durable list into a ready registry.
func buildRegistry(ctx context.Context, cfg *config.Config) (*registry.Registry, *vectorstore.ChromemStore) {
	if !cfg.Vector.InMemory {
		if err := helper.CreateFolder(cfg.Vector.Path); err != nil {
			log.Fatal().Err(err).Msg("Error creating vector store folder")
		}
	}

	store, err := vectorstore.NewChromemStore(cfg.Vector.Path, cfg.Vector.Collection, cfg.Vector.InMemory, cfg.RAG.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}

	embedder, err := embedding.NewClient(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	var list registry.DurableList
	switch cfg.Registry.Backend {
	case "postgres":
		sqldb, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		bunDB := db.NewDB(sqldb, cfg.Database.Debug)
		if err := db.InitDB(ctx, bunDB); err != nil {
			log.Fatal().Err(err).Msg("Error initializing database")
		}
		list = db.NewTitleList(bunDB)
	default:
		list = registry.NewFileList(cfg.Registry.Path)
	}

	reg, err := registry.NewRegistry(ctx, embedder, store, list, cfg.RAG.ChunkBudget)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading document registry")
	}
	return reg, store
}

func buildSession(cfg *config.Config) *chat.Session {
	completer, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing completion client")
	}
	return chat.NewSession(completer)
}

func addDocument(ctx context.Context, cfg *config.Config, filePath string) {
	reg, _ := buildRegistry(ctx, cfg)

	title := parser.TitleFromPath(filePath)
	text, err := parser.Extract(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error extracting document text")
	}

	count, err := reg.Add(ctx, title, text)
	if err != nil {
		log.Fatal().Err(err).Str("title", title).Msg("Error adding document")
	}
	fmt.Printf("Added %q in %d sections\n", title, count)
}

func removeDocument(ctx context.Context, cfg *config.Config, title string) {
	reg, _ := buildRegistry(ctx, cfg)

	count, err := reg.Remove(ctx, title)
	if err != nil {
		log.Fatal().Err(err).Str("title", title).Msg("Error removing document")
	}
	fmt.Printf("Removed %q, deleted %d sections\n", title, count)
}

func listDocuments(ctx context.Context, cfg *config.Config) {
	reg, _ := buildRegistry(ctx, cfg)
	helper.PrettyPrint(reg.List())
}

func askLibrary(ctx context.Context, cfg *config.Config, question, search, model string) {
	reg, _ := buildRegistry(ctx, cfg)
	session := buildSession(cfg)
	composer := rag.NewComposer(reg)

	prompt, err := composer.Compose(ctx, question, search, cfg.RAG.TopN)
	if err != nil {
		log.Fatal().Err(err).Msg("Error composing prompt")
	}

	response, err := session.Send(ctx, prompt, model)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", question)
	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response)
}

func digestDocument(ctx context.Context, cfg *config.Config, filePath, prompt, model string) {
	if prompt == "" {
		log.Fatal().Msg("Please provide a request with the -prompt flag")
	}

	text, err := parser.Extract(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error extracting document text")
	}

	session := buildSession(cfg)
	driver := mapreduce.NewDriver(session, cfg.RAG.ChunkBudget, models.DefaultWindow)

	turns, err := driver.Run(ctx, text, prompt, model)
	if err != nil {
		log.Fatal().Err(err).Msg("Error starting map-reduce run")
	}

	var failed bool
	for turn := range turns {
		if turn.Pending {
			log.Info().Int("chunk", turn.Chunk).Msg("Sending document part")
			continue
		}
		fmt.Printf("--- part %d ---\n%s\n\n", turn.Chunk+1, turn.Response)
		if turn.Err != nil {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func chatLoop(ctx context.Context, cfg *config.Config, model string) {
	reg, _ := buildRegistry(ctx, cfg)
	session := buildSession(cfg)
	composer := rag.NewComposer(reg)

	fmt.Println("Chat started. /ask <question> answers from the library, /clear resets, /quit exits.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/clear":
			session.Clear()
			fmt.Println("History cleared.")
			continue
		}

		message := line
		if question, ok := strings.CutPrefix(line, "/ask "); ok {
			composed, err := composer.Compose(ctx, question, "", cfg.RAG.TopN)
			if err != nil {
				fmt.Println("We received an error: " + err.Error())
				continue
			}
			message = composed
		}

		response, err := session.Send(ctx, message, model)
		if err != nil {
			// the user message stays in the history so the attempt
			// remains visible
			fmt.Println("We received an error: " + err.Error())
			continue
		}
		fmt.Println(response)
	}
}

func backupCollection(ctx context.Context, cfg *config.Config) {
	_, store := buildRegistry(ctx, cfg)
	if err := store.Export(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error exporting collection")
	}
	fmt.Println("Collection exported")
}

func restoreCollection(ctx context.Context, cfg *config.Config) {
	_, store := buildRegistry(ctx, cfg)
	if err := store.Import(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error importing collection")
	}
	fmt.Println("Collection imported")
}
