package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/data/store"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/internal/handlers"
	"github.com/apatwari/docchat/internal/job"
	"github.com/apatwari/docchat/internal/rag"
	"github.com/apatwari/docchat/internal/rag/embedding/googleembed"
	"github.com/apatwari/docchat/internal/rag/llm"
	"github.com/apatwari/docchat/internal/rag/llm/gemini"
	"github.com/apatwari/docchat/internal/rag/llm/openaillm"
	"github.com/apatwari/docchat/internal/rag/vectorstore/qdrantdb"
	"github.com/apatwari/docchat/internal/server"
	"github.com/apatwari/docchat/internal/worker"
	"github.com/apatwari/docchat/pkg/logkit"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logkit.Init()
	var logger = logkit.NewLogger("main")

	//config
	config.LoadEnv()
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and stores
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          store.GetRedisJobStore(serviceContext),
		SessionStore:      store.GetRedisSessionStore(serviceContext),
	}
	logger.Info("Starting job service")

	if serviceConfig.JobStore == nil || serviceConfig.SessionStore == nil {
		logger.Error("Redis stores are offline")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.SessionStore = store.InitInMemorySessionStore()
	}
	service := job.InitJobService(serviceConfig)

	vectorDB := qdrantdb.GetQdrantClient(serviceContext)
	embeddingService := googleembed.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey())

	var llmProvider llm.Provider
	switch config.LLMProvider() {
	case "openai":
		llmProvider = openaillm.GetOpenAIClient(serviceContext, config.OpenAIModelName, config.OpenAIAPIKey())
	default:
		llmProvider = gemini.GetGeminiClient(serviceContext, config.GeminiModelName, config.GoogleAPIKey())
	}

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	ragService := rag.NewService(vectorDB, llmProvider, embeddingService)

	handlers.InitJobHandler(service, vectorDB)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
