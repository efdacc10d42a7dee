// @title           Community Knowledge Assistant API
// @version         1.0
// @description     Resident chat grounded in community documents, plus the admin surface
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/CommunityRAG/internal/bootstrap"
	"github.com/akolanti/CommunityRAG/internal/config"
	jobmodel "github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/akolanti/CommunityRAG/internal/handlers"
	"github.com/akolanti/CommunityRAG/internal/job"
	"github.com/akolanti/CommunityRAG/internal/server"
	"github.com/akolanti/CommunityRAG/internal/worker"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	if err := config.Load(); err != nil {
		println("could not read .env:", err.Error())
	}
	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.Env("LISTEN_ADDR", config.ServerListenAddr), "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	app, err := bootstrap.Build(serviceContext, bootstrap.FromEnv())
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		return
	}
	if _, err = app.Rag.EnsureGlobalPartition(serviceContext); err != nil {
		logger.Error("Could not create the global partition. Shutting down.", "error", err)
		return
	}

	//init job service and job store
	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
		JobStore:          app.Jobs,
	})

	handlers.InitJobHandler(service, app.Rag)

	//init worker pool
	worker.InitServices(service, app.Rag)
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
