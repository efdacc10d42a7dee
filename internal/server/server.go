package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/CommunityRAG/internal/adapter/utils"
	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/middleware"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func RegisterRoutes(r *chi.Mux) {
	r.Get("/health", middleware.HealthHandler)
	r.Post("/chat", middleware.ChatHandler)
	r.Get("/chat/greeting", middleware.GreetingHandler)
	r.Get("/communities", middleware.CommunitiesHandler)

	r.Route("/admin", func(admin chi.Router) {
		admin.Get("/communities", middleware.ListCommunitiesHandler)
		admin.Post("/communities", middleware.CreateCommunityHandler)
		admin.Patch("/communities/{id}", middleware.UpdateCommunityHandler)
		admin.Delete("/communities/{id}", middleware.DeleteCommunityHandler)

		admin.Get("/documents", middleware.ListDocumentsHandler)
		admin.Post("/documents", middleware.PostDocumentHandler)
		admin.Delete("/documents", middleware.DeleteDocumentHandler)
		admin.Post("/documents/batch", middleware.PostBatchHandler)

		admin.Get("/status/{id}", middleware.GetStatusHandler)
	})
}

func CreateServer(listenAddr string) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()
	RegisterRoutes(r.Router)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
