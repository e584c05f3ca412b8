package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ponyo877/signtalk/rpc"
	"github.com/ponyo877/signtalk/server/adaptor"
	"github.com/ponyo877/signtalk/server/dictionary"
	"github.com/ponyo877/signtalk/server/domain"
	"github.com/ponyo877/signtalk/server/inference"
	"github.com/ponyo877/signtalk/server/repository"
	"github.com/ponyo877/signtalk/server/usecase"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 10 * time.Second

func newRecognizer(cfg Config) usecase.Recognizer {
	if cfg.RecognizerURL == "" {
		slog.Warn("No recognizer configured, landmark windows map to placeholder words")
		return inference.SequenceRecognizer{}
	}
	return inference.NewHTTPRecognizer(cfg.RecognizerURL, cfg.ModelServerTimeout)
}

func newComposer(cfg Config) (usecase.Composer, error) {
	switch cfg.Composer {
	case "", "join":
		return inference.JoinComposer{}, nil
	case "openai":
		return inference.NewOpenAIComposer(inference.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
	}
	return nil, fmt.Errorf("unknown composer %q", cfg.Composer)
}

func serve(ctx context.Context, cfg Config) error {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	composer, err := newComposer(cfg)
	if err != nil {
		return fmt.Errorf("create composer: %w", err)
	}

	db, err := repository.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	repo := repository.NewRepository(db)

	model := inference.NewClient(cfg.ModelServerURL, cfg.ModelServerTimeout)
	pool := usecase.NewPool(cfg.Workers, cfg.QueueSize)
	pool.Start(context.Background())
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := pool.Stop(stopCtx); err != nil {
			slog.Warn("Worker pool did not stop cleanly", "error", err)
		}
	}()

	pipeline := usecase.NewPipeline(model, usecase.NewResolver(repo), pool, cfg.TranslateRetries)
	aggregator := usecase.NewAggregator(newRecognizer(cfg), composer, cfg.LandmarkBatch)
	streamManager := domain.NewStreamManager()
	defer streamManager.Cleanup()
	streamUC := usecase.NewStreamUsecase(repo, streamManager, pipeline, aggregator, pool, location)
	uc := usecase.NewUsecase(repo, repo, pipeline, pool, cfg.HistoryLimit)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.DictionaryFile != "" {
		watcher, err := dictionary.NewWatcher(cfg.DictionaryFile, uc)
		if err != nil {
			return err
		}
		if err := watcher.Sync(ctx); err != nil {
			return fmt.Errorf("seed dictionary: %w", err)
		}
		if cfg.DictionaryWatch {
			g.Go(func() error { return watcher.Run(ctx) })
		}
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	grpcServer := grpc.NewServer()
	rpc.RegisterSigntalkServiceServer(grpcServer, adaptor.NewAdaptor(uc, streamUC))
	reflection.Register(grpcServer)

	g.Go(func() error {
		slog.Info("gRPC server listening", "addr", lis.Addr().String())
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(shutdownTimeout):
			grpcServer.Stop()
		}
		return nil
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           adaptor.NewHandler(uc, streamUC, model).Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	slog.Info("Server stopped", "stats", streamManager.GetStats())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
