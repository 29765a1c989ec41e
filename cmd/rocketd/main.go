package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/archive"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/designd"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/settings"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/config"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/logger"
	"google.golang.org/grpc"
)

// openSinks builds the archive sinks enabled in s. The gorm sink is also
// returned on its own so the HTTP server can read designs back.
func openSinks(s *settings.Settings) (archive.MultiSink, *archive.GormSink, error) {
	var sinks archive.MultiSink
	var designs *archive.GormSink

	if s.Archive.Enabled {
		g, err := archive.Open(s.Archive.DSN, s.Archive.ConnectAttempts)
		if err != nil {
			return nil, nil, err
		}
		designs = g
		sinks = append(sinks, g)
	}
	if s.Influx.Enabled {
		sinks = append(sinks, archive.NewInfluxSink(s.Influx.URL, s.Influx.Token, s.Influx.Org, s.Influx.Bucket))
		logger.Info("influx sink enabled", "url", s.Influx.URL, "bucket", s.Influx.Bucket)
	}
	return sinks, designs, nil
}

func main() {
	var configFile string
	var grpcAddr string
	var httpAddr string
	var logLevel string

	flag.StringVar(&configFile, "config", "", "rocketd settings file (default: ./rocketd.yaml if present)")
	flag.StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address (overrides settings)")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP listen address (overrides settings)")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.Parse()

	s, err := settings.Load(configFile)
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}
	if grpcAddr != "" {
		s.GRPCAddr = grpcAddr
	}
	if httpAddr != "" {
		s.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		s.LogLevel = logLevel
	}

	logger.SetDefault(logger.NewFormat(s.LogFormat, s.LogLevel, os.Stdout))

	catalogCfg, err := config.LoadCatalog(s.Catalog)
	if err != nil {
		logger.Error("failed to load engine catalog", "path", s.Catalog, "error", err)
		os.Exit(1)
	}
	optimizer, err := config.LoadOptimizer(s.Optimizer)
	if err != nil {
		logger.Error("failed to load optimizer settings", "path", s.Optimizer, "error", err)
		os.Exit(1)
	}

	sinks, designs, err := openSinks(s)
	if err != nil {
		logger.Error("failed to open archive", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	store := designd.NewSearchStore()
	executor := designd.NewSearchExecutor(store, catalogCfg.EngineCatalog(), optimizer)
	if len(sinks) > 0 {
		executor.WithSink(sinks)
	}
	httpHandler := designd.NewHTTPServer(store, executor)
	if designs != nil {
		httpHandler.WithArchive(designs)
	}

	logger.Info("engine catalog loaded", "path", s.Catalog, "engines", len(catalogCfg.Engines))

	var grpcServer *grpc.Server
	if s.GRPCAddr != "" {
		// TODO: Configure gRPC server security (e.g., TLS, authentication, rate limiting)
		// before using this service in a production environment.
		grpcServer = grpc.NewServer()
		designd.RegisterStageOptimizerServer(grpcServer, designd.NewOptimizerGRPCServer(store, executor))

		grpcLis, err := net.Listen("tcp", s.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen for gRPC", "addr", s.GRPCAddr, "error", err)
			stop()
			os.Exit(1)
		}
		go func() {
			logger.Info("gRPC server listening", "addr", s.GRPCAddr)
			if err := grpcServer.Serve(grpcLis); err != nil {
				logger.Error("gRPC server error", "error", err)
				stop()
			}
		}()
	}

	var httpSrv *http.Server
	if s.HTTPAddr != "" {
		httpSrv = &http.Server{
			Addr:              s.HTTPAddr,
			Handler:           httpHandler.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", s.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if httpSrv != nil {
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
	}

	executor.StopAll()
	executor.Wait()
	if err := sinks.Close(); err != nil {
		logger.Error("archive close error", "error", err)
	}
}
