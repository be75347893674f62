// clarity: clarity score and fog-state engine.
//
// Usage:
//
//	clarity checkin <user> <emotion>   # record an emotion check-in
//	clarity compute <user>             # recompute and persist the fog state
//	clarity serve                      # HTTP API
//	clarity grpc                       # gRPC service
//	clarity mcp                        # MCP server over stdio
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/config"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/engine"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/pgstore"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/service"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/state"
)

// Version is stamped at build time.
var Version = "dev"

var (
	configPath string
	dbPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clarity",
		Short:         "Clarity score and fog-state engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $CLARITY_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")

	rootCmd.AddCommand(checkinCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(reflectCmd())
	rootCmd.AddCommand(computeCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(proofCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(grpcCmd())
	rootCmd.AddCommand(mcpCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// #region wiring

// app bundles an opened backend with the service built on it.
type app struct {
	settings config.Settings
	svc      *service.Service
	close    func()
}

func loadSettings() (config.Settings, error) {
	s, err := config.Load(configPath)
	if err != nil {
		return s, err
	}
	if dbPath != "" {
		s.Storage.Driver = config.DriverSQLite
		s.Storage.Path = dbPath
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

// open loads settings and wires the configured backend into a service.
// logger may be nil.
func open(ctx context.Context, logger *log.Logger) (*app, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	switch settings.Storage.Driver {
	case config.DriverPostgres:
		st, err := pgstore.NewStore(ctx, settings.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		eng := engine.New(st, settings.EngineConfig(), logger)
		svc := service.New(eng, st, st.Proofs(), settings.ProofLimit)
		return &app{settings: settings, svc: svc, close: func() { svc.Flush(); st.Close() }}, nil
	default:
		st, err := state.NewStore(settings.Storage.Path)
		if err != nil {
			return nil, err
		}
		eng := engine.New(st, settings.EngineConfig(), logger)
		svc := service.New(eng, st, st.Proofs(), settings.ProofLimit)
		return &app{settings: settings, svc: svc, close: func() { svc.Flush(); st.Close() }}, nil
	}
}

// #endregion wiring
