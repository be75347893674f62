package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/api"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/mcptools"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/proof"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/replay"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/rpc"
)

// #region activity

func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must be RFC 3339: %w", err)
	}
	return t, nil
}

func checkinCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "checkin [user] [emotion]",
		Short: "Record an emotion check-in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := parseAt(at)
			if err != nil {
				return err
			}
			rt, err := open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer rt.close()

			id, err := rt.svc.RecordCheckIn(cmd.Context(), args[0], when, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Recorded check-in: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "check-in time, RFC 3339 (default: now)")
	return cmd
}

func taskCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "task [user]",
		Short: "Record a completed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := parseAt(at)
			if err != nil {
				return err
			}
			rt, err := open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer rt.close()

			id, err := rt.svc.RecordTask(cmd.Context(), args[0], when)
			if err != nil {
				return err
			}
			fmt.Printf("Recorded task: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "completion time, RFC 3339 (default: now)")
	return cmd
}

func reflectCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "reflect [user] [text]",
		Short: "Record a journal reflection",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := parseAt(at)
			if err != nil {
				return err
			}
			rt, err := open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer rt.close()

			id, err := rt.svc.RecordReflection(cmd.Context(), args[0], strings.Join(args[1:], " "), when)
			if err != nil {
				return err
			}
			fmt.Printf("Recorded reflection: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "reflection time, RFC 3339 (default: now)")
	return cmd
}

// #endregion activity

// #region clarity

func computeCmd() *cobra.Command {
	var jsonOut, verbose bool

	cmd := &cobra.Command{
		Use:   "compute [user]",
		Short: "Recompute a user's clarity score and fog state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var logger *log.Logger
			if !verbose {
				logger = log.New(io.Discard, "", 0)
			}
			rt, err := open(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer rt.close()

			res, err := rt.svc.Compute(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(api.NewClarityResponse(res))
			}

			r := res.Fog
			fmt.Printf("Clarity:  %.4f\n", r.Score)
			fmt.Printf("Fog:      %.4f (%s)\n", r.State.FogValue, r.State.FogBucket)
			fmt.Printf("Previous: %.4f (%s)\n", r.Previous, res.PrevSource)
			fmt.Printf("\nSub-scores:\n")
			fmt.Printf("  %-12s %.4f\n", "checkins", r.Scores.Checkins)
			fmt.Printf("  %-12s %.4f\n", "recovery", r.Scores.Recovery)
			fmt.Printf("  %-12s %.4f\n", "alignment", r.Scores.Alignment)
			fmt.Printf("  %-12s %.4f\n", "reflection", r.Scores.Reflection)
			fmt.Printf("  %-12s %.4f\n", "consistency", r.Scores.Consistency)
			if !res.WriteQueued {
				fmt.Printf("\nNot persisted: %s\n", res.Eval.Reason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log engine diagnostics to stderr")
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [user]",
		Short: "Show past fog writes, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer rt.close()

			entries, err := rt.svc.History(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No fog history.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %.4f  %-7s  clarity %.4f\n",
					e.ComputedAt.Format(time.DateTime), e.State.FogValue, e.State.FogBucket, e.ClarityScore)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max entries (default 20)")
	return cmd
}

// #endregion clarity

// #region proofs

func proofCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proof",
		Short: "Append to or read the life-proof log",
	}
	cmd.AddCommand(proofAddCmd())
	cmd.AddCommand(proofListCmd())
	return cmd
}

func proofAddCmd() *cobra.Command {
	var sourceID string

	cmd := &cobra.Command{
		Use:   "add [user] [module] [text]",
		Short: "Append a proof",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer rt.close()

			p, err := rt.svc.AppendProof(cmd.Context(), args[0], proof.Module(args[1]), strings.Join(args[2:], " "), sourceID)
			if err != nil {
				return err
			}
			fmt.Printf("Added proof: %s\n", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceID, "source", "", "ID of the originating record")
	return cmd
}

func proofListCmd() *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list [user]",
		Short: "List recent proofs, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer rt.close()

			proofs, err := rt.svc.ListProofs(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(proofs)
			}
			if len(proofs) == 0 {
				fmt.Println("No proofs.")
				return nil
			}
			for _, p := range proofs {
				fmt.Printf("[%s] %-13s %s\n", p.CreatedAt.Format(time.DateTime), p.Module, p.ShortText)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max results (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

// #endregion proofs

// #region replay

func replayCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "replay [fixture]",
		Short: "Replay a YAML or JSON fixture through the fog pipeline in memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := replay.LoadFixture(args[0])
			if err != nil {
				return err
			}
			steps := replay.Replay(fx.StartFog, fx.ToSessions(), fx.Config.ToReplayConfig())
			summary := replay.Summarize(steps)
			mismatches := fx.Check(steps)

			if jsonOut {
				if err := printJSON(map[string]any{"steps": steps, "summary": summary, "mismatches": mismatches}); err != nil {
					return err
				}
			} else {
				for _, s := range steps {
					fmt.Printf("%-10s  %-11s  score %.4f  fog %.6f  %-6s  %s\n",
						s.SessionID, s.Action, s.Result.Score, s.Result.State.FogValue, s.Result.State.FogBucket, s.Reason)
				}
				fmt.Printf("\n%d sessions, %d persisted, %d rejected, %d bucket transitions, final %.6f (%s)\n",
					summary.TotalSessions, summary.Persisted, summary.EvalRejects, summary.Transitions,
					summary.FinalState.FogValue, summary.FinalState.FogBucket)
				for _, m := range mismatches {
					fmt.Fprintf(os.Stderr, "MISMATCH %s\n", m)
				}
			}
			if len(mismatches) > 0 {
				return fmt.Errorf("%d expectation(s) failed", len(mismatches))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

// #endregion replay

// #region servers

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), log.New(os.Stderr, "", log.LstdFlags))
			if err != nil {
				return err
			}
			defer rt.close()

			if addr == "" {
				addr = rt.settings.Server.HTTPAddr
			}
			return api.New(rt.svc, addr).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func grpcCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "grpc",
		Short: "Start the gRPC ClarityService",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), log.New(os.Stderr, "", log.LstdFlags))
			if err != nil {
				return err
			}
			defer rt.close()

			if addr == "" {
				addr = rt.settings.Server.GRPCAddr
			}
			return rpc.Serve(cmd.Context(), addr, rt.svc)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the MCP protocol, so engine logs go to stderr.
			rt, err := open(cmd.Context(), log.New(os.Stderr, "", log.LstdFlags))
			if err != nil {
				return err
			}
			defer rt.close()

			return server.ServeStdio(mcptools.NewServer(rt.svc, Version))
		},
	}
}

// #endregion servers

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
