package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/state"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to clarity.db")
	last := flag.Int("last", 20, "show N most recent snapshots or history entries")
	user := flag.String("user", "", "show one user's snapshot and fog history")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/clarity.db [--last N] [--user id] [--json]")
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if *user != "" {
		err = runUserMode(ctx, store, *user, *last, *jsonOut)
	} else {
		err = runListMode(ctx, store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(ctx context.Context, store *state.Store, last int, jsonOut bool) error {
	snaps, err := store.ListSnapshots(ctx, last)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(os.Stderr, "no fog snapshots found")
		return nil
	}
	if jsonOut {
		return printJSON(snaps)
	}

	fmt.Printf("%-20s  %8s  %-7s  %8s  %s\n", "User", "Fog", "Bucket", "Clarity", "Updated")
	fmt.Printf("%-20s+-%8s+-%-7s+-%8s+-%s\n", "--------------------", "--------", "-------", "--------", "--------------------")
	for _, s := range snaps {
		fmt.Printf("%-20s  %8.4f  %-7s  %8.4f  %s\n",
			shortID(s.UserID), s.State.FogValue, s.State.FogBucket, s.ClarityScore, formatTime(s.UpdatedAt))
	}

	fmt.Printf("\nBuckets:\n")
	printBuckets(countBuckets(snaps))
	return nil
}

func countBuckets(snaps []state.Snapshot) map[fog.Bucket]int {
	counts := make(map[fog.Bucket]int)
	for _, s := range snaps {
		counts[s.State.FogBucket]++
	}
	return counts
}

// #endregion list-mode

// #region user-mode

type userOutput struct {
	Snapshot state.Snapshot       `json:"snapshot"`
	History  []state.HistoryEntry `json:"history"`
}

func runUserMode(ctx context.Context, store *state.Store, userID string, last int, jsonOut bool) error {
	snap, err := store.GetSnapshot(ctx, userID)
	if err != nil {
		return err
	}
	history, err := store.ListFogHistory(ctx, userID, last)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(userOutput{Snapshot: snap, History: history})
	}

	fmt.Printf("User:     %s\n", snap.UserID)
	fmt.Printf("Fog:      %.4f (%s)\n", snap.State.FogValue, snap.State.FogBucket)
	fmt.Printf("Clarity:  %.4f\n", snap.ClarityScore)
	fmt.Printf("Updated:  %s\n", formatTime(snap.UpdatedAt))

	fmt.Printf("\nSub-scores:\n")
	fmt.Printf("  %-12s %.4f\n", "checkins", snap.Scores.Checkins)
	fmt.Printf("  %-12s %.4f\n", "recovery", snap.Scores.Recovery)
	fmt.Printf("  %-12s %.4f\n", "alignment", snap.Scores.Alignment)
	fmt.Printf("  %-12s %.4f\n", "reflection", snap.Scores.Reflection)
	fmt.Printf("  %-12s %.4f\n", "consistency", snap.Scores.Consistency)

	if len(history) == 0 {
		return nil
	}
	// history is newest first; print chronologically with the delta to the prior write
	fmt.Printf("\nHistory:\n")
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		delta := "-"
		if i < len(history)-1 {
			delta = fmt.Sprintf("%+.4f", h.State.FogValue-history[i+1].State.FogValue)
		}
		fmt.Printf("  %6d  %s  %.4f  %8s  %s\n", h.Seq, formatTime(h.ComputedAt), h.State.FogValue, delta, h.State.FogBucket)
	}
	return nil
}

// #endregion user-mode

// #region output

func printBuckets(counts map[fog.Bucket]int) {
	order := []fog.Bucket{fog.BucketClear, fog.BucketHaze, fog.BucketPatchy, fog.BucketHeavy}
	for _, b := range order {
		fmt.Printf("  %-8s %d\n", b, counts[b])
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func shortID(id string) string {
	if len(id) > 20 {
		return id[:20]
	}
	return id
}

// #endregion output
