package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print memory store statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	docs, err := store.DocumentCount()
	if err != nil {
		return err
	}

	fmt.Printf("Verified claims:     %d\n", stats.TotalVerifiedClaims)
	fmt.Printf("Average confidence:  %.0f%%\n", stats.AverageConfidence*100)
	fmt.Printf("Sessions:            %d\n", stats.TotalSessions)
	fmt.Printf("Knowledge documents: %d\n", docs)

	if len(stats.VerdictDistribution) > 0 {
		fmt.Println("\nVerdict distribution:")
		verdicts := make([]string, 0, len(stats.VerdictDistribution))
		for v := range stats.VerdictDistribution {
			verdicts = append(verdicts, v)
		}
		sort.Strings(verdicts)
		for _, v := range verdicts {
			fmt.Printf("  %-14s %d\n", v, stats.VerdictDistribution[v])
		}
	}
	return nil
}
