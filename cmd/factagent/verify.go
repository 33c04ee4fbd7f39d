package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"factagent/internal/pipeline"
	"factagent/internal/sentiment"
)

var (
	verifyShowTrace bool
	verifyNoCache   bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [text]",
	Short: "Fact-check a claim from the command line",
	Long: `Runs the full fact-check pipeline on the given text and renders
the report in the terminal.

Example:
  factagent verify "The Great Wall of China is visible from space."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyShowTrace, "trace", false, "print the agent thinking trace")
	verifyCmd.Flags().BoolVar(&verifyNoCache, "no-cache", false, "bypass the verified-claims cache")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client := buildClient(cfg)

	var p *pipeline.Pipeline
	if verifyNoCache {
		p = buildPipeline(cfg, client, nil)
	} else {
		p = buildPipeline(cfg, client, store)
	}

	input := strings.Join(args, " ")
	result, err := p.Run(context.Background(), "cli", input)
	if err != nil {
		return err
	}

	printVerdictBadge(result)

	if verifyShowTrace {
		fmt.Println()
		for _, step := range result.Trace {
			fmt.Printf("  %s — %s\n", step.Name, step.Detail)
		}
	}

	fmt.Println()
	rendered, err := renderTerminalMarkdown(result.Report)
	if err != nil {
		fmt.Println(result.Report)
		return nil
	}
	fmt.Print(rendered)

	if result.Sentiment.Sentiment != "" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(sentiment.Color(result.Sentiment.Sentiment)))
		fmt.Printf("\nSentiment: %s (%s, %.0f%%)\n",
			style.Render(result.Sentiment.Sentiment),
			result.Sentiment.Emotion,
			result.Sentiment.Confidence*100)
	}
	return nil
}

func printVerdictBadge(result *pipeline.Result) {
	color := "214" // amber for mixed/unverified
	v := strings.ToLower(result.Verdict)
	switch {
	case strings.Contains(v, "true") && !strings.Contains(v, "false"):
		color = "42"
	case strings.Contains(v, "false"):
		color = "196"
	case strings.Contains(v, "error"):
		color = "245"
	}

	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("231")).
		Background(lipgloss.Color(color)).
		Padding(0, 1).
		Render(result.Verdict)

	suffix := fmt.Sprintf("%.0f%% confidence · %dms", result.Confidence*100, result.Elapsed.Milliseconds())
	if result.Cached {
		suffix += " · cached"
	}
	fmt.Printf("%s  %s\n", badge, suffix)
}

func renderTerminalMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}
