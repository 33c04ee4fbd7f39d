package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"factagent/internal/config"
	"factagent/internal/llm"
)

var keycheckCmd = &cobra.Command{
	Use:   "keycheck",
	Short: "Diagnose API credential resolution",
	Long: `Shows where the API credential comes from and verifies it against
the live API.

The machine environment and the .env file are compared; when both
define a key, the .env file value wins. Use this when the API rejects
requests with an expired-key error to see which value is actually in
effect.`,
	RunE: runKeycheck,
}

func runKeycheck(cmd *cobra.Command, args []string) error {
	// Capture machine-level values before the .env overlay rewrites them.
	machineGemini := os.Getenv("GEMINI_API_KEY")
	machineGoogle := os.Getenv("GOOGLE_API_KEY")

	envPath := envFile
	if envPath == "" {
		for _, candidate := range config.DefaultEnvPaths(filepath.Dir(cfgPath)) {
			if _, err := os.Stat(candidate); err == nil {
				envPath = candidate
				break
			}
		}
	}

	fmt.Println("Credential resolution")
	fmt.Println("=====================")
	fmt.Printf("Machine GEMINI_API_KEY: %s\n", displayKey(machineGemini))
	fmt.Printf("Machine GOOGLE_API_KEY: %s\n", displayKey(machineGoogle))

	if envPath == "" {
		fmt.Println("No .env file found.")
	} else {
		fmt.Printf(".env file: %s\n", envPath)
		values, err := config.EnvFileValues(envPath)
		if err != nil {
			return err
		}
		fmt.Printf("  GEMINI_API_KEY: %s\n", displayKey(values["GEMINI_API_KEY"]))
		fmt.Printf("  GOOGLE_API_KEY: %s\n", displayKey(values["GOOGLE_API_KEY"]))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("no API key resolved; set GEMINI_API_KEY in the environment or a .env file")
	}

	resolved := cfg.LLM.APIKey
	fmt.Printf("\nResolved key: %s", config.Redact(resolved))
	switch {
	case envPath != "" && machineGemini != "" && resolved != machineGemini:
		fmt.Println(" (from .env file, overriding the machine environment)")
	case envPath != "" && machineGemini == "":
		fmt.Println(" (from .env file)")
	default:
		fmt.Println(" (from the machine environment)")
	}

	fmt.Println("\nLive API check...")
	client := buildClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetLLMTimeout())
	defer cancel()

	reply, err := llm.Keycheck(ctx, client)
	if err != nil {
		return fmt.Errorf("API check failed: %w", err)
	}
	fmt.Printf("API responded: %s\n", reply)
	fmt.Println("Credential is valid.")
	return nil
}

func displayKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return config.Redact(key)
}
