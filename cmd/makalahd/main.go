// Package main implements the makalahd CLI for running the workflow phase
// engine from the command line: classifying assistant responses into
// workflow phases and rendering the context block injected before model
// calls.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/makalah-app/makalah-beta-sub003/internal/config"
	"github.com/makalah-app/makalah-beta-sub003/internal/logging"
	"github.com/makalah-app/makalah-beta-sub003/internal/workflow"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "makalahd",
	Short: "Workflow phase engine for writing sessions",
	Long: `makalahd runs the workflow phase engine: it classifies assistant
responses into one of eleven writing phases via embedding search over the
phase reference corpus, and renders the compact workflow-state block
injected ahead of each model call.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(phasesCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect [text]",
	Short: "Classify a response text into a workflow phase",
	Long: `Classify an assistant response into a workflow phase and print the
detection result as JSON.

The response text is taken from the argument, or from stdin when the
argument is "-" or absent.

Examples:
  makalahd detect --current researching "Here is a draft outline: ## Intro ..."
  cat response.txt | makalahd detect --current exploring -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

var detectCurrentPhase string

func init() {
	detectCmd.Flags().StringVar(&detectCurrentPhase, "current", "exploring", "current workflow phase")
}

func runDetect(cmd *cobra.Command, args []string) error {
	text, err := readTextArg(args)
	if err != nil {
		return err
	}

	eng, err := newEngine(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer eng.Close()

	current := workflow.NormalizePhase(detectCurrentPhase, workflow.PhaseExploring)
	result := eng.Detector.Detect(cmd.Context(), text, current)

	return printJSON(cmd.OutOrStdout(), result)
}

var contextCmd = &cobra.Command{
	Use:   "context [metadata.json]",
	Short: "Render the workflow-state context block",
	Long: `Render the workflow-state block for the given workflow metadata and
print it to stdout.

The metadata is read as JSON from the argument file, or from stdin when
the argument is "-" or absent:

  {
    "phase": "drafting",
    "timestamp": "2025-06-01T12:00:00Z",
    "artifacts": {"topic_summary": "...", "word_count": 1200}
  }`,
	Args: cobra.MaximumNArgs(1),
	RunE: runContext,
}

func runContext(cmd *cobra.Command, args []string) error {
	raw, err := readBytesArg(args)
	if err != nil {
		return err
	}

	var md metadataJSON
	if err := json.Unmarshal(raw, &md); err != nil {
		return fmt.Errorf("parsing metadata: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cache := workflow.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	cache.SetMetrics(workflow.NewCacheMetrics())
	builder := workflow.NewBuilder(cache, logger)

	fmt.Fprintln(cmd.OutOrStdout(), builder.GetWorkflowContext(md.toMetadata()))
	return nil
}

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "List the workflow phases in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		type phaseRow struct {
			ID       workflow.Phase `json:"id"`
			Label    string         `json:"label"`
			Progress float64        `json:"progress"`
		}
		rows := make([]phaseRow, 0, len(workflow.PhaseSequence))
		for _, p := range workflow.PhaseSequence {
			def := workflow.Lookup(p)
			rows = append(rows, phaseRow{ID: def.ID, Label: def.Label, Progress: def.Progress})
		}
		return printJSON(cmd.OutOrStdout(), rows)
	},
}

// metadataJSON mirrors workflow.Metadata with JSON tags for CLI input.
type metadataJSON struct {
	Phase     string `json:"phase"`
	Timestamp string `json:"timestamp"`
	Artifacts struct {
		TopicSummary     string `json:"topic_summary"`
		ResearchQuestion string `json:"research_question"`
		References       []struct {
			Author string `json:"author"`
			Year   int    `json:"year"`
		} `json:"references"`
		Keywords          []string `json:"keywords"`
		Outline           string   `json:"outline"`
		CompletedSections []string `json:"completed_sections"`
		WordCount         int      `json:"word_count"`
		TargetWordCount   int      `json:"target_word_count"`
	} `json:"artifacts"`
}

func (m metadataJSON) toMetadata() workflow.Metadata {
	artifacts := workflow.Artifacts{
		TopicSummary:      m.Artifacts.TopicSummary,
		ResearchQuestion:  m.Artifacts.ResearchQuestion,
		Keywords:          m.Artifacts.Keywords,
		Outline:           m.Artifacts.Outline,
		CompletedSections: m.Artifacts.CompletedSections,
		WordCount:         m.Artifacts.WordCount,
		TargetWordCount:   m.Artifacts.TargetWordCount,
	}
	for _, r := range m.Artifacts.References {
		artifacts.References = append(artifacts.References, workflow.Reference{Author: r.Author, Year: r.Year})
	}
	return workflow.Metadata{
		Phase:     workflow.NormalizePhase(m.Phase, workflow.PhaseExploring),
		Artifacts: artifacts,
		Timestamp: m.Timestamp,
	}
}

func readTextArg(args []string) (string, error) {
	raw, err := readBytesArg(args)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func readBytesArg(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	if _, err := os.Stat(args[0]); err == nil {
		return os.ReadFile(args[0])
	}
	return []byte(args[0]), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
