package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/TobiSchelling/ChatReport/internal/compose"
	"github.com/TobiSchelling/ChatReport/internal/config"
	"github.com/TobiSchelling/ChatReport/internal/database"
	"github.com/TobiSchelling/ChatReport/internal/export"
	"github.com/TobiSchelling/ChatReport/internal/extract"
	"github.com/TobiSchelling/ChatReport/internal/render"
	"github.com/TobiSchelling/ChatReport/internal/server"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "chatreport",
	Short:   "Readable reports from LLM chat output",
	Long:    "ChatReport flattens LLM component-tree responses into text, mines issue counts for charts, and renders reports.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, _, err = config.Resolve(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(conversationCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("chatreport", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/chatreport/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set the report title, lenient JSON handling and server port.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and conversation store status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		conversations, err := db.ListConversations()
		if err != nil {
			return fmt.Errorf("listing conversations: %w", err)
		}
		var turns int
		for _, c := range conversations {
			turns += c.TurnCount
		}

		schema, err := db.SchemaVersion()
		if err != nil {
			return err
		}

		fmt.Printf("Database: %s (schema v%d)\n\n", db.Path(), schema)
		fmt.Println("Conversations:")
		fmt.Printf("  Total: %d\n", len(conversations))
		fmt.Printf("  Turns: %d\n", turns)
		fmt.Println("\nReports:")
		fmt.Printf("  Title: %s\n", cfg.Report.Title)
		fmt.Printf("  Charts: %t\n", cfg.Report.IncludeCharts)
		fmt.Printf("  Lenient JSON: %t\n", cfg.Extract.LenientJSON)
		return nil
	},
}

// --- extract command ---

var showMode bool

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the readable text of an LLM response (stdin when no file or -)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		res := newExtractor().ExtractDetailed(raw)
		if showMode {
			fmt.Fprintf(cmd.ErrOrStderr(), "mode: %s\n", res.Mode)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Text)
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&showMode, "mode", false, "Print the extraction mode to stderr")
}

// --- report command ---

var (
	reportFormat string
	reportOut    string
	reportSource string
	reportTitle  string
	noCharts     bool
)

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Build a report from an LLM response (stdin when no file or -)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(reportFormat)
		if err != nil {
			return err
		}
		raw, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		rep, err := newExporter().BuildResponse(context.Background(), raw)
		if err != nil {
			return err
		}
		rep.Source = reportSource
		if reportSource == "" && len(args) == 1 && args[0] != "-" {
			rep.Source = filepath.Base(args[0])
		}

		printSteps(rep.Steps)
		return writeReport(cmd.OutOrStdout(), format, rep, reportOut)
	},
}

func init() {
	addReportFlags(reportCmd)
	reportCmd.Flags().StringVar(&reportSource, "source", "", "Source filename shown in the report header")
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&reportFormat, "format", "f", "html", "Output format: html, markdown or json")
	cmd.Flags().StringVarP(&reportOut, "out", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringVar(&reportTitle, "title", "", "Override the report title")
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "Skip chart mining")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, newExporter(), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

// --- conversation command ---

var conversationCmd = &cobra.Command{
	Use:     "conversation",
	Aliases: []string{"conv"},
	Short:   "Manage stored conversations",
}

var convSource string

var conversationNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a conversation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		title := ""
		if len(args) == 1 {
			title = args[0]
		}
		var source *string
		if convSource != "" {
			source = &convSource
		}

		id, err := db.CreateConversation(title, source)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var conversationAddCmd = &cobra.Command{
	Use:   "add [id] [user|assistant] [file]",
	Short: "Append a turn to a conversation (content from stdin when no file or -)",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		content, err := readInput(cmd.InOrStdin(), args[2:])
		if err != nil {
			return err
		}
		if strings.TrimSpace(content) == "" {
			return fmt.Errorf("empty turn content")
		}

		pos, err := db.AppendTurn(args[0], args[1], content)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s turn %d to %s\n", args[1], pos+1, args[0])
		return nil
	},
}

var conversationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		items, err := db.ListConversations()
		if err != nil {
			return err
		}

		if len(items) == 0 {
			fmt.Println("No conversations yet. Create one with: chatreport conversation new")
			return nil
		}

		for _, c := range items {
			fmt.Printf("  %s  %-40s %3d turns\n", c.ID, c.Title, c.TurnCount)
			if c.SourceFilename != nil && *c.SourceFilename != "" {
				fmt.Printf("        source: %s\n", *c.SourceFilename)
			}
		}
		return nil
	},
}

var conversationExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Build a report from a stored conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(reportFormat)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		exporter := newExporter()
		comp, err := compose.NewComposer(db, exporter.Extractor()).ComposeConversation(args[0])
		if err != nil {
			return err
		}

		rep, err := exporter.BuildComposition(context.Background(), comp)
		if err != nil {
			return err
		}

		printSteps(rep.Steps)
		return writeReport(cmd.OutOrStdout(), format, rep, reportOut)
	},
}

var conversationRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Delete a conversation and its turns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		conv, err := db.GetConversation(args[0])
		if err != nil {
			return err
		}
		if conv == nil {
			return fmt.Errorf("conversation %s not found", args[0])
		}

		if err := db.DeleteConversation(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed conversation %s: %s\n", conv.ID, conv.Title)
		return nil
	},
}

func init() {
	conversationNewCmd.Flags().StringVar(&convSource, "source", "", "Source filename the conversation analyses")
	addReportFlags(conversationExportCmd)

	conversationCmd.AddCommand(conversationNewCmd)
	conversationCmd.AddCommand(conversationAddCmd)
	conversationCmd.AddCommand(conversationListCmd)
	conversationCmd.AddCommand(conversationExportCmd)
	conversationCmd.AddCommand(conversationRemoveCmd)
}

func newExtractor() *extract.Extractor {
	return extract.New(cfg.Extract.LenientJSON)
}

func newExporter() *export.Exporter {
	title := cfg.Report.Title
	if reportTitle != "" {
		title = reportTitle
	}
	return export.New(newExtractor(), export.Options{
		Title:         title,
		IncludeCharts: cfg.Report.IncludeCharts && !noCharts,
	})
}

func printSteps(steps []export.StepResult) {
	if !verbose {
		return
	}
	for i, step := range steps {
		log.Printf("Step %d/%d: %s: %s", i+1, len(steps), step.Name, step.Summary)
	}
}

// readInput reads the file named by args[0], or stdin when args is empty or "-".
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

func writeReport(stdout io.Writer, format render.Format, rep *export.Report, out string) error {
	if out == "" {
		return render.Write(stdout, format, rep)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := render.Write(f, format, rep); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s report to %s\n", format, out)
	return nil
}

func openDB() (*database.DB, error) {
	return database.Open(cfg.DatabasePath())
}
