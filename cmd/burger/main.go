package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"burger/internal/artifact"
	"burger/internal/config"
	"burger/internal/logging"
	"burger/internal/pipeline"
	"burger/internal/storage"
	"burger/internal/toppings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "burger",
		Short: "Identify key classes in obfuscated jars by their string constants",
	}
	configPath string
	dbPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the run history database (SQLite)")

	identifyCmd.Flags().BoolP("verbose", "v", false, "Report every identified unit and skipped entry")
	identifyCmd.Flags().Bool("parallel", false, "Run independent toppings concurrently")
	identifyCmd.Flags().StringP("format", "f", "", "Output format: table or json")
	identifyCmd.Flags().StringSliceP("toppings", "t", nil, "Toppings to run (default: all)")
	identifyCmd.Flags().Bool("save", false, "Store the result set in the run history")

	runsCmd.Flags().IntP("limit", "n", 20, "Number of runs to list (0 for all)")

	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(toppingsCmd)
	rootCmd.AddCommand(runsCmd)
}

// loadConfig loads configuration and applies persistent flag overrides.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.Output.DBPath = dbPath
	}
	return cfg
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}

var identifyCmd = &cobra.Command{
	Use:   "identify [jar]",
	Short: "Run the toppings against a jar and print the identified classes",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		path := cfg.Artifact.Path
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			log.Fatal("No jar given (pass a path or set artifact.path / BURGER_JAR)")
		}

		flags := cmd.Flags()
		if flags.Changed("verbose") {
			cfg.Pipeline.Verbose, _ = flags.GetBool("verbose")
		}
		if flags.Changed("parallel") {
			cfg.Pipeline.Parallel, _ = flags.GetBool("parallel")
		}
		if flags.Changed("format") {
			cfg.Output.Format, _ = flags.GetString("format")
			if err := cfg.Validate(); err != nil {
				log.Fatalf("Invalid flags: %v", err)
			}
		}
		if flags.Changed("toppings") {
			cfg.Pipeline.Toppings, _ = flags.GetStringSlice("toppings")
		}
		save, _ := flags.GetBool("save")

		logger := newLogger(cfg)

		jar, err := artifact.OpenJar(path)
		if err != nil {
			log.Fatalf("Failed to open jar: %v", err)
		}
		defer jar.Close()

		jsonOut := cfg.Output.Format == "json"
		status := !jsonOut && isTerminal(os.Stdout)
		if status {
			fmt.Printf("🍔 Analyzing %s...\n", path)
		}

		start := time.Now()
		result, err := analyze(context.Background(), path, jar, analyzeOptions{
			Toppings: cfg.Pipeline.Toppings,
			Parallel: cfg.Pipeline.Parallel,
			Verbose:  cfg.Pipeline.Verbose,
			Logger:   logger,
		})
		if result == nil {
			log.Fatalf("Analysis failed: %v", err)
		}
		if err != nil {
			logger.Error("analysis incomplete", slog.Any("error", err))
		}

		if jsonOut {
			data, jerr := result.Report.JSON()
			if jerr != nil {
				log.Fatalf("Failed to encode report: %v", jerr)
			}
			fmt.Println(string(data))
		} else {
			fmt.Println(result.Report.Table())
			if cfg.Pipeline.Verbose {
				fmt.Println(result.Report.ToppingTable())
			}
			if status {
				fmt.Printf("✅ Done in %v.\n", time.Since(start).Round(time.Millisecond))
			}
		}

		if save {
			store, serr := storage.NewSQLiteStore(cfg.Output.DBPath)
			if serr != nil {
				log.Fatalf("Failed to initialize database: %v", serr)
			}

			expected := len(result.Report.Classes) + len(result.Report.Missing)
			run := storage.FromSet(result.Report.Artifact, expected, result.Set)
			serr = store.SaveRun(context.Background(), run)
			store.Close()
			if serr != nil {
				log.Fatalf("Failed to save run: %v", serr)
			}
			if status {
				fmt.Printf("💾 Saved run %s to %s\n", run.ID, cfg.Output.DBPath)
			}
		}

		if err != nil {
			jar.Close()
			os.Exit(1)
		}
	},
}

var toppingsCmd = &cobra.Command{
	Use:   "toppings",
	Short: "List available toppings in execution order",
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := pipeline.NewPlan(toppings.All()...)
		if err != nil {
			log.Fatalf("Invalid topping set: %v", err)
		}

		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"#", "Topping", "Provides", "Depends"})
		for i, d := range plan.Descriptors() {
			depends := strings.Join(d.Depends, ", ")
			if depends == "" {
				depends = "-"
			}
			tw.AppendRow(table.Row{strconv.Itoa(i + 1), d.Name, strings.Join(d.Provides, "\n"), depends})
		}
		fmt.Println(tw.Render())
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs [id]",
	Short: "List stored runs, or show the classes of one run",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store, err := storage.NewSQLiteStore(cfg.Output.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		ctx := context.Background()
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)

		if len(args) == 1 {
			run, err := store.LoadRun(ctx, args[0])
			if err != nil {
				log.Fatalf("Failed to load run: %v", err)
			}
			fmt.Printf("📦 %s (%s)\n", run.Artifact, run.CreatedAt.Local().Format(time.RFC3339))
			tw.AppendHeader(table.Row{"Label", "Unit"})
			for _, label := range run.Order {
				tw.AppendRow(table.Row{label, run.Classes[label]})
			}
			fmt.Println(tw.Render())
			return
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.ListRuns(ctx, limit)
		if err != nil {
			log.Fatalf("Failed to list runs: %v", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs stored yet.")
			return
		}
		tw.AppendHeader(table.Row{"ID", "Artifact", "Created", "Found"})
		for _, r := range runs {
			tw.AppendRow(table.Row{r.ID, r.Artifact, r.CreatedAt.Local().Format(time.RFC3339), fmt.Sprintf("%d/%d", r.Found, r.Expected)})
		}
		fmt.Println(tw.Render())
	},
}

// isTerminal reports whether w is an interactive terminal; status lines are
// suppressed when output is piped.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
