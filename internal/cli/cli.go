// Package cli implements the docgen command-line interface.
//
// Commands render meeting minutes and program reports from JSON or YAML
// records, manage settings profiles and prune stored artifacts. Logging goes
// through charmbracelet/log; --verbose switches to debug level.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-docgen/config"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev"
	commit  string
)

// SetVersion sets the version shown by --version.
func SetVersion(v, c string) {
	if v != "" {
		version = v
	}
	commit = c
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer
	Config config.Config
	Now    func() time.Time

	configPath string
	envFile    string
	verbose    bool
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
			Prefix:          "docgen",
		}),
		Out:    os.Stdout,
		Config: config.Defaults(),
		Now:    time.Now,
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "docgen",
		Short:         "Render Minit Mesyuarat and OPR documents",
		Long:          `docgen renders meeting minutes (Minit Mesyuarat) to DOCX, PDF and XLSX and one page program reports (OPR) to HTML, PDF and PNG.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("docgen %s\ncommit: %s\n", version, commit))

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&c.envFile, "env-file", ".env", "path to a .env file with DOCGEN_* variables")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.minitCommand())
	root.AddCommand(c.oprCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.cleanupCommand())
	root.AddCommand(c.artifactsCommand())
	root.AddCommand(c.profileCommand())

	return root
}

func (c *CLI) setup() error {
	if err := config.LoadEnvFile(c.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if c.verbose {
		level = log.DebugLevel
	}
	c.Logger.SetLevel(level)
	c.Logger.Debug("config loaded", "path", c.configPath, "output", cfg.Output.Dir, "pdf_engine", cfg.Render.PDFEngine)
	return nil
}

func (c *CLI) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
