package command

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// Job kinds accepted in a batch manifest.
const (
	KindMinit = "minit"
	KindOpr   = "opr"
)

// BatchJob is one manifest entry. Input points at a JSON or YAML record,
// relative to the manifest when not absolute.
type BatchJob struct {
	Kind       string        `json:"kind" yaml:"kind"`
	Format     docgen.Format `json:"format" yaml:"format"`
	Print      bool          `json:"print,omitempty" yaml:"print,omitempty"`
	Fragment   bool          `json:"fragment,omitempty" yaml:"fragment,omitempty"`
	Input      string        `json:"input" yaml:"input"`
	UseProfile bool          `json:"useProfile,omitempty" yaml:"useProfile,omitempty"`
}

// BatchLoader loads batch jobs from a source.
type BatchLoader func(ctx context.Context) ([]BatchJob, error)

// BatchCommand renders every job of a manifest through the generate
// handlers. It runs from the CLI or on a cron.
type BatchCommand struct {
	minit      *GenerateMinitHandler
	opr        *GenerateOprHandler
	loader     BatchLoader
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     BatchLimits
	sleep      func(time.Duration)
	baseDir    string
}

// BatchOption customizes batch commands.
type BatchOption func(*BatchCommand)

// BatchLimits bounds batch execution throughput.
type BatchLimits struct {
	MaxJobs     int
	MinInterval time.Duration
}

// WithBatchCLIConfig overrides CLI configuration.
func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cliConfig = cfg
	}
}

// WithBatchCronConfig overrides cron configuration.
func WithBatchCronConfig(cfg gcmd.HandlerConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cronConfig = cfg
	}
}

// WithBatchLimits overrides batch execution limits.
func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.limits = limits
	}
}

// WithBatchBaseDir resolves relative inputs of loader supplied jobs.
func WithBatchBaseDir(dir string) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.baseDir = dir
	}
}

// NewBatchCommand creates a batch render CLI/Cron command.
func NewBatchCommand(minit *GenerateMinitHandler, opr *GenerateOprHandler, loader BatchLoader, opts ...BatchOption) *BatchCommand {
	cmd := &BatchCommand{
		minit:  minit,
		opr:    opr,
		loader: loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"batch"},
			Description: "Render every document listed in a manifest",
			Group:       "documents",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 6 * * *"},
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// Run renders the jobs listed in the manifest at from, or the loader's jobs
// when from is empty. It stops at the first failing job.
func (c *BatchCommand) Run(ctx context.Context, from string) ([]docgen.Artifact, error) {
	if c == nil {
		return nil, errors.New("batch command is nil", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	jobs, baseDir, err := c.loadJobs(ctx, from)
	if err != nil {
		return nil, err
	}

	var artifacts []docgen.Artifact
	for i, job := range jobs {
		if c.limits.MaxJobs > 0 && i >= c.limits.MaxJobs {
			break
		}
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}
		artifact, err := c.runJob(ctx, job, baseDir)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, artifact)
		if c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
	}
	return artifacts, nil
}

// CronHandler renders the loader's jobs.
func (c *BatchCommand) CronHandler() func() error {
	return func() error {
		_, err := c.Run(context.Background(), "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *BatchCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *BatchCommand) CLIHandler() any {
	return &batchCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *BatchCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

func (c *BatchCommand) runJob(ctx context.Context, job BatchJob, baseDir string) (docgen.Artifact, error) {
	input := strings.TrimSpace(job.Input)
	if input == "" {
		return docgen.Artifact{}, errors.New("batch job input is required", errors.CategoryValidation).
			WithTextCode("INPUT_REQUIRED")
	}
	if !filepath.IsAbs(input) && baseDir != "" {
		input = filepath.Join(baseDir, input)
	}

	var artifact docgen.Artifact
	switch strings.ToLower(strings.TrimSpace(job.Kind)) {
	case KindMinit:
		if c.minit == nil {
			return artifact, errors.New("minit handler not configured", errors.CategoryInternal).
				WithTextCode("HANDLER_REQUIRED")
		}
		var req docgen.MinitRequest
		if err := DecodeRecordFile(input, &req); err != nil {
			return artifact, err
		}
		err := c.minit.Execute(ctx, GenerateMinit{Request: req, Format: job.Format, UseProfile: job.UseProfile, Result: &artifact})
		return artifact, err
	case KindOpr:
		if c.opr == nil {
			return artifact, errors.New("opr handler not configured", errors.CategoryInternal).
				WithTextCode("HANDLER_REQUIRED")
		}
		var data docgen.OprData
		if err := DecodeRecordFile(input, &data); err != nil {
			return artifact, err
		}
		err := c.opr.Execute(ctx, GenerateOpr{Data: data, Format: job.Format, Print: job.Print, Fragment: job.Fragment, UseProfile: job.UseProfile, Result: &artifact})
		return artifact, err
	default:
		return artifact, errors.New("unknown batch job kind "+job.Kind, errors.CategoryValidation).
			WithTextCode("KIND_UNSUPPORTED")
	}
}

func (c *BatchCommand) loadJobs(ctx context.Context, from string) ([]BatchJob, string, error) {
	if strings.TrimSpace(from) != "" {
		var jobs []BatchJob
		if err := DecodeRecordFile(from, &jobs); err != nil {
			return nil, "", err
		}
		return jobs, filepath.Dir(from), nil
	}
	if c.loader == nil {
		return nil, "", errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	jobs, err := c.loader(ctx)
	return jobs, c.baseDir, err
}

type batchCLI struct {
	cmd  *BatchCommand
	From string `kong:"name='from',help='Path to a JSON or YAML batch manifest'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	_, err := c.cmd.Run(context.Background(), c.From)
	return err
}

// DecodeRecordFile reads a JSON or YAML file into v. The extension picks
// the decoder; anything other than .yaml or .yml is read as JSON.
func DecodeRecordFile(path string, v any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "read input file failed").
			WithTextCode("INPUT_FILE_READ")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, v)
	default:
		err = json.Unmarshal(content, v)
	}
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "input file is not valid").
			WithTextCode("INPUT_FILE_INVALID")
	}
	return nil
}

// CLIHandler exposes cleanup via CLI.
func (h *CleanupArtifactsHandler) CLIHandler() any {
	return &cleanupCLI{handler: h}
}

// CLIOptions describes cleanup CLI metadata.
func (h *CleanupArtifactsHandler) CLIOptions() gcmd.CLIConfig {
	return gcmd.CLIConfig{
		Path:        []string{"cleanup"},
		Description: "Remove expired document artifacts",
		Group:       "documents",
	}
}

type cleanupCLI struct {
	handler *CleanupArtifactsHandler
}

func (c *cleanupCLI) Run() error {
	if c == nil || c.handler == nil {
		return errors.New("cleanup handler is required", errors.CategoryInternal).
			WithTextCode("CLEANUP_HANDLER_REQUIRED")
	}
	return c.handler.Execute(context.Background(), CleanupArtifacts{})
}
