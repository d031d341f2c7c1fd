package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docgen/command"
	"github.com/goliatone/go-docgen/config"
	"github.com/goliatone/go-docgen/docgen"
)

func (c *CLI) minitCommand() *cobra.Command {
	var (
		format     string
		useProfile bool
	)
	cmd := &cobra.Command{
		Use:   "minit <record.json|record.yaml>",
		Short: "Render meeting minutes to DOCX, PDF or an XLSX attendance register",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req docgen.MinitRequest
			if err := command.DecodeRecordFile(args[0], &req); err != nil {
				return err
			}
			if req.Font == "" && !useProfile {
				req.Font = docgen.Font(c.Config.Render.Font)
			}
			return c.withApp(cmd.Context(), useProfile, func(ctx context.Context, a *app) error {
				var artifact docgen.Artifact
				err := a.minit.Execute(ctx, command.GenerateMinit{
					Request:    req,
					Format:     docgen.Format(strings.ToLower(format)),
					UseProfile: useProfile,
					Result:     &artifact,
				})
				if err != nil {
					return err
				}
				return c.report(a, artifact)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(docgen.FormatDOCX), "output format: docx, pdf or xlsx")
	cmd.Flags().BoolVarP(&useProfile, "profile", "p", false, "fill blanks from the current settings profile")
	return cmd
}

func (c *CLI) oprCommand() *cobra.Command {
	var (
		format      string
		printDialog bool
		fragment    bool
		useProfile  bool
		baseURL     string
		photos      []string
	)
	cmd := &cobra.Command{
		Use:   "opr <record.json|record.yaml>",
		Short: "Render a one page report to HTML, PDF, PNG or a JSON job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data docgen.OprData
			if err := command.DecodeRecordFile(args[0], &data); err != nil {
				return err
			}
			for _, path := range photos {
				src, err := readImageFile(path, docgen.UploadPhoto)
				if err != nil {
					return err
				}
				data.GambarBase64 = append(data.GambarBase64, src)
			}
			if data.Font == "" && !useProfile {
				data.Font = docgen.Font(c.Config.Render.Font)
			}
			return c.withApp(cmd.Context(), useProfile, func(ctx context.Context, a *app) error {
				if cmd.Flags().Changed("base-url") {
					a.service.BaseURL = baseURL
				}
				var artifact docgen.Artifact
				err := a.opr.Execute(ctx, command.GenerateOpr{
					Data:       data,
					Format:     docgen.Format(strings.ToLower(format)),
					Print:      printDialog,
					Fragment:   fragment,
					UseProfile: useProfile,
					Result:     &artifact,
				})
				if err != nil {
					return c.suggestFormat(err, docgen.Format(strings.ToLower(format)))
				}
				return c.report(a, artifact)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(docgen.FormatPDF), "output format: html, pdf, png or json")
	cmd.Flags().BoolVar(&printDialog, "print", false, "html that opens the print dialog when loaded")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "html with only the styles and body markup, for embedding")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "resolve relative links against this URL when printing to pdf or png")
	cmd.Flags().BoolVarP(&useProfile, "profile", "p", false, "fill branding from the current settings profile")
	cmd.Flags().StringArrayVar(&photos, "photo", nil, "add a photo file to the gallery (repeatable)")
	return cmd
}

func (c *CLI) batchCommand() *cobra.Command {
	var (
		useProfile bool
		limit      int
		interval   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "batch <manifest.json|manifest.yaml>",
		Short: "Render every record listed in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), useProfile, func(ctx context.Context, a *app) error {
				batch := command.NewBatchCommand(a.minit, a.opr, nil,
					command.WithBatchLimits(command.BatchLimits{MaxJobs: limit, MinInterval: interval}))
				artifacts, err := batch.Run(ctx, args[0])
				for _, artifact := range artifacts {
					if rerr := c.report(a, artifact); rerr != nil {
						return rerr
					}
				}
				if err != nil {
					return err
				}
				c.Logger.Info("batch finished", "documents", len(artifacts))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&useProfile, "profile", "p", false, "open the settings profile for jobs that ask for it")
	cmd.Flags().IntVar(&limit, "limit", 0, "render at most this many jobs (0 for all)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "pause between jobs")
	return cmd
}

func (c *CLI) cleanupCommand() *cobra.Command {
	var retention time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove artifacts older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), false, func(ctx context.Context, a *app) error {
				if cmd.Flags().Changed("retention") {
					a.cleanup.Retention = retention
				}
				var removed int
				if err := a.cleanup.Execute(ctx, command.CleanupArtifacts{Result: &removed}); err != nil {
					return err
				}
				c.Logger.Info("cleanup finished", "removed", removed, "retention", a.cleanup.Retention)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&retention, "retention", 0, "override the configured retention")
	return cmd
}

func (c *CLI) artifactsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts",
		Short: "List stored artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), false, func(ctx context.Context, a *app) error {
				refs, err := a.store.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(c.Out, 0, 4, 2, ' ', 0)
				for _, ref := range refs {
					fmt.Fprintf(w, "%s\t%d\t%s\n", ref.Key, ref.Meta.Size, ref.Meta.CreatedAt.Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	}
}

func (c *CLI) withApp(ctx context.Context, withSettings bool, fn func(ctx context.Context, a *app) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := c.open(ctx, withSettings)
	if err != nil {
		return err
	}
	runErr := fn(ctx, a)
	if err := a.Close(context.WithoutCancel(ctx)); err != nil {
		c.Logger.Error("close failed", "err", err)
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// suggestFormat appends the format to try instead when err says the requested
// one cannot be produced with the configured engine.
func (c *CLI) suggestFormat(err error, format docgen.Format) error {
	if !docgen.IsUnsupported(err) {
		return err
	}
	hint := "--format html --print and save as PDF from the browser"
	if format == docgen.FormatPNG && c.Config.Render.PDFEngine != config.EngineNone {
		hint = "--format pdf"
	}
	c.Logger.Warn("format not available", "format", format, "engine", c.Config.Render.PDFEngine)
	return fmt.Errorf("%w (try %s)", err, hint)
}

// report prints where the artifact was written.
func (c *CLI) report(a *app, artifact docgen.Artifact) error {
	if artifact.Ref == nil {
		_, err := fmt.Fprintln(c.Out, artifact.Filename)
		return err
	}
	path, err := a.store.Path(artifact.Ref.Key)
	if err != nil {
		return err
	}
	c.Logger.Debug("artifact stored", "key", artifact.Ref.Key, "bytes", len(artifact.Data))
	_, err = fmt.Fprintln(c.Out, path)
	return err
}
