package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/compiler"
	"resume-builder/internal/generation"
	"resume-builder/internal/latex"
	"resume-builder/internal/results"
)

const pipelineTimeout = 5 * time.Minute

type outputFlags struct {
	pdfPath   string
	latexPath string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.pdfPath, "out", "o", "resume.pdf", "Where to write the compiled PDF")
	cmd.Flags().StringVar(&o.latexPath, "latex-out", "", "Optionally write the sanitized LaTeX here")
}

func newGenerateCmd() *cobra.Command {
	var templatePath, dataPath string
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill a LaTeX template with resume data and compile it",
		Long: `Fill a LaTeX template with JSON resume data using the configured model,
then compile it to PDF.

Example:
  resumectl generate --template modern.tex --data me.json -o me.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := os.ReadFile(templatePath)
			if err != nil {
				return pkgerrors.Wrapf(err, "read template %s", templatePath)
			}
			data, err := os.ReadFile(dataPath)
			if err != nil {
				return pkgerrors.Wrapf(err, "read data %s", dataPath)
			}
			if !json.Valid(data) {
				return pkgerrors.Errorf("%s is not valid JSON", dataPath)
			}
			return runPipeline(cmd, out, func(ctx context.Context, svc *generation.Service) (generation.Response, error) {
				return svc.Fill(ctx, generation.FillRequest{Template: string(tpl), UserData: data})
			})
		},
	}
	cmd.Flags().StringVar(&templatePath, "template", "", "LaTeX template file")
	cmd.Flags().StringVar(&dataPath, "data", "", "Resume data JSON file")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("data")
	out.register(cmd)
	return cmd
}

func newEditCmd() *cobra.Command {
	var latexPath, instruction string
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Apply a free-text instruction to a LaTeX resume",
		Long: `Rewrite an existing LaTeX resume according to an instruction and compile it.

Example:
  resumectl edit --latex me.tex --prompt "Move education above experience" -o me.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(latexPath)
			if err != nil {
				return pkgerrors.Wrapf(err, "read latex %s", latexPath)
			}
			return runPipeline(cmd, out, func(ctx context.Context, svc *generation.Service) (generation.Response, error) {
				return svc.Edit(ctx, generation.EditRequest{Template: string(src), UserPrompt: instruction})
			})
		},
	}
	cmd.Flags().StringVar(&latexPath, "latex", "", "LaTeX document to edit")
	cmd.Flags().StringVar(&instruction, "prompt", "", "Edit instruction")
	_ = cmd.MarkFlagRequired("latex")
	_ = cmd.MarkFlagRequired("prompt")
	out.register(cmd)
	return cmd
}

type pipelineFunc func(ctx context.Context, svc *generation.Service) (generation.Response, error)

func runPipeline(cmd *cobra.Command, out outputFlags, run pipelineFunc) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	client, closeLLM, err := bootstrap.NewLLMClient(ctx, cfg)
	if err != nil {
		return pkgerrors.Wrap(err, "generation provider")
	}
	if closeLLM != nil {
		defer closeLLM()
	}

	stderr := cmd.ErrOrStderr()
	svc := generation.NewService(client, bootstrap.NewCompiler(cfg), results.NewMemoryStore(cfg.ResultTTL), nil,
		generation.WithStageObserver(func(stage generation.Stage) {
			if verbose {
				fmt.Fprintf(stderr, "stage: %s\n", stage)
			}
		}),
	)

	resp, err := run(ctx, svc)
	if err != nil {
		return describeFailure(stderr, err)
	}
	return writeOutputs(cmd.OutOrStdout(), out, resp)
}

// describeFailure prints the diagnostics the HTTP surface would return.
func describeFailure(w io.Writer, err error) error {
	var invalid *latex.InvalidDocumentError
	var compileErr *compiler.CompileError
	switch {
	case errors.As(err, &invalid):
		if invalid.Raw != "" {
			fmt.Fprintf(w, "model output:\n%s\n", invalid.Raw)
		}
		return pkgerrors.Wrap(err, "model returned invalid LaTeX code")
	case errors.As(err, &compileErr):
		fmt.Fprintf(w, "compiler output:\n%s\n", compileErr.Body)
		return pkgerrors.Wrap(err, "render server failed")
	default:
		return pkgerrors.Wrapf(err, "pipeline failed at %s", generation.StageOf(err))
	}
}

func writeOutputs(w io.Writer, out outputFlags, resp generation.Response) error {
	pdf, err := base64.StdEncoding.DecodeString(resp.PDF)
	if err != nil {
		return pkgerrors.Wrap(err, "decode pdf")
	}
	if err := os.WriteFile(out.pdfPath, pdf, 0o644); err != nil {
		return pkgerrors.Wrapf(err, "write %s", out.pdfPath)
	}
	fmt.Fprintf(w, "wrote %s (%d bytes)\n", out.pdfPath, len(pdf))
	if out.latexPath != "" {
		if err := os.WriteFile(out.latexPath, []byte(resp.Latex), 0o644); err != nil {
			return pkgerrors.Wrapf(err, "write %s", out.latexPath)
		}
		fmt.Fprintf(w, "wrote %s\n", out.latexPath)
	}
	return nil
}
