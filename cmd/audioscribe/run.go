package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"audioscribe/pkg/config"
	"audioscribe/pkg/domain"
	"audioscribe/pkg/httpclient"
	"audioscribe/pkg/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var modelPath string
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "run [url]",
		Short: "Acquire audio from a URL and transcribe it",
		Long: "Classify the URL, download or extract its audio into the output directory and\n" +
			"write <name>_transcription.txt next to it. Prompts for the URL when none is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyRunOverrides(cfg, outputDir, modelPath); err != nil {
				return err
			}

			var rawURL string
			if len(args) == 1 {
				rawURL = args[0]
			} else {
				rawURL, err = promptURL(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			opts := serviceOptions{}
			if !noProgress && isTerminalWriter(cmd.ErrOrStderr()) {
				opts.progress = newProgressBar
			}
			svc := buildServices(cfg, logger, opts)

			result := svc.pipeline.Run(cmd.Context(), pipeline.Request{URL: rawURL, OutputDir: cfg.Paths.OutputDir})
			fmt.Fprintln(cmd.OutOrStdout(), renderResult(result))
			if result.Failure != nil {
				if errors.Is(cmd.Context().Err(), context.Canceled) {
					return cmd.Context().Err()
				}
				return result.Failure
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for audio and transcript (overrides paths.output_dir)")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "whisper.cpp model file (overrides paths.model_path)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the download progress bar")
	return cmd
}

func applyRunOverrides(cfg *config.Config, outputDir, modelPath string) error {
	if dir := strings.TrimSpace(outputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	if model := strings.TrimSpace(modelPath); model != "" {
		expanded, err := config.ExpandPath(model)
		if err != nil {
			return fmt.Errorf("resolve model path: %w", err)
		}
		cfg.Paths.ModelPath = expanded
	}
	return nil
}

// promptURL reads one URL from in, writing the prompt to out.
func promptURL(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter the URL: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read url: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no URL given")
	}
	return line, nil
}

func newProgressBar(total int64, description string) httpclient.Progress {
	return progressbar.DefaultBytes(total, description)
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func renderResult(result domain.PipelineResult) string {
	status := "Transcribed"
	if result.Failure != nil {
		status = fmt.Sprintf("Failed after %s (%s)", result.Reached, result.Failure.Kind)
	}

	rows := [][]string{
		{"URL", result.Source.Raw},
		{"Source", result.Source.Kind.String()},
		{"Status", status},
	}
	if result.Audio != nil {
		rows = append(rows, []string{"Audio", result.Audio.LocalPath})
		if result.Audio.SizeHint > 0 {
			rows = append(rows, []string{"Size", humanize.Bytes(uint64(result.Audio.SizeHint))})
		}
	}
	if result.Transcript != nil {
		rows = append(rows,
			[]string{"Transcript", result.Transcript.OutputPath},
			[]string{"Words", humanize.Comma(int64(len(strings.Fields(result.Transcript.Body))))},
		)
	}
	return renderKeyValues(rows)
}
