package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"audioscribe/pkg/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and the transcription model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(deps.Tools{
				YTDLP:        cfg.Tools.YTDLP,
				Whisper:      cfg.Tools.Whisper,
				FFmpeg:       cfg.Tools.FFmpeg,
				ConvertToWAV: cfg.Transcription.ConvertToWAV,
			}))
			statuses = append(statuses, deps.CheckFile("model", cfg.Paths.ModelPath, "whisper.cpp ggml model"))

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				rows = append(rows, []string{s.Name, s.Command, yesNo(!s.Optional), yesNo(s.Available), s.Detail})
			}
			out := cmd.OutOrStdout()
			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Dependency", "Command", "Required", "Available", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))

			missing := deps.MissingRequired(statuses)
			if len(missing) == 0 {
				return nil
			}
			names := make([]string, 0, len(missing))
			for _, s := range missing {
				names = append(names, s.Name)
			}
			return fmt.Errorf("missing required dependencies: %s", strings.Join(names, ", "))
		},
	}
}
