package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunestream/internal/adapter/resolver/httpresolver"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
	"github.com/tejashwikalptaru/tunestream/internal/service"
)

type downloadParams struct {
	output string
}

func newDownloadCmd(flags *globalFlags) *cobra.Command {
	params := &downloadParams{}

	cmd := &cobra.Command{
		Use:   "download <reference>",
		Short: "Resolve a track for download and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			log := logger.NewLogger(logger.FromSettings(cfg.LogLevel, cfg.LogFormat))
			resolver, err := httpresolver.New(log, httpresolver.Config{
				BaseURL: cfg.Resolver.BaseURL,
				Timeout: cfg.Resolver.Timeout,
			}, &http.Client{})
			if err != nil {
				return err
			}

			start := time.Now()
			n, path, err := runDownload(cmd.Context(), resolver, args[0], params.output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s to %s in %s\n",
				humanize.IBytes(uint64(n)), path, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&params.output, "output", "o", "", "output file (default <reference>.audio in the working directory)")
	return cmd
}

// runDownload resolves reference with download purpose and writes it to output.
func runDownload(ctx context.Context, resolver ports.TrackResolver, reference, output string) (int, string, error) {
	audio, err := service.FetchForDownload(ctx, resolver, domain.Track{Reference: reference})
	if err != nil {
		return 0, "", err
	}

	if output == "" {
		output = filepath.Base(filepath.Clean(reference)) + ".audio"
	}
	if err := os.WriteFile(output, audio, 0o644); err != nil {
		return 0, "", fmt.Errorf("write %s: %w", output, err)
	}
	return len(audio), output, nil
}
