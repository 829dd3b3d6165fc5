package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunestream/internal/app"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

type playParams struct {
	shuffle string
}

func newPlayCmd(flags *globalFlags) *cobra.Command {
	params := &playParams{}

	cmd := &cobra.Command{
		Use:   "play [query]",
		Short: "Play a search result or the recommendations without a window",
		Long: "play searches the catalogue (or fetches recommendations when no query is given), " +
			"plays the tracks in order or shuffled, and advances automatically. Press Ctrl-C to stop.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runPlay(ctx, flags, params, strings.Join(args, " "), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&params.shuffle, "shuffle", "", "shuffle mode: off, no_repeat, repeat (default: saved preference)")
	return cmd
}

func runPlay(ctx context.Context, flags *globalFlags, params *playParams, query string, out io.Writer) error {
	cfg, err := flags.load()
	if err != nil {
		return err
	}

	application, err := app.NewApplication(app.Options{Config: cfg, Headless: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}()

	if params.shuffle != "" {
		mode, err := domain.ParseShuffleMode(params.shuffle)
		if err != nil {
			return err
		}
		application.Session().SetShuffleMode(mode)
	}

	bus := application.EventBus()
	subs := []domain.SubscriptionID{
		bus.Subscribe(domain.EventTrackStarted, func(e domain.Event) {
			if started, ok := e.(domain.TrackStartedEvent); ok {
				fmt.Fprintf(out, "> %s\n", started.Track.DisplayName())
			}
		}),
		bus.Subscribe(domain.EventTrackError, func(e domain.Event) {
			if failed, ok := e.(domain.TrackErrorEvent); ok {
				fmt.Fprintf(out, "! %s: %v\n", failed.Track.DisplayName(), failed.Err)
			}
		}),
	}
	defer func() {
		for _, id := range subs {
			bus.Unsubscribe(id)
		}
	}()

	pl, err := application.SearchAndPlay(ctx, query)
	if err != nil && !errors.Is(err, domain.ErrResolutionFailed) {
		return err
	}
	fmt.Fprintf(out, "playing %d tracks from %s (shuffle: %s)\n",
		pl.Len(), pl.SourceTag, application.Session().Snapshot().ShuffleMode.Label())

	// a failed first track is skipped rather than ending the run
	if err != nil {
		if err := application.Session().Next(ctx); err != nil {
			application.Logger().Warn("skipping failed track", "error", err)
		}
	}

	<-ctx.Done()
	fmt.Fprintln(out, "stopping")
	return nil
}
