package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"distrust-bot/internal/dm"
	"distrust-bot/internal/domain"
	"distrust-bot/internal/events"
	"distrust-bot/internal/repository"
	"distrust-bot/internal/service"
)

func newPlayCmd() *cobra.Command {
	var (
		playerA string
		playerB string
		timeout time.Duration
		seed    uint64
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one hot-seat match in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := zap.NewNop()
			if verbose {
				logger, _ = zap.NewDevelopment()
			}
			defer logger.Sync()
			return runPlay(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), logger, playerA, playerB, timeout, seed)
		},
	}
	cmd.Flags().StringVar(&playerA, "player-a", "alice", "first player")
	cmd.Flags().StringVar(&playerB, "player-b", "bob", "second player")
	cmd.Flags().DurationVar(&timeout, "timeout", service.DefaultSessionTimeout, "time before the match expires")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "role seed (0 = random)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log engine events")
	return cmd
}

func runPlay(ctx context.Context, in io.Reader, out io.Writer, logger *zap.Logger, playerA, playerB string, timeout time.Duration, seed uint64) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reader := bufio.NewReader(in)

	// En hot-seat el "DM" es la propia terminal: se muestra el rol y se espera Enter.
	reveals := dm.SenderFunc(func(_ context.Context, r domain.Reveal) error {
		fmt.Fprintf(out, "\n%s, make sure only you are looking and press Enter.", r.PlayerID)
		if _, err := reader.ReadString('\n'); err != nil {
			return err
		}
		fmt.Fprintf(out, "Your role: %s\n\n%s\n\nPress Enter to hide it.", r.Role.Title(), r.Instructions)
		if _, err := reader.ReadString('\n'); err != nil {
			return err
		}
		fmt.Fprint(out, strings.Repeat("\n", 40))
		return nil
	})

	concluded := make(chan domain.ResolutionRender, 1)
	publisher := events.PublisherFunc(func(_ context.Context, ev domain.GameEvent) error {
		if ev.Render != nil {
			select {
			case concluded <- *ev.Render:
			default:
			}
		}
		return nil
	})

	store := repository.NewMemorySessionStore()
	gameSvc := service.NewGameService(logger, store, service.NewRandomRoleAssigner(seed), reveals, publisher, timeout)
	defer gameSvc.Shutdown()

	started, err := gameSvc.CreateSession(ctx, playerA, playerB)
	if err != nil {
		return fmt.Errorf("start match: %w", err)
	}
	session := started.Session
	fmt.Fprintf(out, "A game of DISTRUST has started between %s and %s!\n", session.Participants[0], session.Participants[1])
	fmt.Fprintf(out, "Type \"<player> trust\" or \"<player> distrust\". You have %s.\n", timeout)

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := reader.ReadString('\n')
			if strings.TrimSpace(line) != "" {
				lines <- line
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case render := <-concluded:
			printRender(out, render)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				// Sin más entrada: se espera al vencimiento del plazo.
				lines = nil
				continue
			}
			fields := strings.Fields(line)
			if len(fields) < 2 {
				fmt.Fprintln(out, "usage: <player> trust|distrust")
				continue
			}
			action, found := service.ParseActionKeyword(strings.Join(fields[1:], " "))
			if !found {
				fmt.Fprintln(out, "say trust or distrust")
				continue
			}
			_, err := gameSvc.SubmitAction(ctx, domain.ActionEvent{
				SessionID: session.ID,
				ActorID:   fields[0],
				Action:    action,
				Timestamp: time.Now().UTC(),
			})
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrNotAParticipant):
				fmt.Fprintf(out, "%s is not part of this game.\n", fields[0])
			case errors.Is(err, domain.ErrAlreadyResolved):
				fmt.Fprintln(out, "A choice has already been made. The game is over.")
			default:
				return err
			}
		}
	}
}

func printRender(out io.Writer, render domain.ResolutionRender) {
	fmt.Fprintln(out, "\n=== Game Result ===")
	for _, p := range render.Participants {
		fmt.Fprintf(out, "%s: %s\n", p, render.RolesRevealed[p].Title())
	}
	if render.ActorID != "" {
		fmt.Fprintf(out, "Action taken: %s pressed %s.\n", render.ActorID, render.Action.Title())
	}
	fmt.Fprintln(out, render.Headline)
}
