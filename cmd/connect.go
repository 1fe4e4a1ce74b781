package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tribly-hq/dashboard-cli/internal/gbpauth"
	"github.com/tribly-hq/dashboard-cli/internal/validate"
)

var (
	connectName    string
	connectPhone   string
	connectPlaceID string
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a Google Business Profile via WhatsApp authorization",
}

var connectStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Create an authorization session and wait for the owner's grant",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validate.Required("name", connectName); err != nil {
			return err
		}
		if err := validate.Phone(connectPhone); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		poller := newPoller(env)
		results := make(chan gbpauth.Result, 1)
		poller.OnResult(func(r gbpauth.Result) { results <- r })

		link, err := poller.Start(ctx, connectBusiness())
		if err != nil {
			return err
		}

		fmt.Println("Send this link to the business owner on WhatsApp:")
		fmt.Println(link)
		fmt.Println("\nWaiting for authorization (Ctrl-C detaches; `connect resume` picks it back up)...")

		return waitForResult(ctx, poller, results)
	},
}

var connectResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume waiting on a previously started authorization",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		poller := newPoller(env)
		results := make(chan gbpauth.Result, 1)
		poller.OnResult(func(r gbpauth.Result) { results <- r })

		resumed, err := poller.Resume(ctx, connectBusiness())
		if err != nil {
			return err
		}
		if !resumed {
			fmt.Println("Nothing to resume: no pending authorization, or the business is already connected.")
			return nil
		}

		fmt.Println("Resumed. Waiting for authorization...")
		return waitForResult(ctx, poller, results)
	},
}

var connectResendCmd = &cobra.Command{
	Use:   "resend",
	Short: "Print the WhatsApp link for the pending authorization again",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		b := connectBusiness()
		sessionID, ok, err := env.Store.AuthSessionID(ctx, b.Key())
		if err != nil {
			return eris.Wrap(err, "read pending session")
		}
		if !ok {
			return eris.New("no pending authorization for this business")
		}

		link := gbpauth.WhatsAppLink(b.Phone, b.Name, gbpauth.AuthLink(cfg.App.BaseURL, sessionID, b.Name))
		fmt.Println(link)
		return nil
	},
}

var connectCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the pending authorization",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.ClearAuthSession(ctx, connectBusiness().Key()); err != nil {
			return eris.Wrap(err, "clear pending session")
		}
		fmt.Println("Authorization request cancelled.")
		return nil
	},
}

func connectBusiness() gbpauth.Business {
	return gbpauth.Business{
		Name:    connectName,
		Phone:   connectPhone,
		PlaceID: connectPlaceID,
	}
}

func newPoller(env *appEnv) *gbpauth.Poller {
	return gbpauth.NewPoller(env.Client, env.Store, nil, gbpauth.Config{
		Interval:   time.Duration(cfg.Poller.IntervalSecs) * time.Second,
		Ceiling:    time.Duration(cfg.Poller.CeilingMins) * time.Minute,
		AppBaseURL: cfg.App.BaseURL,
	})
}

// waitForResult blocks until the watch ends or the user detaches. A
// detach stops the timers but keeps the persisted session id so resume
// works on the next run.
func waitForResult(ctx context.Context, poller *gbpauth.Poller, results <-chan gbpauth.Result) error {
	select {
	case <-ctx.Done():
		poller.Stop()
		zap.L().Info("detached from authorization watch")
		fmt.Println("\nDetached. Run `connect resume` to keep waiting.")
		return nil
	case res := <-results:
		fmt.Println(res.Message)
		if res.Outcome != gbpauth.OutcomeCompleted {
			return eris.Errorf("authorization %s", res.Outcome)
		}
		return nil
	}
}

func init() {
	connectCmd.PersistentFlags().StringVar(&connectName, "name", "", "business name (required)")
	connectCmd.PersistentFlags().StringVar(&connectPhone, "phone", "", "owner's WhatsApp phone number (required)")
	connectCmd.PersistentFlags().StringVar(&connectPlaceID, "place-id", "", "Google place id")
	_ = connectCmd.MarkPersistentFlagRequired("name")
	_ = connectCmd.MarkPersistentFlagRequired("phone")
	connectCmd.AddCommand(connectStartCmd, connectResumeCmd, connectResendCmd, connectCancelCmd)
	rootCmd.AddCommand(connectCmd)
}
