package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tribly-hq/dashboard-cli/internal/validate"
	"github.com/tribly-hq/dashboard-cli/pkg/tribly"
)

var (
	loginEmail    string
	loginPassword string

	resetEmail    string
	resetPIN      string
	resetPassword string
	resetConfirm  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validate.Required("email", loginEmail); err != nil {
			return err
		}
		if err := validate.Required("password", loginPassword); err != nil {
			return err
		}

		ctx := cmd.Context()
		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		creds, err := env.Client.Login(ctx, loginEmail, loginPassword)
		if err != nil {
			return eris.Wrap(err, "login")
		}
		if err := env.Store.SaveCredentials(ctx, *creds); err != nil {
			return eris.Wrap(err, "store credentials")
		}

		fmt.Printf("Signed in as %s (%s).\n", creds.Email, creds.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.ClearCredentials(ctx); err != nil {
			return eris.Wrap(err, "clear credentials")
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Reset the account password with the emailed PIN",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validate.Required("email", resetEmail); err != nil {
			return err
		}
		if err := validate.PIN(resetPIN); err != nil {
			return err
		}
		if err := validate.Required("new password", resetPassword); err != nil {
			return err
		}
		if err := validate.PasswordsMatch(resetPassword, resetConfirm); err != nil {
			return err
		}

		ctx := cmd.Context()
		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Client.ResetPassword(ctx, tribly.ResetPasswordRequest{
			Email:       resetEmail,
			PIN:         resetPIN,
			NewPassword: resetPassword,
		}); err != nil {
			return eris.Wrap(err, "reset password")
		}

		fmt.Println("Password reset. Sign in with the new password.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (required)")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	resetPasswordCmd.Flags().StringVar(&resetEmail, "email", "", "account email (required)")
	resetPasswordCmd.Flags().StringVar(&resetPIN, "pin", "", "4-digit PIN from the reset email (required)")
	resetPasswordCmd.Flags().StringVar(&resetPassword, "new-password", "", "new password (required)")
	resetPasswordCmd.Flags().StringVar(&resetConfirm, "confirm", "", "new password again (required)")
	_ = resetPasswordCmd.MarkFlagRequired("email")
	_ = resetPasswordCmd.MarkFlagRequired("pin")
	_ = resetPasswordCmd.MarkFlagRequired("new-password")
	_ = resetPasswordCmd.MarkFlagRequired("confirm")

	rootCmd.AddCommand(loginCmd, logoutCmd, resetPasswordCmd)
}
