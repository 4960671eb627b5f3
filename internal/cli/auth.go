package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"orl-assistant/internal/dto"
	"orl-assistant/internal/service"
	"orl-assistant/internal/session"
	"orl-assistant/internal/xano"

	"github.com/spf13/cobra"
)

const passwordEnv = "ORL_PASSWORD"

func (a *app) loginCmd() *cobra.Command {
	var req dto.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.prompt(cmd, "Email", &req.Email); err != nil {
				return err
			}
			if req.Password == "" {
				req.Password = os.Getenv(passwordEnv)
			}
			if err := a.prompt(cmd, "Password", &req.Password); err != nil {
				return err
			}

			var res *dto.AuthResponse
			err := withSpinner(cmd, "Signing in...", func() (err error) {
				res, err = a.container.Auth.Login(cmd.Context(), &req)
				return err
			})
			if err != nil {
				return describeError(err)
			}
			success.Fprintf(cmd.OutOrStdout(), "Signed in (user %s)\n", res.UserID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password (or "+passwordEnv+")")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var req dto.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a practitioner account",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, field := range []struct {
				label string
				value *string
			}{
				{"Name", &req.Name},
				{"Email", &req.Email},
			} {
				if err := a.prompt(cmd, field.label, field.value); err != nil {
					return err
				}
			}
			if req.Password == "" {
				req.Password = os.Getenv(passwordEnv)
			}
			if err := a.prompt(cmd, "Password", &req.Password); err != nil {
				return err
			}
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = req.Password
			}

			var res *dto.AuthResponse
			err := withSpinner(cmd, "Creating account...", func() (err error) {
				res, err = a.container.Auth.Register(cmd.Context(), &req)
				return err
			})
			if err != nil {
				return describeError(err)
			}
			success.Fprintf(cmd.OutOrStdout(), "Account created, signed in (user %s)\n", res.UserID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "Full name")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password (or "+passwordEnv+")")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "Password confirmation (defaults to --password)")
	cmd.Flags().StringVar(&req.RPPS, "rpps", "", "11-digit RPPS number")
	cmd.Flags().StringVar(&req.Specialty, "specialty", dto.DefaultSpecialty, "Medical specialty")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := a.container.Session.Token(); !ok {
				notice.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			err := withSpinner(cmd, "Signing out...", func() error {
				return a.container.Auth.Logout(cmd.Context())
			})
			if err != nil {
				notice.Fprintf(cmd.OutOrStdout(), "Signed out locally; the backend did not confirm: %v\n", err)
				return nil
			}
			success.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in practitioner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := a.container.Session.Token(); !ok {
				return errors.New("not signed in, run `orl login`")
			}
			var user *dto.User
			err := withSpinner(cmd, "Loading profile...", func() (err error) {
				user, err = a.container.Auth.Me(cmd.Context())
				return err
			})
			if errors.Is(err, xano.ErrUnauthorized) {
				return errors.New("session rejected by the backend")
			}
			if err != nil {
				return describeError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
			fmt.Fprintf(out, "  specialty  %s\n", user.Specialty)
			if user.RPPS != nil && *user.RPPS != "" {
				fmt.Fprintf(out, "  rpps       %s\n", *user.RPPS)
			}
			fmt.Fprintf(out, "  role       %s\n", user.Role)
			if !user.IsActive {
				notice.Fprintln(out, "  account is disabled")
			}
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session token is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			printStatus(cmd, a.container.Session.Status(time.Now()), a.cfg.Storage.Driver)
			return nil
		},
	}
}

func printStatus(cmd *cobra.Command, st session.Status, driver string) {
	out := cmd.OutOrStdout()
	switch {
	case !st.Authenticated:
		notice.Fprintln(out, "Not signed in.")
	case st.Expired:
		notice.Fprintf(out, "Token expired at %s, run `orl login`.\n", st.ExpiresAt.Local().Format(time.RFC1123))
	default:
		success.Fprint(out, "Signed in.")
		if st.ExpiresAt != nil {
			fmt.Fprintf(out, " Token valid until %s.", st.ExpiresAt.Local().Format(time.RFC1123))
		}
		fmt.Fprintln(out)
	}
	faint.Fprintf(out, "storage: %s\n", driver)
}

func (a *app) forgotPasswordCmd() *cobra.Command {
	var req dto.ForgotPasswordRequest
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Email a password reset link",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.prompt(cmd, "Email", &req.Email); err != nil {
				return err
			}
			err := withSpinner(cmd, "Requesting reset link...", func() error {
				return a.container.Auth.RequestPasswordReset(cmd.Context(), &req)
			})
			if err != nil {
				return describeError(err)
			}
			success.Fprintln(cmd.OutOrStdout(), "If the account exists, a reset link is on its way.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "Account email")
	return cmd
}

func (a *app) resetPasswordCmd() *cobra.Command {
	var (
		link dto.MagicLinkRequest
		req  dto.UpdatePasswordRequest
	)
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Open the emailed reset link and choose a new password",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withSpinner(cmd, "Checking link...", func() error {
				return a.container.Auth.MagicLinkLogin(cmd.Context(), &link)
			})
			if errors.Is(err, service.ErrInvalidLink) {
				return errors.New("the link is invalid or expired, request a new one with `orl forgot-password`")
			}
			if err != nil {
				return describeError(err)
			}

			if req.Password == "" {
				req.Password = os.Getenv(passwordEnv)
			}
			if err := a.prompt(cmd, "New password", &req.Password); err != nil {
				return err
			}
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = req.Password
			}

			err = withSpinner(cmd, "Updating password...", func() error {
				return a.container.Auth.UpdatePassword(cmd.Context(), &req)
			})
			if err != nil {
				return describeError(err)
			}
			success.Fprintln(cmd.OutOrStdout(), "Password updated, you are signed in.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&link.Email, "email", "e", "", "Email the link was sent to")
	cmd.Flags().StringVar(&link.MagicToken, "magic-token", "", "magic_token parameter of the link")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "New password (or "+passwordEnv+")")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "Password confirmation (defaults to --password)")
	return cmd
}
