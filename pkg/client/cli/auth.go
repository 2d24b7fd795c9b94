package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"car-catalog/pkg/client/session"
)

func newSignUpCmd(app *App) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "sign-up",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := app.password(password)
			if err != nil {
				return err
			}
			c, err := app.anonymousClient()
			if err != nil {
				return err
			}
			if err := c.SignUp(cmd.Context(), name, email, pw); err != nil {
				return err
			}
			app.printf("Account created for %s. Run sign-in to continue.\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

func newSignInCmd(app *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "sign-in",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := app.password(password)
			if err != nil {
				return err
			}
			c, err := app.anonymousClient()
			if err != nil {
				return err
			}
			tok, err := c.SignIn(cmd.Context(), email, pw)
			if err != nil {
				return err
			}

			path, err := app.sessionPath()
			if err != nil {
				return err
			}
			if err := session.Save(path, session.Session{
				Server: app.server(session.Session{}),
				Token:  tok.Token,
				Expire: tok.Expire,
			}); err != nil {
				return err
			}
			app.printf("Signed in as %s until %s.\n", email, tok.Expire.Local().Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

func newSignOutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sign-out",
		Short: "Forget the local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.sessionPath()
			if err != nil {
				return err
			}
			if c, err := app.authedClient(); err == nil {
				// 服务端只清理 cookie，失败不影响本地注销
				_ = c.SignOut(cmd.Context())
			}
			if err := session.Clear(path); err != nil {
				return err
			}
			app.printf("Signed out.\n")
			return nil
		},
	}
}

func newWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user without contacting the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.sessionPath()
			if err != nil {
				return err
			}
			s, err := session.Load(path)
			if errors.Is(err, session.ErrNoSession) {
				app.printf("Not signed in.\n")
				return nil
			}
			if err != nil {
				return err
			}

			claims, err := session.Decode(s.Token)
			if err != nil {
				return err
			}
			app.printf("%s <%s>\n", claims.Name, claims.Email)
			if claims.Expired(time.Now()) {
				app.printf("Session expired, sign in again.\n")
			} else if !claims.ExpiresAt.IsZero() {
				app.printf("Session valid until %s.\n", claims.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}
