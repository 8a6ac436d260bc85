package main

import (
	"context"
	"errors"
	"fmt"

	"lacsverts/internal/api"
	"lacsverts/internal/auth"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	loginWithBrowser bool
	loginCallbackURL string
)

// loginCmd signs in through the identity provider
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through the identity provider",
	Long: `Sign in to Lacs Verts.

This command:
1. Starts a local callback server
2. Opens the identity provider in your browser
3. Exchanges the returned session id with the backend
4. Stores the session for later commands

If the browser cannot reach the callback server, copy the address the
provider redirected to and pass it with --url.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in profile",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().BoolVar(&loginWithBrowser, "browser", false, "Drive a controlled browser and capture the redirect")
	loginCmd.Flags().StringVar(&loginCallbackURL, "url", "", "Complete the login with a callback URL containing #session_id=...")
}

func runLogin(cmd *cobra.Command, args []string) error {
	env, err := bootstrap()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := signalContext(commandContext(cmd))
	defer cancel()

	out := cmd.OutOrStdout()

	if loginCallbackURL != "" {
		profile, err := env.gateway.CompleteURL(ctx, loginCallbackURL)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		fmt.Fprintf(out, "Connecté en tant que %s (%s)\n", profile.Name, profile.Email)
		return nil
	}

	flow := env.authFlow(loginWithBrowser)
	flow.Open = func(u string) error {
		fmt.Fprintf(out, "Ouvrez cette adresse pour vous connecter :\n  %s\n\n", u)
		return auth.OpenBrowser(u)
	}

	fmt.Fprintln(out, "En attente de la connexion... (Ctrl+C pour annuler)")
	profile, err := flow.Login(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("login cancelled")
		}
		logger.Error("login failed", zap.Error(err))
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(out, "Connecté en tant que %s (%s)\n", profile.Name, profile.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	env, err := bootstrap()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.gateway.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Vous êtes déconnecté.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	env, err := bootstrap()
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	sess := env.currentSession()
	if !sess.Authenticated() {
		fmt.Fprintln(out, "Non connecté. Lancez `lacsverts login`.")
		return nil
	}

	profile, err := env.client.Profile(commandContext(cmd), sess.Token())
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Fprintln(out, "Session expirée. Lancez `lacsverts login`.")
			return nil
		}
		return err
	}

	fmt.Fprintf(out, "%s <%s>\n", profile.Name, profile.Email)
	if profile.IsAdmin {
		fmt.Fprintln(out, "Administrateur")
	}
	return nil
}
