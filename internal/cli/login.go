package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/auth"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/config"
)

var (
	loginPhone string
	loginToken string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the credentials used to record completions",
	Long: `Store your phone number and access token on this device. Without flags an
interactive form asks for them. PHOENIX_PHONE and PHOENIX_TOKEN, when set, take
precedence over stored credentials.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := auth.NewFileSource(config.ConfigDir()).Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginPhone, "phone", "", "phone number (skips the form together with --token)")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "access token (skips the form together with --phone)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	creds := auth.Credentials{Phone: loginPhone, Token: loginToken}
	if !creds.Complete() {
		if !isTerminal() {
			return errors.New("--phone and --token are required without a terminal")
		}
		var err error
		creds, err = loginForm(creds)
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Login cancelled.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("form error: %w", err)
		}
	}

	return saveCredentials(cmd.OutOrStdout(), auth.NewFileSource(config.ConfigDir()), creds, time.Now())
}

func saveCredentials(out io.Writer, dst *auth.FileSource, creds auth.Credentials, now time.Time) error {
	creds.Phone = strings.TrimSpace(creds.Phone)
	creds.Token = strings.TrimSpace(creds.Token)
	if !creds.Complete() {
		return errors.New("phone and token are both required")
	}
	if !auth.Usable(creds.Token, now) {
		return errors.New("token has expired; request a new one and try again")
	}
	if err := dst.Save(creds); err != nil {
		return err
	}
	fmt.Fprintf(out, "Credentials saved to %s\n", dst.Path)
	return nil
}

func loginForm(initial auth.Credentials) (auth.Credentials, error) {
	phone, token := initial.Phone, initial.Token
	required := func(what string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", what)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Phone").
				Description("The phone number of your Phoenix account").
				Placeholder("e.g., 09121234567").
				Value(&phone).
				Validate(required("phone")),

			huh.NewInput().
				Title("Token").
				Description("Access token from the Phoenix app").
				EchoMode(huh.EchoModePassword).
				Value(&token).
				Validate(required("token")),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return auth.Credentials{}, err
	}
	return auth.Credentials{Phone: phone, Token: token}, nil
}
