package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/isdelr/devlink/internal/client"
	"github.com/isdelr/devlink/internal/models"
)

// readPassword is replaced in tests.
var readPassword = term.ReadPassword

type app struct {
	serverURL   string
	sessionPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "devlinkctl",
		Short:        "Manage your DevLink developer directory from the terminal",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.serverURL, "server", envOr("DEVLINK_URL", "http://localhost:8080"), "DevLink server URL")
	rootCmd.PersistentFlags().StringVar(&a.sessionPath, "session", defaultSessionPath(), "File holding the signed-in session")

	rootCmd.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.meCmd(),
		a.listCmd(),
		a.statsCmd(),
		a.getCmd(),
		a.addCmd(),
		a.editCmd(),
		a.deleteCmd(),
	)
	return rootCmd
}

func (a *app) client() *client.Client {
	return client.New(a.serverURL, nil)
}

// session loads the saved session and refuses one that has expired.
func (a *app) session() (client.Session, error) {
	s, err := client.LoadSession(a.sessionPath)
	if err != nil {
		return client.Session{}, err
	}
	if s.Expired(time.Now()) {
		return client.Session{}, fmt.Errorf("not logged in; run devlinkctl login")
	}
	return s, nil
}

func (a *app) registerCmd() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrPrompt(cmd, password)
			if err != nil {
				return err
			}
			s, err := a.client().Register(cmd.Context(), username, email, pw)
			if err != nil {
				return err
			}
			if err := client.SaveSession(a.sessionPath, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s\n", s.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrPrompt(cmd, password)
			if err != nil {
				return err
			}
			s, err := a.client().Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			if err := client.SaveSession(a.sessionPath, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", s.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.ClearSession(a.sessionPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (a *app) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in account",
		RunE: a.withSession(func(ctx context.Context, cmd *cobra.Command, s client.Session, args []string) (interface{}, error) {
			return a.client().Me(ctx, s)
		}),
	}
}

func (a *app) listCmd() *cobra.Command {
	var domain, techstack, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your developers",
		RunE: a.withSession(func(ctx context.Context, cmd *cobra.Command, s client.Session, args []string) (interface{}, error) {
			return a.client().ListDevelopers(ctx, s, models.DeveloperFilter{
				Domain:    domain,
				TechStack: models.ParseTechStack(techstack),
				Search:    search,
			})
		}),
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Domain substring")
	cmd.Flags().StringVar(&techstack, "techstack", "", "Comma-separated technologies, all required")
	cmd.Flags().StringVar(&search, "search", "", "Substring of name, email or domain")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize your developers by domain and technology",
		RunE: a.withSession(func(ctx context.Context, cmd *cobra.Command, s client.Session, args []string) (interface{}, error) {
			return a.client().Stats(ctx, s)
		}),
	}
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one developer",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(ctx context.Context, cmd *cobra.Command, s client.Session, args []string) (interface{}, error) {
			return a.client().GetDeveloper(ctx, s, args[0])
		}),
	}
}

func (a *app) addCmd() *cobra.Command {
	var in models.DeveloperInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a developer",
		RunE: a.withSession(func(ctx context.Context, cmd *cobra.Command, s client.Session, args []string) (interface{}, error) {
			in.TechStack = models.ParseTechStack(cmd.Flag("techstack").Value.String())
			return a.client().CreateDeveloper(ctx, s, in)
		}),
	}
	developerFlags(cmd, &in)
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var in models.DeveloperInput
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a developer; unset flags keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(ctx context.Context, cmd *cobra.Command, s client.Session, args []string) (interface{}, error) {
			c := a.client()
			cur, err := c.GetDeveloper(ctx, s, args[0])
			if err != nil {
				return nil, err
			}
			merged := mergeDeveloper(cmd, cur, in)
			return c.UpdateDeveloper(ctx, s, args[0], merged)
		}),
	}
	developerFlags(cmd, &in)
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a developer",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(ctx context.Context, cmd *cobra.Command, s client.Session, args []string) (interface{}, error) {
			if err := a.client().DeleteDeveloper(ctx, s, args[0]); err != nil {
				return nil, err
			}
			return map[string]string{"message": "Developer removed"}, nil
		}),
	}
}

type sessionRun func(ctx context.Context, cmd *cobra.Command, s client.Session, args []string) (interface{}, error)

// withSession loads the session, runs fn and prints its result as JSON.
func (a *app) withSession(fn sessionRun) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := a.session()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		out, err := fn(ctx, cmd, s, args)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
}

func developerFlags(cmd *cobra.Command, in *models.DeveloperInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&in.GitHub, "github", "", "GitHub profile URL")
	cmd.Flags().StringVar(&in.LinkedIn, "linkedin", "", "LinkedIn profile URL")
	cmd.Flags().StringVar(&in.Domain, "domain", "", "Domain, e.g. Frontend")
	cmd.Flags().String("techstack", "", "Comma-separated technologies")
}

// mergeDeveloper overlays the flags the user set onto the current record.
func mergeDeveloper(cmd *cobra.Command, cur models.Developer, in models.DeveloperInput) models.DeveloperInput {
	out := models.DeveloperInput{
		Name: cur.Name, Email: cur.Email, Phone: cur.Phone, GitHub: cur.GitHub,
		LinkedIn: cur.LinkedIn, Domain: cur.Domain, TechStack: cur.TechStack,
	}
	flags := cmd.Flags()
	if flags.Changed("name") {
		out.Name = in.Name
	}
	if flags.Changed("email") {
		out.Email = in.Email
	}
	if flags.Changed("phone") {
		out.Phone = in.Phone
	}
	if flags.Changed("github") {
		out.GitHub = in.GitHub
	}
	if flags.Changed("linkedin") {
		out.LinkedIn = in.LinkedIn
	}
	if flags.Changed("domain") {
		out.Domain = in.Domain
	}
	if flags.Changed("techstack") {
		out.TechStack = models.ParseTechStack(flags.Lookup("techstack").Value.String())
	}
	return out
}

func passwordOrPrompt(cmd *cobra.Command, password string) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".devlink-session.json"
	}
	return filepath.Join(dir, "devlink", "session.json")
}
