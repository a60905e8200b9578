package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitpen-go/internal/app"
	"gitpen-go/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Commit", "Push").
func newApp(cmd *cobra.Command, operation string) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.New(cmd.Context(), cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

var rootCmd = &cobra.Command{
	Use:   "gitpen",
	Short: "Simple version control with cloud hosting",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Repo Dir:   %s\n", cfg.RepoDir)
		fmt.Printf("Remote:     %s\n", cfg.Remote.Type)
		fmt.Printf("Server URL: %s\n", cfg.Server.URL)
		return nil
	},
}

// init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialise a new repository in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Init")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Init(); err != nil {
			return fmt.Errorf("initializing repository: %w", err)
		}

		fmt.Println("Repository initialised")
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add FILE",
	Short: "Stage a file for the next commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Add")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Add(args[0]); err != nil {
			return fmt.Errorf("staging: %w", err)
		}

		fmt.Printf("Staged %s\n", args[0])
		return nil
	},
}

// commit command
var commitCmd = &cobra.Command{
	Use:   "commit MESSAGE",
	Short: "Commit the staged files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Commit")
		if err != nil {
			return err
		}
		defer a.Close()

		commitID, err := a.Commit(args[0])
		if err != nil {
			return fmt.Errorf("commit failed: %w", err)
		}

		fmt.Printf("Commit %s created with message: %q\n", commitID, args[0])
		return nil
	},
}

// push command
var pushCmd = &cobra.Command{
	Use:   "push REPO_ID",
	Short: "Push all local commits to the remote store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Push")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Push(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("push failed: %w", err)
		}

		fmt.Printf("Pushed %d object(s) for repository %s\n", count, args[0])
		return nil
	},
}

// pull command
var pullCmd = &cobra.Command{
	Use:   "pull REPO_ID",
	Short: "Restore local commits from the remote store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Pull")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Pull(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}

		fmt.Printf("Pulled %d object(s) for repository %s\n", count, args[0])
		return nil
	},
}

// revert command
var revertCmd = &cobra.Command{
	Use:   "revert COMMIT_ID",
	Short: "Restore the working tree from a commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Revert")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Revert(args[0]); err != nil {
			return fmt.Errorf("revert failed: %w", err)
		}

		fmt.Printf("Working tree restored from commit %s\n", args[0])
		return nil
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View local commit history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Log")
		if err != nil {
			return err
		}
		defer a.Close()

		commits, err := a.Log()
		if err != nil {
			return err
		}

		if len(commits) == 0 {
			fmt.Println("No commits.")
			return nil
		}

		for _, c := range commits {
			fmt.Printf("%s  %s  %s\n", c.ID, c.Date, c.Message)
		}
		return nil
	},
}

// login command
var loginCmd = &cobra.Command{
	Use:   "login EMAIL [PASSWORD]",
	Short: "Log in and store an auth token",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Login")
		if err != nil {
			return err
		}
		defer a.Close()

		password := ""
		if len(args) > 1 {
			password = args[1]
		} else {
			fmt.Print("Password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			password = string(raw)
		}

		result, err := a.Login(cmd.Context(), args[0], password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Println("Logged in successfully!")
		fmt.Printf("User ID: %s\n", result.UserID)
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, cleanup, err := app.NewServer(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		return srv.Run(ctx, cfg.Server.ListenAddr)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(revertCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(serveCmd)
}
