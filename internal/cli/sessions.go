package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// sessionsCommand creates the sessions management command.
func (c *CLI) sessionsCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage autosave sessions",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./signstudio.toml)")

	cmd.AddCommand(c.sessionsListCommand(&configPath))
	cmd.AddCommand(c.sessionsCleanCommand(&configPath))

	return cmd
}

// sessionsListCommand creates the "sessions list" subcommand.
func (c *CLI) sessionsListCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored autosave sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := sessionStore(cmd.Context(), cfg.Session)
			if err != nil {
				return fmt.Errorf("initialize session store: %w", err)
			}
			defer store.Close()

			sessions, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				printInfo("No sessions stored")
				return nil
			}
			for _, s := range sessions {
				name := s.Name
				if name == "" {
					name = "(unnamed)"
				}
				printKeyValue(s.TemplateID, fmt.Sprintf("%s · saved %s", name, s.UpdatedAt.Format("2006-01-02 15:04")))
			}
			printDetail("%d sessions", len(sessions))
			return nil
		},
	}
}

// sessionsCleanCommand creates the "sessions clean" subcommand.
func (c *CLI) sessionsCleanCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove expired autosave sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := sessionStore(cmd.Context(), cfg.Session)
			if err != nil {
				return fmt.Errorf("initialize session store: %w", err)
			}
			defer store.Close()

			if err := store.Cleanup(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Expired sessions removed")
			return nil
		},
	}
}
