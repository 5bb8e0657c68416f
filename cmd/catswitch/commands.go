package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jask/catswitch/internal/category"
	"github.com/jask/catswitch/internal/config"
	"github.com/jask/catswitch/internal/secrets"
	"github.com/jask/catswitch/internal/tui"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <name> <id>",
	Short: "Classify one application and print its category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		res := a.classifier.Resolve(cmd.Context(), args[0], args[1])
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", res.Category, res.Source)
		return nil
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Classify the apps manifest and print the grouped index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		idx, err := a.catalog.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderIndex(idx))
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and edit cached classifications",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached classifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, e := range a.cache.Entries() {
			fmt.Fprintf(w, "%s\t%s\n", e.ID, e.Category)
		}
		return w.Flush()
	},
}

var cacheSetCmd = &cobra.Command{
	Use:   "set <id> <label>",
	Short: "Pin an application to a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, ok := category.Parse(args[1])
		if !ok {
			return fmt.Errorf("unknown category %q (one of: %s)", args[1], strings.Join(category.Labels(), ", "))
		}
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		return a.cache.Put(cmd.Context(), args[0], cat)
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Forget one cached classification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		return a.cache.Delete(cmd.Context(), args[0])
	},
}

var cacheResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget every cached classification",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.maintenance.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
		return nil
	},
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage stored API keys",
}

var keySetCmd = &cobra.Command{
	Use:   "set <provider> <key>",
	Short: "Store an API key for a provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := secrets.NewStore("")
		if err != nil {
			return err
		}
		if err := store.Put(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "key stored in %s\n", store.Path())
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete <provider>",
	Short: "Remove the stored API key of a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := secrets.NewStore("")
		if err != nil {
			return err
		}
		return store.Delete(args[0])
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or show the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(config.Path()); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", config.Path())
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path, err := config.Save(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		rows := [][2]string{
			{"config", config.Path()},
			{"cache.backend", cfg.Cache.Backend},
			{"cache.path", cfg.Cache.Path},
			{"cache.key", cfg.Cache.Key},
			{"llm.provider", cfg.LLM.Provider},
			{"llm.api_key_env", cfg.LLM.APIKeyEnv},
			{"llm.api_key", mask(cfg.LLM.APIKey)},
			{"llm.model", cfg.LLM.Model},
			{"llm.base_url", cfg.LLM.BaseURL},
			{"llm.timeout", cfg.LLM.Timeout.String()},
			{"llm.requests_per_second", fmt.Sprint(cfg.LLM.RequestsPerSecond)},
			{"llm.burst", fmt.Sprint(cfg.LLM.Burst)},
			{"llm.breaker_failures", fmt.Sprint(cfg.LLM.BreakerFailures)},
			{"llm.breaker_cooldown", cfg.LLM.BreakerCooldown.String()},
			{"apps.manifest", cfg.Apps.Manifest},
			{"activation.command", cfg.Activation.Command},
			{"log.level", cfg.Log.Level},
			{"log.development", fmt.Sprint(cfg.Log.Development)},
			{"log.file", cfg.Log.File},
			{"ui.width", fmt.Sprint(cfg.UI.Width)},
			{"metrics.addr", cfg.Metrics.Addr},
		}
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\n", r[0], r[1])
		}
		return w.Flush()
	},
}

func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func init() {
	cacheCmd.AddCommand(cacheListCmd, cacheSetCmd, cacheDeleteCmd, cacheResetCmd)
	keyCmd.AddCommand(keySetCmd, keyDeleteCmd)
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
}
