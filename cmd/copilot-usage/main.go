// Package main is the entry point for the Copilot usage dashboard. It wires
// configuration, the cache store, the API client, and the orchestrator, then
// runs either the interactive TUI or one of the scripted output modes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rbrandt/copilot-usage-tui/internal/api"
	"github.com/rbrandt/copilot-usage-tui/internal/app"
	"github.com/rbrandt/copilot-usage-tui/internal/cache"
	"github.com/rbrandt/copilot-usage-tui/internal/config"
	"github.com/rbrandt/copilot-usage-tui/internal/logger"
	"github.com/rbrandt/copilot-usage-tui/internal/models"
	"github.com/rbrandt/copilot-usage-tui/internal/services"
	"github.com/rbrandt/copilot-usage-tui/internal/version"
	"github.com/rbrandt/copilot-usage-tui/internal/waybar"
)

var (
	flagRefresh     bool
	flagWaybar      bool
	flagCacheStatus bool
	flagTheme       string
)

var rootCmd = &cobra.Command{
	Use:          "copilot-usage",
	Short:        "GitHub Copilot premium-request usage dashboard",
	Version:      version.Info(),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch {
		case flagWaybar:
			return runWaybar(cmd.Context())
		case flagCacheStatus:
			return runCacheStatus()
		default:
			return runInteractive(cmd.Context())
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the current configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runShowConfig()
	},
}

var resetCmd = &cobra.Command{
	Use:     "reset",
	Aliases: []string{"reconfigure"},
	Short:   "Reconfigure the token and theme from scratch",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfgMgr, err := config.NewManager()
		if err != nil {
			return err
		}
		_, err = runSetup(cfgMgr)
		return err
	},
}

func init() {
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "invalidate the cache before loading")
	rootCmd.Flags().BoolVar(&flagWaybar, "waybar", false, "print waybar JSON and exit")
	rootCmd.Flags().BoolVar(&flagCacheStatus, "cache-status", false, "print cache status and exit")
	rootCmd.Flags().StringVar(&flagTheme, "theme", "", "theme override for this session")

	rootCmd.AddCommand(configCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadOrSetup returns a usable configuration, running first-time setup when
// none exists yet.
func loadOrSetup(cfgMgr *config.Manager) (*config.Config, error) {
	cfg, err := cfgMgr.Load()
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.Token == "" {
		return runSetup(cfgMgr)
	}
	return cfg, nil
}

func buildManager(cfgMgr *config.Manager, cfg *config.Config) (*services.Manager, error) {
	store, err := cache.New(cfg.CacheTTLMinutes)
	if err != nil {
		return nil, err
	}
	return services.NewManager(cfgMgr, store, api.New(cfg.Token)), nil
}

// loadStats loads stats through the orchestrator, prompting for a username
// when the token cannot self-identify.
func loadStats(ctx context.Context, cfgMgr *config.Manager, cfg *config.Config, mgr *services.Manager, force bool) (models.UsageStats, error) {
	stats, err := mgr.LoadStats(ctx, force)
	if !errors.Is(err, api.ErrUnknownUser) {
		return stats, err
	}

	username, perr := promptUsername()
	if perr != nil {
		return models.UsageStats{}, perr
	}
	cfg.Username = username
	if serr := cfgMgr.Save(cfg); serr != nil {
		return models.UsageStats{}, serr
	}

	return mgr.LoadStats(ctx, force)
}

func runInteractive(ctx context.Context) error {
	cfgMgr, err := config.NewManager()
	if err != nil {
		return err
	}

	cfg, err := loadOrSetup(cfgMgr)
	if err != nil {
		return err
	}

	force := flagRefresh
	for {
		mgr, err := buildManager(cfgMgr, cfg)
		if err != nil {
			return err
		}

		stats, err := loadStats(ctx, cfgMgr, cfg, mgr, force)
		if err != nil {
			logger.Error("initial load failed", "error", err)
			return errors.New(api.UserMessage(err))
		}

		theme := models.ParseTheme(cfg.Theme)
		if flagTheme != "" {
			theme = models.ParseTheme(flagTheme)
		}

		// The cache watcher lives for one TUI run; cancelling here keeps a
		// reconfigure loop from accumulating watchers.
		watchCtx, cancelWatch := context.WithCancel(ctx)

		model := app.NewModel(watchCtx, mgr, stats, theme)
		p := tea.NewProgram(model, tea.WithAltScreen())

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			p.Send(tea.Quit())
		}()

		final, err := p.Run()
		cancelWatch()
		signal.Stop(sigChan)
		if err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}

		if m, ok := final.(*app.Model); ok && m.Action() == app.ActionReconfigure {
			cfg, err = runSetup(cfgMgr)
			if err != nil {
				return err
			}
			force = true
			continue
		}
		return nil
	}
}

func runWaybar(ctx context.Context) error {
	cfgMgr, err := config.NewManager()
	if err != nil {
		return err
	}
	cfg, err := cfgMgr.Load()
	if err != nil {
		return err
	}
	if cfg == nil || cfg.Token == "" {
		return errors.New("not configured: run copilot-usage once to set up")
	}

	mgr, err := buildManager(cfgMgr, cfg)
	if err != nil {
		return err
	}
	stats, err := mgr.LoadStats(ctx, flagRefresh)
	if err != nil {
		logger.Error("waybar load failed", "error", err)
		return errors.New(api.UserMessage(err))
	}

	line, err := waybar.Render(stats, cfg.WaybarFormat)
	if err != nil {
		return err
	}
	fmt.Println(line)
	return nil
}

func runCacheStatus() error {
	cfgMgr, err := config.NewManager()
	if err != nil {
		return err
	}
	cfg, err := cfgMgr.Load()
	if err != nil {
		return err
	}

	ttl := config.Default().CacheTTLMinutes
	if cfg != nil {
		ttl = cfg.CacheTTLMinutes
	}

	store, err := cache.New(ttl)
	if err != nil {
		return err
	}

	info := store.Info()
	if info.LastUpdated == nil {
		fmt.Println("Cache: empty")
		return nil
	}

	state := "expired"
	if info.IsFresh {
		state = "fresh"
	}
	fmt.Printf("Cache: %s (updated %s, TTL %d min)\n",
		state, info.LastUpdated.Local().Format("2006-01-02 15:04:05"), info.TTLMinutes)
	return nil
}

func runShowConfig() error {
	cfgMgr, err := config.NewManager()
	if err != nil {
		return err
	}
	cfg, err := cfgMgr.Load()
	if err != nil {
		return err
	}
	if cfg == nil {
		fmt.Printf("No configuration at %s\n", cfgMgr.Path())
		return nil
	}

	fmt.Printf("Config file:  %s\n", cfgMgr.Path())
	fmt.Printf("Token:        %s\n", maskToken(cfg.Token))
	fmt.Printf("Theme:        %s\n", cfg.Theme)
	fmt.Printf("Cache TTL:    %d min\n", cfg.CacheTTLMinutes)
	fmt.Printf("Waybar:       %s\n", cfg.WaybarFormat)
	if cfg.Username != "" {
		fmt.Printf("Username:     %s\n", cfg.Username)
	}
	return nil
}

func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:8] + "..."
}
