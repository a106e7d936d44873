package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chemviz/chemviz/internal/api"
	"github.com/chemviz/chemviz/internal/credstore"
	"github.com/chemviz/chemviz/internal/dashboard"
	"github.com/chemviz/chemviz/internal/session"
	"github.com/chemviz/chemviz/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var serverURL string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/chemviz/config.yml)")
	flag.StringVar(&serverURL, "server", "", "override the API base URL")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("ChemViz - Equipment CSV Dashboard\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if serverURL != "" {
		cfg.APIURL = serverURL
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	configDir := filepath.Join(home, ".config", "chemviz")
	if err := tui.InitializeSkin(cfg.Skin, configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load skin '%s': %v (using default)\n", cfg.Skin, err)
	}

	store, err := credstore.NewFileStore(cfg.CredentialsPath)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	sess := session.New(store, cfg.SessionGrace)
	client := api.NewClient(cfg.APIURL, store)
	rec := dashboard.New(client, sess)

	app := tui.NewApp(rec,
		tui.NewLoginPage(rec),
		tui.NewDashboardPage(rec, cfg.DownloadDir),
	)

	p := tea.NewProgram(app, tea.WithAltScreen())
	rec.SetOnChange(func() {
		p.Send(tui.StateChangedMsg{})
	})

	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
