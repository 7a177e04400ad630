// wirechat - a terminal client for streaming LLM chat.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/morganforge/wirechat/internal/archive"
	"github.com/morganforge/wirechat/internal/cloud"
	"github.com/morganforge/wirechat/internal/config"
	"github.com/morganforge/wirechat/internal/export"
	"github.com/morganforge/wirechat/internal/model"
	"github.com/morganforge/wirechat/internal/security"
	"github.com/morganforge/wirechat/internal/session"
	"github.com/morganforge/wirechat/internal/storage"
	"github.com/morganforge/wirechat/internal/ui/chat"
	"github.com/morganforge/wirechat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const archiveFile = "archive.db"

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	var err error
	switch cmd {
	case "", "chat":
		err = runTUI()
	case "key":
		err = handleKey(args[1:])
	case "export":
		err = handleExport(args[1:])
	case "clear":
		err = handleClear()
	case "history":
		err = handleHistory(args[1:])
	case "version":
		fmt.Printf("wirechat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`wirechat - streaming LLM chat in your terminal

Usage:
  wirechat                 start the chat interface
  wirechat key set         store an API key (prompted, hidden input)
  wirechat key status      show whether an API key is configured
  wirechat key clear       remove the stored API key
  wirechat export [path]   export the conversation (-format text|markdown|html)
  wirechat clear           archive and clear the conversation
  wirechat history [id]    list archived conversations, or print one
  wirechat version         print version information
`)
}

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// app holds the wired-up subsystems shared by the commands.
type app struct {
	cfg      *config.Config
	creds    *security.FileCredentialStore
	snapshot *storage.SnapshotStore
	dataDir  string
}

// loadApp loads configuration and opens the stores under the data directory.
func loadApp() (*app, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	creds, err := security.NewFileCredentialStore(dir)
	if err != nil {
		return nil, err
	}
	snapshot, err := storage.NewSnapshotStore(dir)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, creds: creds, snapshot: snapshot, dataDir: dir}, nil
}

// runTUI wires the full stack and starts the chat interface.
func runTUI() error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	// Restore the previous conversation, then persist every change back.
	turns, err := a.snapshot.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not restore conversation: %v\n", err)
		turns = nil
	}
	conv := model.NewConversationFrom(turns)
	conv.SetChangeHook(func(turns []model.Turn) {
		if err := a.snapshot.Sync(turns); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not persist conversation: %v\n", err)
		}
	})

	// First run: offer to store a key before the UI takes the terminal.
	if !a.creds.Has() && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("No API key configured.")
		if err := promptAndStoreKey(a.creds, true); err != nil {
			return err
		}
	}

	apiKey, err := a.creds.Get()
	if err != nil && !errors.Is(err, security.ErrNoCredential) {
		return err
	}
	client := cloud.NewClient(apiKey).
		WithBaseURL(a.cfg.Endpoint).
		WithModel(a.cfg.Model).
		WithTimeout(a.cfg.Timeout())

	arch, err := archive.Open(filepath.Join(a.dataDir, archiveFile))
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer arch.Close()

	ctrl := session.NewController(conv, client).
		WithCredentialCheck(func() bool { return a.creds.Has() }).
		WithArchiver(arch)

	theme := styles.NewTheme(a.cfg.UI.Theme)
	m := chat.New(ctrl, theme, a.cfg.Model)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running wirechat: %w", err)
	}
	return nil
}

// =============================================================================
// KEY MANAGEMENT
// =============================================================================

func handleKey(args []string) error {
	sub := "status"
	if len(args) > 0 {
		sub = args[0]
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	switch sub {
	case "set":
		return promptAndStoreKey(a.creds, false)

	case "status":
		if a.creds.Has() {
			fmt.Println("API key: configured")
		} else {
			fmt.Println("API key: not configured (run: wirechat key set)")
		}
		return nil

	case "clear":
		if err := a.creds.Delete(); err != nil {
			return err
		}
		fmt.Println("API key removed.")
		return nil

	default:
		return fmt.Errorf("unknown key subcommand: %s (want set, status, or clear)", sub)
	}
}

// promptAndStoreKey reads a key with hidden input and seals it. With
// optional set, an empty entry skips storage instead of failing.
func promptAndStoreKey(creds *security.FileCredentialStore, optional bool) error {
	if optional {
		fmt.Print("API key (input hidden, Enter to skip): ")
	} else {
		fmt.Print("API key (input hidden): ")
	}
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}
	key := strings.TrimSpace(string(raw))
	security.ZeroBytes(raw)
	if key == "" {
		if optional {
			fmt.Println("Skipped. Run 'wirechat key set' later to configure one.")
			return nil
		}
		return errors.New("empty key, nothing stored")
	}
	if err := creds.Set(key); err != nil {
		return err
	}
	fmt.Println("API key stored.")
	return nil
}

// =============================================================================
// EXPORT AND CLEAR
// =============================================================================

func handleExport(args []string) error {
	format := "text"
	var path string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-format" || args[i] == "--format":
			if i+1 >= len(args) {
				return errors.New("-format needs a value: text, markdown, or html")
			}
			i++
			format = args[i]
		case strings.HasPrefix(args[i], "-format="):
			format = strings.TrimPrefix(args[i], "-format=")
		case strings.HasPrefix(args[i], "--format="):
			format = strings.TrimPrefix(args[i], "--format=")
		default:
			path = args[i]
		}
	}

	var exporter export.Exporter
	switch format {
	case "text", "txt":
		exporter = export.NewTextExporter()
	case "markdown", "md":
		exporter = export.NewMarkdownExporter()
	case "html":
		exporter = export.NewHTMLExporter()
	default:
		return fmt.Errorf("unknown format: %s (want text, markdown, or html)", format)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	turns, err := a.snapshot.Load()
	if err != nil {
		return err
	}
	if path == "" {
		path = export.Filename(exporter)
	}
	if err := export.WriteFile(exporter, turns, path); err != nil {
		return err
	}
	fmt.Printf("Exported %d turns to %s\n", len(turns), path)
	return nil
}

func handleClear() error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	turns, err := a.snapshot.Load()
	if err != nil {
		return err
	}

	if len(turns) > 0 {
		arch, err := archive.Open(filepath.Join(a.dataDir, archiveFile))
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer arch.Close()
		if _, err := arch.Store(turns); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not archive transcript: %v\n", err)
		}
		if err := arch.Prune(maxArchived); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not prune archive: %v\n", err)
		}
	}

	if err := a.snapshot.Clear(); err != nil {
		return err
	}
	fmt.Println("Conversation cleared.")
	return nil
}

// maxArchived caps how many cleared transcripts the archive retains.
const maxArchived = 50

func handleHistory(args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	arch, err := archive.Open(filepath.Join(a.dataDir, archiveFile))
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer arch.Close()

	if len(args) > 0 {
		turns, err := arch.Load(args[0])
		if err != nil {
			return err
		}
		out, err := export.NewTextExporter().Export(turns)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	metas, err := arch.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("No archived conversations.")
		return nil
	}
	for _, m := range metas {
		fmt.Printf("%s  %s  %3d turns  %s\n",
			m.ID, m.CreatedAt.Format("2006-01-02 15:04"), m.TurnCount, m.Preview)
	}
	return nil
}
