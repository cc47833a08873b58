package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"reviewdiff/internal/app"
	"reviewdiff/internal/cache"
	"reviewdiff/internal/config"
	"reviewdiff/internal/diffview"
	"reviewdiff/internal/git"
	"reviewdiff/internal/highlight"
	"reviewdiff/internal/log"
	"reviewdiff/internal/render"
	"reviewdiff/internal/session"
	"reviewdiff/internal/source"
	"reviewdiff/internal/theme"
	"reviewdiff/internal/watcher"
)

func init() {
	// Query the terminal background before Bubble Tea owns stdin, otherwise
	// the OSC 11 reply can leak into the input stream.
	_ = lipgloss.HasDarkBackground()
}

const setupTimeout = 15 * time.Second

type options struct {
	configPath string
	pr         string
	files      []string
}

func newRootCmd(version string) *cobra.Command {
	var opts options
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "reviewdiff [reference]",
		Short: "Review changes in a side-by-side terminal diff viewer",
		Long: `reviewdiff shows old and new file contents side by side.

With no reference it compares the working tree (including untracked files)
against HEAD. A reference may be a single commit, a range "a..b", or a
merge-base range "a...b". --pr reviews a GitHub pull request instead.`,
		Args:         cobra.MaximumNArgs(1),
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args, opts, v)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default: .reviewdiff.yaml, then ~/.config/reviewdiff/config.yaml)")
	cmd.Flags().StringVar(&opts.pr, "pr", "",
		"GitHub pull request: URL, owner/repo#N, or a number on the origin remote")
	cmd.Flags().StringArrayVarP(&opts.files, "file", "f", nil,
		"only show this path or directory (repeatable)")
	cmd.Flags().BoolP("watch", "w", false, "reload when files change (polls pull requests)")
	cmd.Flags().Bool("debug", false, "write a debug log to the temp directory")

	_ = v.BindPFlag("watch", cmd.Flags().Lookup("watch"))
	_ = v.BindPFlag("debug", cmd.Flags().Lookup("debug"))
	_ = v.BindEnv("debug", "REVIEWDIFF_DEBUG")

	return cmd
}

func run(ctx context.Context, args []string, opts options, v *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if v.GetBool("debug") {
		closeLog, err := log.Init(debugLogPath())
		if err != nil {
			return err
		}
		defer closeLog()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	setupCtx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	root, rootErr := git.DiscoverRepoRoot(setupCtx, cwd)
	cfg, cfgPath, err := config.Load(opts.configPath, root)
	if err != nil {
		return err
	}
	log.Debug(log.CatConfig, "config ready", "path", cfgPath, "theme", cfg.Theme, "tab_width", cfg.TabWidth)

	var ref string
	if len(args) > 0 {
		ref = args[0]
	}
	src, label, err := buildSource(setupCtx, cwd, root, rootErr, ref, opts)
	if err != nil {
		return err
	}

	th, err := theme.ByName(cfg.Theme)
	if err != nil {
		return err
	}
	renderer := render.New(th, highlight.New(), render.WithSidebarWidth(cfg.Sidebar.Width))

	appOpts := app.Options{
		Source:   src,
		Renderer: renderer,
		Settings: session.Settings{
			TabWidth: cfg.TabWidth,
			Context: diffview.ContextConfig{
				Enabled:  cfg.Context.Enabled,
				MaxLines: cfg.Context.MaxLines,
			},
		},
		Session:     []session.Option{session.WithAligner(cache.NewAligner())},
		Label:       label,
		HideSidebar: cfg.Sidebar.Hidden,
	}

	if v.GetBool("watch") {
		if src.Local() {
			w, err := startWatcher(setupCtx, root, cfg.Watch.Debounce)
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()
			ch, err := w.Start()
			if err != nil {
				return err
			}
			appOpts.Watch = ch
		} else {
			appOpts.PollInterval = cfg.Watch.PollInterval
		}
	}

	p := tea.NewProgram(app.NewModel(appOpts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// buildSource picks the git or GitHub source and the footer label.
func buildSource(ctx context.Context, cwd, root string, rootErr error, ref string, opts options) (source.Source, string, error) {
	if opts.pr != "" {
		if ref != "" {
			return nil, "", errors.New("a reference and --pr cannot be combined")
		}
		pr, err := source.ResolvePR(ctx, cwd, opts.pr)
		if err != nil {
			return nil, "", err
		}
		return source.NewGitHub(pr, source.WithPaths(opts.files)), pr.String(), nil
	}

	if rootErr != nil {
		return nil, "", rootErr
	}
	parsed, err := source.ParseReference(ref)
	if err != nil {
		return nil, "", err
	}

	label := parsed.String()
	if parsed.Kind == source.RefWorkingTree {
		if branch, err := git.CurrentBranch(ctx, root); err == nil {
			label = branch
		}
	}
	return source.NewGit(root, source.GitOptions{Ref: parsed, Paths: opts.files}), label, nil
}

func startWatcher(ctx context.Context, root string, debounce time.Duration) (*watcher.Watcher, error) {
	gitDir, err := git.DiscoverGitDir(ctx, root)
	if err != nil {
		return nil, err
	}
	cfg := watcher.DefaultConfig(root, gitDir)
	if debounce > 0 {
		cfg.DebounceDur = debounce
	}
	return watcher.New(cfg)
}

// debugLogPath stays outside the work tree so log writes do not wake the
// watcher.
func debugLogPath() string {
	return filepath.Join(os.TempDir(), "reviewdiff-debug.log")
}
