package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"idlepond/internal/app"
	"idlepond/internal/config"
	"idlepond/internal/ui"
)

const Version = "0.1.0"

type rootOptions struct {
	configPath string
	dataDir    string
	driver     string
	logLevel   string
	admin      bool
	seed       int64

	// set by tests
	logOutput io.Writer
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(&rootOptions{})
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		stop()
		os.Exit(1)
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "idlepond",
		Short:         "Idle fishing: catch, stack, sell and let the pond fish while you're away",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	root.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML config file (defaults are built in)")
	pf.StringVar(&opts.dataDir, "data-dir", "", "save directory")
	pf.StringVar(&opts.driver, "storage", "", "storage driver: file or sqlite")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&opts.admin, "admin", false, "enable admin commands")
	pf.Int64Var(&opts.seed, "seed", 0, "fixed random seed (0 picks one)")

	root.AddCommand(
		newCatchCmd(opts),
		newFishCmd(opts),
		newLeaveCmd(opts),
		newResumeCmd(opts),
		newStatusCmd(opts),
		newGuideCmd(opts),
		newBagCmd(opts),
		newSellCmd(opts),
		newArchiveCmd(opts),
		newExportCmd(opts),
		newBackupCmd(opts),
		newRestoreCmd(opts),
		newPondsCmd(opts),
		newShopCmd(opts),
	)
	return root
}

// loadConfig layers the config file, IDLEPOND_* variables and flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if o.dataDir != "" {
		cfg.Storage.DataDir = o.dataDir
		cfg.Storage.SQLitePath = ""
	}
	if o.driver != "" {
		cfg.Storage.Driver = o.driver
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.admin {
		cfg.Player.Admin = true
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func (o *rootOptions) openApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	out := o.logOutput
	if out == nil {
		out = os.Stderr
	}
	logger, err := app.NewLogger(cfg.Logging, out)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, app.Options{Config: cfg, Logger: logger, Seed: o.seed})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		// a cancelled command still drains its saves
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Error("closing", "err", err)
		}
	}
	return a, cleanup, nil
}
