package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/Sternrassler/flight-booking-client/internal/config"
	"github.com/Sternrassler/flight-booking-client/pkg/logging"
)

var exampleUsage = strings.TrimSpace(`
  flybook offers
  flybook search --from VIE --to LHR --date 2026-11-02 --all
  flybook reservations save --flight F123 --passenger "Ada Lovelace" --class economy
  flybook serve --listen :8080 --store redis --redis-addr localhost:6379
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the configuration and the wired application between the
// root command and its subcommands.
type cli struct {
	cfg     config.Config
	cfgPath string
	out     io.Writer
	logOut  io.Writer

	root *cobra.Command
	log  zerolog.Logger
	app  *app
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newCLI(os.Stdout, os.Stderr).execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newCLI(out, logOut io.Writer) *cli {
	c := &cli{cfg: config.DefaultConfig(), out: out, logOut: logOut}

	root := &cobra.Command{
		Use:               "flybook",
		Short:             "Offline-tolerant client for the flybook booking API",
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(out)
	root.SetErr(logOut)

	c.bindFlags(root.PersistentFlags())

	root.AddCommand(
		c.offersCmd(),
		c.partnersCmd(),
		c.accountCmd(),
		c.reservationsCmd(),
		c.searchCmd(),
		c.serveCmd(),
	)
	c.root = root
	return c
}

// execute runs the command line and releases whatever setup opened, also
// when the command fails.
func (c *cli) execute(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	err := c.root.ExecuteContext(ctx)
	return errors.Join(err, c.close())
}

func (c *cli) bindFlags(fs *pflag.FlagSet) {
	cfg := &c.cfg
	fs.StringVar(&c.cfgPath, "config", "", "config file (default $HOME/.flybook/config.toml)")

	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "booking API base URL")
	fs.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent sent to the API")
	fs.StringVar(&cfg.APIToken, "api-token", cfg.APIToken, "bearer token for the API")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per HTTP attempt")
	fs.Float64Var(&cfg.RequestsPerSecond, "rps", cfg.RequestsPerSecond, "client-side request rate (0 disables)")
	fs.IntVar(&cfg.Burst, "burst", cfg.Burst, "client-side request burst")
	fs.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "retries for server, network and rate-limit errors")

	fs.StringVar(&cfg.Store, "store", cfg.Store, "local store backend (sqlite|redis)")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database")
	fs.BoolVar(&cfg.SharedRateLimit, "shared-rate-limit", cfg.SharedRateLimit, "track the server rate limit in Redis")

	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "flight search page size")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address for serve")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "human-readable log output")
}

// setup loads the layered configuration, then wires logging, the local
// store, the API client and the repository.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if err := config.Load(&c.cfg, c.cfgPath, changed); err != nil {
		return err
	}

	level, err := logging.ParseLogLevel(c.cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Setup(logging.Config{Level: level, Pretty: c.cfg.LogPretty, Output: c.logOut})
	c.log = logging.NewLogger(logging.ComponentCLI)
	c.log.Debug().Interface("config", c.cfg.Masked()).Msg("configuration")

	a, err := newApp(cmd.Context(), c.cfg)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}
