package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/centresolea/solea-events/internal/config"
	"github.com/centresolea/solea-events/internal/logger"
	"github.com/centresolea/solea-events/internal/scraper"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitUpstream = 2
)

// app carries what the commands share once the configuration is loaded.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	metrics *logger.Metrics
	out     io.Writer
	logOut  io.Writer
	now     func() time.Time

	configFile string
	verbose    bool
	format     string
}

func newApp() *app {
	return &app{
		v:       config.New(),
		metrics: logger.DefaultMetrics(),
		out:     os.Stdout,
		logOut:  os.Stderr,
		now:     time.Now,
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solea-events",
		Short: "Extract the Centre Soléa schedule, tariffs and events",
		Long: `A CLI tool to extract the Centre Soléa dance-school schedule.
Every command fetches the website again and prints normalized results.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	// Define flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: solea.yaml in ., ./config or /etc/solea)")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")
	flags.StringVar(&a.format, "format", "text", "Output format: text or json (events also accepts ics)")
	flags.String("site", config.DefaultBaseURL, "Base URL of the Centre Soléa website")
	flags.String("log-format", "json", "Log format: json or console")
	flags.Duration("timeout", 20*time.Second, "Read timeout for page fetches")

	// an explicitly set flag wins over file and environment
	_ = a.v.BindPFlag("site.base_url", flags.Lookup("site"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("http.read_timeout", flags.Lookup("timeout"))

	cmd.AddCommand(
		newEventsCmd(a),
		newCoursesCmd(a),
		newTariffsCmd(a),
		newMembershipCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// setup loads the configuration and installs the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	logger.SetDefault(logger.NewWithFormat(logger.ParseLevel(cfg.Log.Level), a.logOut, logger.Format(cfg.Log.Format)))
	logger.Debug("configuration loaded", logger.Fields{
		"command":  cmd.Name(),
		"site":     cfg.Host(),
		"timezone": cfg.Timezone,
		"config":   a.v.ConfigFileUsed(),
	})
	return nil
}

// scraper builds a Scraper from the loaded configuration.
func (a *app) scraper() *scraper.Scraper {
	client := scraper.NewClient(scraper.ClientOptions{
		UserAgent:      a.cfg.Site.UserAgent,
		ConnectTimeout: a.cfg.HTTP.ConnectTimeout,
		ReadTimeout:    a.cfg.HTTP.ReadTimeout,
		Metrics:        a.metrics,
	})
	sc := scraper.New(scraper.Config{
		Fetcher:    client,
		EventsURL:  a.cfg.EventsURL(),
		CoursesURL: a.cfg.CoursesURL(),
		Location:   a.cfg.Location(),
		EnrichRate: a.cfg.Enrich.Rate,
		Metrics:    a.metrics,
	})
	sc.Now = a.now
	return sc
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var fe *scraper.FetchError
		if errors.As(err, &fe) {
			os.Exit(ExitUpstream)
		}
		os.Exit(ExitError)
	}
}
