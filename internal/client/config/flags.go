package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/crmclient/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   CRM API base URL
//	-d string   local profile database path (":memory:" keeps nothing)
//	-t int      request timeout in seconds
//	-i int      reachability check interval in seconds
//	-l string   log level
//
// os.Args is filtered through flagx.FilterArgs first so -c/-config does not
// trip this flag set.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "CRM API base URL")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local profile database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	pingInterval := fs.Int("i", int(cfg.PingInterval.Seconds()), "reachability check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags given on the command line replace the durations; a file
	// value such as 500ms would not survive a round trip through seconds.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "i":
			cfg.PingInterval = time.Duration(*pingInterval) * time.Second
		}
	})
}
