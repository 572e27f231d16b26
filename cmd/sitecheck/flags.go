package main

import (
	"flag"
	"fmt"
	"os"
)

// AppFlags carries the command line options after alias consolidation.
type AppFlags struct {
	SeedURL     string
	ConfigFile  string
	OutputFile  string
	LogLevel    string
	LogFormat   string
	Headless    bool
	HeadlessSet bool
}

func ParseFlags() AppFlags {
	seedURL := flag.String("url", "", "Seed URL to scan. The crawl stays on this URL's origin.")
	seedURLAlias := flag.String("u", "", "Alias for -url")

	configFile := flag.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	configFileAlias := flag.String("c", "", "Alias for -config")

	outputFile := flag.String("output", "", "Path for the JSON report file. Defaults to reports/scan_report_<scan-id>.json.")
	outputFileAlias := flag.String("o", "", "Alias for -output")

	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config file if set)")
	logFormat := flag.String("log-format", "", "Log format: console or json (overrides config file if set)")
	headless := flag.Bool("headless", true, "Run the browser headless (overrides config file if set)")

	flag.Parse()

	flags := AppFlags{
		LogLevel:  *logLevel,
		LogFormat: *logFormat,
		Headless:  *headless,
	}

	if *seedURL != "" {
		flags.SeedURL = *seedURL
	} else if *seedURLAlias != "" {
		flags.SeedURL = *seedURLAlias
	}

	if *configFile != "" {
		flags.ConfigFile = *configFile
	} else if *configFileAlias != "" {
		flags.ConfigFile = *configFileAlias
	}

	if *outputFile != "" {
		flags.OutputFile = *outputFile
	} else if *outputFileAlias != "" {
		flags.OutputFile = *outputFileAlias
	}

	// A bool flag's default is indistinguishable from an explicit value, so
	// only an explicitly set -headless overrides the config file.
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "headless" {
			flags.HeadlessSet = true
		}
	})

	if flags.SeedURL == "" {
		fmt.Fprintln(os.Stderr, "[FATAL] --url argument is required")
		os.Exit(1)
	}

	return flags
}
