package main

import (
	"flag"
	"fmt"
	"os"
)

type Flags struct {
	Port          int
	Host          string
	LogLevel      string
	LogFormat     string
	MetricsPort   int
	EnableMetrics bool
	Version       bool
}

func ParseFlags() *Flags {
	flags := &Flags{}

	flag.IntVar(&flags.Port, "port", 8080, "Server port")
	flag.StringVar(&flags.Host, "host", "0.0.0.0", "Server host")
	flag.StringVar(&flags.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&flags.LogFormat, "log-format", "json", "Log format (json, text)")
	flag.IntVar(&flags.MetricsPort, "metrics-port", 9090, "Prometheus metrics port")
	flag.BoolVar(&flags.EnableMetrics, "enable-metrics", true, "Enable the Prometheus metrics listener")
	flag.BoolVar(&flags.Version, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nTime Series Forecasting Server\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flags.Version {
		info := GetBuildInfo()
		fmt.Printf("Version: %s\n", info.Version)
		fmt.Printf("Git Commit: %s\n", info.GitCommit)
		fmt.Printf("Build Date: %s\n", info.BuildDate)
		fmt.Printf("Go Version: %s\n", info.GoVersion)
		fmt.Printf("Platform: %s\n", info.Platform)
		os.Exit(0)
	}

	return flags
}
