package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port            int
	Host            string
	LogLevel        string
	LogFormat       string
	MetricsPort     int
	EnableMetrics   bool
	BudgetCeiling   float64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Version         bool
}

func ParseFlags() *Config {
	config := &Config{}

	flag.IntVar(&config.Port, "port", 8080, "Server port")
	flag.StringVar(&config.Host, "host", "0.0.0.0", "Server host")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&config.LogFormat, "log-format", "json", "Log format (json, text)")
	flag.IntVar(&config.MetricsPort, "metrics-port", 9090, "Prometheus metrics port")
	flag.BoolVar(&config.EnableMetrics, "enable-metrics", true, "Enable Prometheus metrics server")
	flag.Float64Var(&config.BudgetCeiling, "budget-ceiling", 10.0, "Privacy budget ceiling for reporting")
	flag.DurationVar(&config.ReadTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	flag.DurationVar(&config.WriteTimeout, "write-timeout", 30*time.Second, "HTTP write timeout")
	flag.DurationVar(&config.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	flag.BoolVar(&config.Version, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPrivacy Budget & Noise Injection Server\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if config.Version {
		printVersion()
		os.Exit(0)
	}

	return config
}
