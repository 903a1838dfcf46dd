package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"grimm.is/sockd/cmd"
	"grimm.is/sockd/internal/brand"
	"grimm.is/sockd/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runFlags := flag.NewFlagSet("run", flag.ExitOnError)
		configFile := runFlags.StringP("config", "c", brand.ConfigPath(), "Configuration file")
		runlevel := runFlags.Int("runlevel", 0, "Override the configured runlevel")
		debug := runFlags.Bool("debug", false, "Log at debug level")
		runFlags.Parse(os.Args[2:])

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts := cmd.Options{ConfigFile: *configFile, Runlevel: *runlevel, Debug: *debug}
		if err := cmd.RunDaemon(ctx, opts); err != nil {
			printer.Fprintf(os.Stderr, "Run failed: %v\n", err)
			stop()
			os.Exit(1)
		}

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		verbose := checkFlags.BoolP("verbose", "v", false, "Print the registration report")
		checkFlags.Parse(os.Args[2:])

		configFile := brand.ConfigPath()
		if checkFlags.NArg() > 0 {
			configFile = checkFlags.Arg(0)
		}

		if err := cmd.RunCheck(configFile, *verbose, os.Stdout); err != nil {
			printer.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}

	case "version":
		cmd.RunVersion(os.Stdout)

	case "help", "-h", "--help":
		printUsage()

	default:
		printer.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s <command> [options]

Commands:
  run       Listen on the configured services and start handlers on demand
            Options: --config (-c) <file>, --runlevel <n>, --debug
            SIGHUP switches to the runlevel in the configuration file
  check     Validate configuration file
            Options: --verbose (-v)
  version   Show version information

Configuration: %s
`, brand.Name, brand.Description, brand.BinaryName, brand.ConfigPath())
}
