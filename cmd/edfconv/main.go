package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/noriah/edfconv/input"

	_ "github.com/noriah/edfconv/input/all"

	"github.com/integrii/flaggy"
)

// AppName is the app name
const AppName = "edfconv"

// AppDesc is the app description
const AppDesc = "Decimate, window and export biosignal recordings"

// AppSite is the app website
const AppSite = "https://github.com/noriah/edfconv"

var version = "unknown"

type command int

const (
	cmdNone command = iota
	cmdCheck
	cmdConvert
	cmdInspect
	cmdListBackends
)

func main() {
	log.SetFlags(0)

	cfg := newZeroConfig()

	cmd := doFlags(&cfg)
	if cmd == cmdNone {
		return
	}

	chk(cfg.validate(), "invalid config")

	logger := newLogger(os.Stderr, &cfg)
	slog.SetDefault(logger)

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var (
		failed bool
		err    error
	)

	switch cmd {
	case cmdCheck:
		failed, err = runCheck(ctx, os.Stdout, &cfg, logger)
		chk(err, "check failed")

	case cmdConvert:
		failed, err = runConvert(ctx, os.Stdout, &cfg, logger)
		chk(err, "convert failed")

	case cmdInspect:
		chk(runInspect(os.Stdout, &cfg), "inspect failed")

	case cmdListBackends:
		for _, backend := range input.Backends {
			fmt.Printf("- %s %v\n", backend.Name, backend.Extensions)
		}
	}

	if failed {
		cancel()
		os.Exit(1)
	}
}

func doFlags(cfg *config) command {

	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.AdditionalHelpPrepend = AppSite
	parser.Version = version

	parser.Bool(&cfg.verbose, "v", "verbose", "log at debug level (or set LOG_LEVEL)")
	parser.Bool(&cfg.jsonLog, "j", "json", "log as json")

	checkCmd := flaggy.NewSubcommand("check")
	checkCmd.Description = "read the start, middle and end of every channel of every recording"
	checkCmd.AddPositionalValue(&cfg.dir, "dir", 1, true, "directory of recordings")

	parser.AttachSubcommand(checkCmd, 1)

	convertCmd := flaggy.NewSubcommand("convert")
	convertCmd.Description = "decimate, scale and window every channel of every recording"
	convertCmd.AddPositionalValue(&cfg.dir, "dir", 1, true, "directory of recordings")
	convertCmd.String(&cfg.configPath, "c", "config",
		"parameter file (json or yaml, default $EDFCONV_CONFIG or config.json)")
	convertCmd.String(&cfg.format, "f", "format", "output format (csv, store)")
	convertCmd.String(&cfg.outDir, "o", "out", "output directory")
	convertCmd.Int(&cfg.workers, "w", "workers", "files converted at once")
	convertCmd.Bool(&cfg.skipCheck, "s", "skip-check", "do not pre-flight the recordings")

	parser.AttachSubcommand(convertCmd, 1)

	inspectCmd := flaggy.NewSubcommand("inspect")
	inspectCmd.Description = "summarise a recording or a converted file"
	inspectCmd.AddPositionalValue(&cfg.file, "file", 1, true, "recording, .wds store or .csv table")
	inspectCmd.Float64(&cfg.inspectSeconds, "l", "length", "seconds of signal to summarise")

	parser.AttachSubcommand(inspectCmd, 1)

	listBackendsCmd := flaggy.Subcommand{
		Name:                 "list-backends",
		ShortName:            "lb",
		Description:          "list all supported input formats",
		AdditionalHelpAppend: "\nfiles are matched by extension",
	}

	parser.AttachSubcommand(&listBackendsCmd, 1)

	chk(parser.Parse(), "failed to parse arguments")

	switch {
	case checkCmd.Used:
		return cmdCheck
	case convertCmd.Used:
		return cmdConvert
	case inspectCmd.Used:
		return cmdInspect
	case listBackendsCmd.Used:
		return cmdListBackends
	}

	parser.ShowHelp()
	return cmdNone
}

func chk(err error, wrap string) {
	if err != nil {
		log.Fatalln(wrap+": ", err)
	}
}
