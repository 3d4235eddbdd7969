package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/temoto/moose/cmd/moose/drive"
	"github.com/temoto/moose/cmd/moose/sign"
	"github.com/temoto/moose/cmd/moose/subcmd"
	"github.com/temoto/moose/cmd/moose/watch"
	"github.com/temoto/moose/config"
	"github.com/temoto/moose/log2"
)

var modules = []subcmd.Mod{
	drive.Mod,
	watch.Mod,
	sign.Mod,
}

func main() {
	flagConfig := flag.String("config", config.DefaultFile, "")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: moose [-config moose.hcl] command [args]\ncommands:\n")
		for _, m := range modules {
			fmt.Fprintf(flag.CommandLine.Output(), "  %-6s %s\n", m.Name, m.Usage)
		}
		flag.PrintDefaults()
	}
	flag.Parse()

	log := log2.NewStderr(log2.LInfo)
	if subcmd.SdNotify(log, "STATUS=starting") {
		// under systemd, journal adds timestamps
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}

	mod, err := subcmd.Parse(flag.Arg(0), modules)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustReadConfig(log, config.NewOsFullReader(), *flagConfig)
	if cfg.LogDebug {
		log.SetLevel(log2.LDebug)
	}
	log.Debugf("config robot path=%s url=%s refresh=%s", cfg.Robot.Path, cfg.Robot.BaseURL(), cfg.Robot.RefreshInterval())

	ctx := context.Background()
	if err := mod.Main(ctx, cfg, log, flag.Args()[1:]); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
}
