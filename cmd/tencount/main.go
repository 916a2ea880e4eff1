package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the multiplayer room server"`
	Solo     SoloCmd          `cmd:"" help:"Play at a terminal table against bots"`
	Simulate SimulateCmd      `cmd:"" help:"Run bot-only games and report standings"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tencount"),
		kong.Description("Card room for the ten-count bust-out betting game"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
