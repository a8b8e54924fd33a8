package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/alecthomas/kong"
)

// Version is reported to the engine in Metadata calls.
const Version = "0.2.0"

// CLI represents the main CLI structure
type CLI struct {
	Stdio    bool   `help:"Serve the plugin protocol over stdin/stdout. Nushell passes this when it launches the plugin."`
	Config   string `type:"path" help:"Config file path (default: XDG config dir)"`
	LogLevel string `help:"Log level override"`

	// Serve is the default command - what Nushell invokes
	Serve ServeCmd `cmd:"" default:"1" help:"Serve the plugin protocol (default)"`

	// Other commands
	Pick   PickCmd   `cmd:"" help:"Show a dialog directly, without a Nushell host"`
	Doctor DoctorCmd `cmd:"" help:"Report which dialog backends are usable here"`
}

func main() {
	// Native dialog calls must originate on the main thread on macOS, and
	// the serve loop runs commands on the calling goroutine.
	runtime.LockOSThread()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("nu_plugin_file_dialog"),
		kong.Description("Nushell plugin exposing the native file dialog"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
