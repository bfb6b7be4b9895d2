package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Report   *ReportCommand
	Browsers *BrowsersCommand
	Close    *CloseCommand
	Init     *InitCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "domaintally"
	parser.LongDescription = "Rank the domains you visited by reading the history databases of locally installed browsers."

	cmds := &commands{
		Report:   &ReportCommand{globals: &globals, version: version},
		Browsers: &BrowsersCommand{globals: &globals, version: version},
		Close:    &CloseCommand{globals: &globals, version: version},
		Init:     &InitCommand{globals: &globals},
	}

	parser.AddCommand("report", "Aggregate browsing history by domain", "Snapshot every located browser profile, count visits in the trailing window and print the domains ranked by visit count.", cmds.Report)
	parser.AddCommand("browsers", "List supported browsers and their profiles", "List each supported browser with its family, located profiles and whether it is running.", cmds.Browsers)
	parser.AddCommand("close", "Terminate running browsers", "Request termination of the named browsers' processes so their history files are released.", cmds.Close)
	parser.AddCommand("init", "Write the default config file", "Write the default configuration to --config or ~/.config/domaintally/config.yaml.", cmds.Init)

	return parser, &globals, cmds
}

// Run is the main entry point for the domaintally CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("domaintally %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
