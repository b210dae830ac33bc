// Package app defines the outrun command-line interface.
package app

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/tobani/outrun/internal/config"
)

const (
	envNoColor       = "NO_COLOR"
	envOutrunNoColor = "OUTRUN_NO_COLOR"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

func beforeAction(ctx *cli.Context) error {
	config.InitializePaths()

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envOutrunNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}

// Get retrieves the outrun app instance.
func Get() *cli.App {
	outrunApp := &cli.App{
		Name: "outrun",
		Usage: `
		Outrun is a personal fitness dashboard for the command line. It keeps
		a local training log of runs and body-weight entries, derives pace and
		progress against a fixed training plan, and moves data between devices
		with a portable transfer code or an optional cloud document.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "log",
				Usage:  "Add a run to the training log",
				Action: logAction,
				Flags: []cli.Flag{
					distanceFlag,
					durationFlag,
					dateFlag,
					typeFlag,
					heartRateFlag,
				},
			},
			{
				Name:      "edit",
				Usage:     "Replace the fields of an existing run",
				ArgsUsage: "<run id>",
				Action:    editAction,
				Flags: []cli.Flag{
					distanceFlag,
					durationFlag,
					dateFlag,
					typeFlag,
					heartRateFlag,
				},
			},
			{
				Name:      "weight",
				Usage:     "Add a body-weight measurement",
				ArgsUsage: "<kg>",
				Action:    weightAction,
				Flags:     []cli.Flag{dateFlag},
			},
			{
				Name:   "list",
				Usage:  "Print the run log, most recent first",
				Action: listAction,
				Flags:  []cli.Flag{jsonFlag},
			},
			{
				Name:   "export",
				Usage:  "Print a transfer code for moving data to another device",
				Action: exportAction,
				Flags:  []cli.Flag{linkFlag},
			},
			{
				Name:      "import",
				Usage:     "Apply a transfer code or shared link to the local log",
				ArgsUsage: "<code or link>",
				Action:    importAction,
			},
			{
				Name:   "sync",
				Usage:  "Push the log to the cloud document and optionally follow remote changes",
				Action: syncAction,
				Flags:  []cli.Flag{watchFlag},
			},
			{
				Name:      "ingest",
				Usage:     "Extract a run from an activity screenshot",
				ArgsUsage: "<image>",
				Action:    ingestAction,
			},
			{
				Name:   "coach",
				Usage:  "Request coaching advice for the most recent run",
				Action: coachAction,
			},
			{
				Name:      "theme",
				Usage:     "Set the display theme",
				ArgsUsage: "<dark|light>",
				Action:    themeAction,
			},
			{
				Name:   "plan",
				Usage:  "Show the training-plan week currently in effect",
				Action: planAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable coloured output",
			},
		},
		Action: defaultAction,
		Before: beforeAction,
	}

	return outrunApp
}
