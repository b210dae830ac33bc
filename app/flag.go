package app

import "github.com/urfave/cli/v2"

var distanceFlag = &cli.StringFlag{
	Name:    "distance",
	Aliases: []string{"k"},
	Usage:   "Session distance in kilometres",
}

var durationFlag = &cli.StringFlag{
	Name:    "duration",
	Aliases: []string{"d"},
	Usage:   "Elapsed time as HH:MM:SS, MM:SS, or SS",
}

var dateFlag = &cli.StringFlag{
	Name:  "date",
	Usage: "Session date (defaults to today)",
}

var typeFlag = &cli.StringFlag{
	Name:    "type",
	Aliases: []string{"t"},
	Usage:   "Session type: parkrun, long, easy, treadmill, or other",
	Value:   "long",
}

var heartRateFlag = &cli.StringFlag{
	Name:  "hr",
	Usage: "Average heart rate in BPM (optional)",
}

var jsonFlag = &cli.BoolFlag{
	Name:  "json",
	Usage: "Print output in JSON format",
}

var linkFlag = &cli.BoolFlag{
	Name:  "link",
	Usage: "Print a shareable link instead of a bare code",
}

var watchFlag = &cli.BoolFlag{
	Name:    "watch",
	Aliases: []string{"w"},
	Usage:   "Keep following remote changes until interrupted",
}
