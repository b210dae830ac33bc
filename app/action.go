package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/tobani/outrun/cloud"
	"github.com/tobani/outrun/coach"
	"github.com/tobani/outrun/internal/config"
	"github.com/tobani/outrun/internal/logutil"
	"github.com/tobani/outrun/internal/models"
	"github.com/tobani/outrun/internal/timeutil"
	"github.com/tobani/outrun/internal/ui"
	"github.com/tobani/outrun/plan"
	"github.com/tobani/outrun/store"
	"github.com/tobani/outrun/tracker"
	"github.com/tobani/outrun/transfer"
	"github.com/tobani/outrun/validate"
)

var (
	errRunIDRequired = errors.New(
		"a run id is required: see outrun list for ids",
	)
	errTokenRequired = errors.New(
		"a transfer code or shared link is required",
	)
	errWeightRequired = errors.New(
		"a weight in kilograms is required",
	)
	errImageRequired = errors.New(
		"the path to an activity screenshot is required",
	)
	errUnknownTheme = errors.New(
		"theme must be one of: dark, light",
	)
	errUnknownType = errors.New(
		"type must be one of: parkrun, long, easy, treadmill, other",
	)
	errNoRemote = errors.New(
		"cloud sync is not configured: set remote.endpoint and remote.identity in the config file",
	)
	errNoCoachKey = errors.New(
		"the coaching service is not configured: set coach.api_key or OUTRUN_COACH_API_KEY",
	)
	errEmptyLog = errors.New(
		"the run log is empty: log a session first",
	)
)

// firstNonEmptyString returns its first non-empty argument, or "" if
// all arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// controllerHelper builds the reconciliation controller with its
// persistence and sync collaborators, hydrated from the local
// snapshot. The returned logger is the only rotating writer on the log
// file and must be shared by anything else that logs. The caller must
// Close the returned store client.
func controllerHelper(
	_ *cli.Context,
) (*tracker.Controller, *config.Config, *store.Client, *slog.Logger, error) {
	cfg, err := config.New(
		config.WithViperConfig(config.ConfigFilePath()),
	)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return nil, nil, nil, nil, err
	}

	logger := logutil.NewLogger(config.LogFilePath())

	syncer := cloud.New(cfg.Remote.Endpoint, logger)

	ctrl := tracker.NewController(db, syncer, cfg.Remote.Identity, logger)

	if err := ctrl.Hydrate(); err != nil {
		db.Close()
		return nil, nil, nil, nil, err
	}

	return ctrl, cfg, db, logger, nil
}

// runFieldsFromFlags validates the run flags and assembles the fields
// for the tracker. All validation errors surface directly to the user.
func runFieldsFromFlags(ctx *cli.Context) (tracker.RunFields, error) {
	var fields tracker.RunFields

	km, err := validate.Distance(ctx.String("distance"))
	if err != nil {
		return fields, err
	}

	duration, _, err := validate.Duration(ctx.String("duration"))
	if err != nil {
		return fields, err
	}

	date, err := validate.Date(
		firstNonEmptyString(ctx.String("date"), timeutil.Today()),
	)
	if err != nil {
		return fields, err
	}

	runType := models.RunType(ctx.String("type"))

	var known bool

	for _, t := range models.RunTypes {
		if t == runType {
			known = true
			break
		}
	}

	if !known {
		return fields, errUnknownType
	}

	bpm, present, err := validate.HeartRate(ctx.String("hr"))
	if err != nil {
		return fields, err
	}

	fields = tracker.RunFields{
		Date:       date,
		DistanceKm: km,
		Duration:   duration,
		Source:     models.SourceManual,
		Type:       runType,
	}

	if present {
		fields.AvgHeartRate = bpm
	}

	return fields, nil
}

// logAction handles the log command which adds a run to the log.
func logAction(ctx *cli.Context) error {
	fields, err := runFieldsFromFlags(ctx)
	if err != nil {
		return err
	}

	ctrl, _, db, _, err := controllerHelper(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := ctrl.LogRun(fields)
	if err != nil {
		return err
	}

	ctrl.Wait()

	pterm.Success.Printfln(
		"Logged %.2fkm in %s (%s/km) on %s",
		run.DistanceKm,
		run.Duration,
		run.Pace,
		run.Date,
	)

	return nil
}

// editAction handles the edit command which replaces the fields of an
// existing run.
func editAction(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return errRunIDRequired
	}

	fields, err := runFieldsFromFlags(ctx)
	if err != nil {
		return err
	}

	ctrl, _, db, _, err := controllerHelper(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := ctrl.EditRun(id, fields)
	if err != nil {
		return err
	}

	ctrl.Wait()

	pterm.Success.Printfln("Updated run %s (%s/km)", run.ID, run.Pace)

	return nil
}

// weightAction handles the weight command which records a body-weight
// measurement.
func weightAction(ctx *cli.Context) error {
	raw := ctx.Args().First()
	if raw == "" {
		return errWeightRequired
	}

	kg, err := validate.Weight(raw)
	if err != nil {
		return err
	}

	date, err := validate.Date(
		firstNonEmptyString(ctx.String("date"), timeutil.Today()),
	)
	if err != nil {
		return err
	}

	ctrl, _, db, _, err := controllerHelper(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	entry, err := ctrl.LogWeight(date, kg)
	if err != nil {
		return err
	}

	ctrl.Wait()

	pterm.Success.Printfln("Recorded %.1fkg on %s", entry.WeightKg, entry.Date)

	return nil
}

// listAction prints the run log sorted by date descending.
func listAction(ctx *cli.Context) error {
	ctrl, _, db, _, err := controllerHelper(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	runs := tracker.SortedRuns(ctrl.Snapshot().Runs)

	if ctx.Bool("json") {
		b, err := json.Marshal(runs)
		if err != nil {
			return err
		}

		pterm.Println(string(b))

		return nil
	}

	data := [][]string{
		{"#", "DATE", "KM", "DURATION", "PACE", "HR", "TYPE", "ID"},
	}

	for i, r := range runs {
		hr := "-"
		if r.AvgHeartRate != 0 {
			hr = strconv.Itoa(r.AvgHeartRate)
		}

		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.Date,
			fmt.Sprintf("%.2f", r.DistanceKm),
			r.Duration,
			r.Pace + "/km",
			hr,
			string(r.Type),
			r.ID,
		})
	}

	ui.PrintTable(data, os.Stdout)

	return nil
}

// exportAction prints the transfer code for the full local state.
func exportAction(ctx *cli.Context) error {
	ctrl, cfg, db, _, err := controllerHelper(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	token, err := ctrl.Export()
	if err != nil {
		return err
	}

	if ctx.Bool("link") {
		pterm.Println(transfer.ShareLink(cfg.Share.BaseURL, token))
		return nil
	}

	pterm.Println(token)

	return nil
}

// importAction applies a transfer code to the local log. The import
// overwrites whatever fields the code carries; a corrupt code leaves
// the log untouched.
func importAction(ctx *cli.Context) error {
	raw := ctx.Args().First()
	if raw == "" {
		return errTokenRequired
	}

	ctrl, _, db, _, err := controllerHelper(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := ctrl.Import(raw); err != nil {
		return err
	}

	ctrl.Wait()

	state := ctrl.Snapshot()

	pterm.Success.Printfln(
		"Imported %d runs and %d weight entries",
		len(state.Runs),
		len(state.Weights),
	)

	return nil
}

// syncAction pushes the full log to the cloud document and, with
// --watch, follows remote changes until interrupted.
func syncAction(ctx *cli.Context) error {
	ctrl, _, db, _, err := controllerHelper(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if !ctrl.Linked() {
		return errNoRemote
	}

	ctrl.PushAll()
	ctrl.Wait()

	pterm.Success.Println("Pushed the training log to the cloud document")

	if !ctx.Bool("watch") {
		return nil
	}

	watchCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
	defer stop()

	unsubscribe, err := ctrl.Subscribe(watchCtx)
	if err != nil {
		return err
	}
	defer unsubscribe()

	pterm.Info.Println("Watching for remote changes. Press Ctrl+C to stop.")

	<-watchCtx.Done()

	return nil
}

// ingestAction extracts a run from an activity screenshot. Every
// extracted field passes validation before it enters the log; a
// rejected distance or duration aborts the ingestion.
func ingestAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errImageRequired
	}

	image, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ctrl, cfg, db, logger, err := controllerHelper(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Coach.APIKey == "" {
		return errNoCoachKey
	}

	client := coach.NewClient(cfg.Coach.APIKey, logger)

	if cfg.Coach.Model != "" {
		client.SetModel(cfg.Coach.Model)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Reading screenshot...")

	ext, err := client.ExtractRun(ctx.Context, image)
	if err != nil {
		spinner.Fail("Extraction failed")
		return err
	}

	fields, err := coach.IngestExtraction(ext)
	if err != nil {
		spinner.Fail("Extraction rejected, log the run manually")
		return err
	}

	run, err := ctrl.LogRun(fields)
	if err != nil {
		spinner.Fail("Saving the run failed")
		return err
	}

	ctrl.Wait()

	spinner.Success(pterm.Sprintf(
		"Ingested %.2fkm %s run from %s",
		run.DistanceKm,
		run.Type,
		run.Date,
	))

	insight := client.Advice(
		ctx.Context,
		run,
		ctrl.Snapshot().Runs,
		cfg.ModelProfile(),
	)
	printInsight(insight)

	return nil
}

// coachAction requests coaching advice for the most recent run.
func coachAction(ctx *cli.Context) error {
	ctrl, cfg, db, logger, err := controllerHelper(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	runs := tracker.SortedRuns(ctrl.Snapshot().Runs)
	if len(runs) == 0 {
		return errEmptyLog
	}

	if cfg.Coach.APIKey == "" {
		return errNoCoachKey
	}

	client := coach.NewClient(cfg.Coach.APIKey, logger)

	if cfg.Coach.Model != "" {
		client.SetModel(cfg.Coach.Model)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Consulting the coach...")

	insight := client.Advice(ctx.Context, runs[0], runs, cfg.ModelProfile())

	spinner.Stop()

	printInsight(insight)

	return nil
}

func printInsight(insight models.Insight) {
	pterm.DefaultSection.Println("Coaching Insight")
	pterm.Printfln("%s %s", pterm.Bold.Sprint("Summary:"), insight.Summary)
	pterm.Printfln("%s %s", pterm.Bold.Sprint("Tone check:"), insight.ToneCheck)
	pterm.Printfln(
		"%s %s",
		pterm.Bold.Sprint("Next session:"),
		insight.Recommendation,
	)
	pterm.Printfln("%s %s", pterm.Bold.Sprint("Focus area:"), insight.FocusArea)
}

// themeAction records the display theme preference.
func themeAction(ctx *cli.Context) error {
	theme := models.Theme(ctx.Args().First())

	if theme != models.ThemeDark && theme != models.ThemeLight {
		return errUnknownTheme
	}

	ctrl, _, db, _, err := controllerHelper(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := ctrl.SetTheme(theme); err != nil {
		return err
	}

	pterm.Success.Printfln("Theme set to %s", theme)

	return nil
}

// planAction shows the training-plan week currently in effect.
func planAction(_ *cli.Context) error {
	week := plan.CurrentWeek(time.Now())

	status := "Loading"
	if week.IsRecovery {
		status = "Recovery"
	}

	pterm.DefaultSection.Printfln("Week %d (Phase %d) - %s", week.Number, week.Phase, status)
	pterm.Printfln("Parkrun goal:  %gkm", week.ParkrunKm)
	pterm.Printfln("Long run goal: %gkm", week.LongRunKm)

	if week.Milestone != "" {
		pterm.Printfln("Milestone:     %s", week.Milestone)
	}

	return nil
}

// defaultAction prints a summary of the training log and the current
// plan week.
func defaultAction(ctx *cli.Context) error {
	ctrl, _, db, _, err := controllerHelper(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	state := ctrl.Snapshot()
	week := plan.CurrentWeek(time.Now())

	var totalKm float64

	for _, r := range state.Runs {
		totalKm += r.DistanceKm
	}

	pterm.DefaultSection.Println("Outrun")
	pterm.Printfln("Week %d of the plan, %d runs logged, %.1fkm total",
		week.Number,
		len(state.Runs),
		totalKm,
	)

	if len(state.Weights) > 0 {
		pterm.Printfln(
			"Latest weight: %.1fkg (%s)",
			state.Weights[0].WeightKg,
			state.Weights[0].Date,
		)
	}

	if ctrl.Linked() {
		pterm.Printfln("Cloud sync: linked")
	} else {
		pterm.Printfln("Cloud sync: local-only")
	}

	pterm.Println("\nRun outrun --help to see all commands.")

	return nil
}

// editConfigAction opens the outrun config file in the user's default
// text editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cmd := exec.Command(editor, config.ConfigFilePath())

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}
