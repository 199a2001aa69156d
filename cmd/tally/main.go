// Command tally is the CLI for TallyBook.
// It runs the demo catalog, evaluates ad-hoc grouped reports over the
// sample HR dataset, and serves the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/TallyBook/core/report"
	"github.com/FocuswithJustin/TallyBook/core/spec"
	"github.com/FocuswithJustin/TallyBook/core/sqlite"
	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/core/tally"
	"github.com/FocuswithJustin/TallyBook/internal/bundle"
	"github.com/FocuswithJustin/TallyBook/internal/demos"
	"github.com/FocuswithJustin/TallyBook/internal/hrsystem"
	"github.com/FocuswithJustin/TallyBook/internal/logging"
	"github.com/FocuswithJustin/TallyBook/internal/server"
)

const version = "1.0.0"

// CLI defines the command-line interface for tally.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"text"`

	// Command groups (noun-first organization)
	Demo    DemoGroup    `cmd:"" help:"Demo catalog operations (list, run, verify)"`
	Report  ReportCmd    `cmd:"" help:"Evaluate an ad-hoc grouped report"`
	Dataset DatasetGroup `cmd:"" help:"Sample HR dataset operations"`
	Bundle  BundleGroup  `cmd:"" help:"Report bundle operations (pack, unpack, verify, info)"`
	Serve   ServeCmd     `cmd:"" help:"Start the HTTP API server"`
	Version VersionCmd   `cmd:"" help:"Print version information"`
}

// DemoGroup contains demo catalog operations.
type DemoGroup struct {
	List   DemoListCmd   `cmd:"" help:"List the demo catalog"`
	Run    DemoRunCmd    `cmd:"" help:"Run a demo and print its report"`
	Verify DemoVerifyCmd `cmd:"" help:"Verify demos against their pinned results"`
}

// DatasetGroup contains sample dataset operations.
type DatasetGroup struct {
	Seed DatasetSeedCmd `cmd:"" help:"Seed the HR dataset into a SQLite database"`
	Show DatasetShowCmd `cmd:"" help:"Print the built-in employees table"`
}

// BundleGroup contains report bundle operations.
type BundleGroup struct {
	Pack   BundlePackCmd   `cmd:"" help:"Pack a directory of reports into a bundle"`
	Unpack BundleUnpackCmd `cmd:"" help:"Unpack a bundle and verify its contents"`
	Verify BundleVerifyCmd `cmd:"" help:"Verify bundle contents without extracting"`
	Info   BundleInfoCmd   `cmd:"" help:"Show bundle manifest"`
}

// DemoListCmd lists the demo catalog.
type DemoListCmd struct {
	JSON bool `help:"Output as JSON"`
}

func (c *DemoListCmd) Run() error {
	list := demos.List()

	if c.JSON {
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize catalog: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	category := ""
	for _, d := range list {
		if d.Category != category {
			category = d.Category
			fmt.Printf("%s\n", category)
		}
		fmt.Printf("  %-34s %s\n", d.ID, d.Title)
	}
	fmt.Printf("\n%d demos\n", len(list))
	return nil
}

// DemoRunCmd runs one demo and prints its report.
type DemoRunCmd struct {
	ID     string `arg:"" help:"Demo ID (see: tally demo list)"`
	Format string `help:"Output format (text, csv, json, xml)" default:"text"`
}

func (c *DemoRunCmd) Run() error {
	demo := demos.Get(c.ID)
	if demo == nil {
		return fmt.Errorf("demo not found: %s (see: tally demo list)", c.ID)
	}

	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	env := demos.NewEnv()
	rep, err := demo.Run(context.Background(), env)
	if err != nil {
		return fmt.Errorf("demo %s failed: %w", c.ID, err)
	}

	if format == report.FormatText && demo.Notes != "" {
		fmt.Println(demo.Notes)
		fmt.Println()
	}
	return report.Render(os.Stdout, rep, format)
}

// DemoVerifyCmd verifies demos against their pinned results.
type DemoVerifyCmd struct {
	ID   string `arg:"" optional:"" help:"Demo ID (default: all demos)"`
	JSON bool   `help:"Output as JSON"`
}

func (c *DemoVerifyCmd) Run() error {
	env := demos.NewEnv()
	ctx := context.Background()

	var reports []*demos.VerifyReport
	if c.ID != "" {
		rep, err := demos.Verify(ctx, env, c.ID)
		if err != nil {
			return err
		}
		reports = []*demos.VerifyReport{rep}
	} else {
		reports = demos.VerifyAll(ctx, env)
	}

	if c.JSON {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize reports: %w", err)
		}
		fmt.Println(string(data))
	} else {
		for _, rep := range reports {
			fmt.Printf("%s: %s\n", rep.DemoID, rep.Status)
			for _, result := range rep.Results {
				status := "[PASS]"
				if !result.Pass {
					status = "[FAIL]"
				}
				fmt.Printf("  %s %s\n", status, result.Label)
				if !result.Pass && result.Details != "" {
					fmt.Printf("    %s\n", result.Details)
				}
			}
		}
	}

	failed := 0
	for _, rep := range reports {
		if rep.Status != demos.StatusPass {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d demos failed verification", failed, len(reports))
	}
	if !c.JSON {
		fmt.Printf("\nAll %d demos verified.\n", len(reports))
	}
	return nil
}

// ReportCmd evaluates an ad-hoc grouped report.
type ReportCmd struct {
	Group     string `required:"" help:"Grouping clause: \"a, b\", \"ROLLUP(a, b)\", \"CUBE(a, b)\", or \"GROUPING SETS ((a), (b), ())\""`
	Agg       string `required:"" help:"Aggregate list, e.g. \"SUM(salary) AS total, COUNT(*)\""`
	Input     string `help:"SQLite database or CSV file to report over (default: built-in dataset)" type:"existingfile"`
	Format    string `help:"Output format (text, csv, json, xml)" default:"text"`
	Subtotals string `help:"Subtotal placement (first or last)" default:"last"`
	Title     string `help:"Report title"`
}

func (c *ReportCmd) Run() error {
	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	var subtotalsFirst bool
	switch c.Subtotals {
	case "first":
		subtotalsFirst = true
	case "last":
	default:
		return fmt.Errorf("invalid subtotals placement: %s (want first or last)", c.Subtotals)
	}

	gspec, err := spec.ParseGrouping(c.Group)
	if err != nil {
		return fmt.Errorf("invalid grouping clause: %w", err)
	}
	aggs, err := spec.ParseAggregates(c.Agg)
	if err != nil {
		return fmt.Errorf("invalid aggregate list: %w", err)
	}

	ctx := context.Background()
	t, err := loadInput(ctx, c.Input)
	if err != nil {
		return err
	}

	res, err := tally.Run(ctx, t, tally.Request{
		Spec:           gspec,
		Aggregates:     aggs,
		SubtotalsFirst: subtotalsFirst,
	})
	if err != nil {
		return fmt.Errorf("tally failed: %w", err)
	}

	rep := report.Build(res, report.Options{Title: c.Title})
	return report.Render(os.Stdout, rep, format)
}

// loadInput resolves the report input: the built-in dataset by default,
// a CSV file, or the employees table of a seeded SQLite database.
func loadInput(ctx context.Context, path string) (*table.Table, error) {
	if path == "" {
		return hrsystem.EmployeeTable(), nil
	}
	if strings.HasSuffix(path, ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		return table.ReadCSV(f)
	}

	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	return hrsystem.LoadEmployees(ctx, db)
}

// DatasetSeedCmd seeds the HR dataset into a SQLite database.
type DatasetSeedCmd struct {
	Out string `required:"" help:"Output SQLite database path" type:"path"`
}

func (c *DatasetSeedCmd) Run() error {
	db, err := sqlite.Open(c.Out)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := hrsystem.Seed(context.Background(), db); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	fmt.Printf("Seeded: %s\n", c.Out)
	fmt.Printf("  Employees:   %d\n", len(hrsystem.Employees()))
	fmt.Printf("  Departments: %d\n", len(hrsystem.Departments()))
	fmt.Printf("  Driver:      %s\n", sqlite.DriverName())
	return nil
}

// DatasetShowCmd prints the built-in employees table.
type DatasetShowCmd struct {
	Format string `help:"Output format (text, csv, json, xml)" default:"text"`
}

func (c *DatasetShowCmd) Run() error {
	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}
	rep := report.FromTable(hrsystem.EmployeeTable(), report.Options{Title: "HRSystem employees"})
	return report.Render(os.Stdout, rep, format)
}

// BundlePackCmd packs a directory of reports into a bundle.
type BundlePackCmd struct {
	Dir   string `arg:"" help:"Directory of rendered reports to bundle" type:"existingdir"`
	Out   string `required:"" help:"Output bundle path" type:"path"`
	Title string `help:"Bundle title"`
}

func (c *BundlePackCmd) Run() error {
	m, err := bundle.Pack(c.Dir, c.Out, c.Title)
	if err != nil {
		return fmt.Errorf("failed to pack bundle: %w", err)
	}

	fmt.Printf("Packed: %s\n", c.Out)
	fmt.Printf("  Bundle ID: %s\n", m.ID)
	fmt.Printf("  Files:     %d\n", len(m.Files))
	return nil
}

// BundleUnpackCmd unpacks a bundle and verifies its contents.
type BundleUnpackCmd struct {
	Bundle string `arg:"" help:"Path to bundle" type:"existingfile"`
	Out    string `required:"" help:"Output directory" type:"path"`
}

func (c *BundleUnpackCmd) Run() error {
	m, err := bundle.Unpack(c.Bundle, c.Out)
	if err != nil {
		return fmt.Errorf("failed to unpack bundle: %w", err)
	}

	fmt.Printf("Unpacked: %s\n", c.Out)
	fmt.Printf("  Bundle ID: %s\n", m.ID)
	for _, f := range m.Files {
		fmt.Printf("  %s (%d bytes, verified)\n", f.Name, f.Size)
	}
	return nil
}

// BundleVerifyCmd verifies bundle contents without extracting.
type BundleVerifyCmd struct {
	Bundle string `arg:"" help:"Path to bundle" type:"existingfile"`
}

func (c *BundleVerifyCmd) Run() error {
	m, err := bundle.Verify(c.Bundle)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Printf("Verified: %s\n", c.Bundle)
	fmt.Printf("  Bundle ID: %s\n", m.ID)
	fmt.Printf("  Files:     %d (all fingerprints match)\n", len(m.Files))
	return nil
}

// BundleInfoCmd shows the bundle manifest.
type BundleInfoCmd struct {
	Bundle string `arg:"" help:"Path to bundle" type:"existingfile"`
	JSON   bool   `help:"Output as JSON"`
}

func (c *BundleInfoCmd) Run() error {
	m, err := bundle.Info(c.Bundle)
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}

	if c.JSON {
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize manifest: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Bundle: %s\n", m.ID)
	if m.Title != "" {
		fmt.Printf("  Title:   %s\n", m.Title)
	}
	fmt.Printf("  Version: %s\n", m.Version)
	fmt.Printf("  Created: %s\n", m.CreatedAt)
	fmt.Printf("  Format:  %s\n", bundle.DetectFormat(c.Bundle))
	fmt.Printf("  Files:   %d\n", len(m.Files))
	for _, f := range m.Files {
		fmt.Printf("    %s (%d bytes)\n", f.Name, f.Size)
	}
	return nil
}

// ServeCmd starts the HTTP API server.
type ServeCmd struct {
	Port    int      `help:"HTTP server port" default:"8080"`
	Origin  []string `help:"Allowed CORS origin (repeatable; default allows all)"`
	TLSCert string   `name:"tls-cert" help:"TLS certificate file" type:"path"`
	TLSKey  string   `name:"tls-key" help:"TLS key file" type:"path"`
}

func (c *ServeCmd) Run() error {
	cfg := server.Config{
		Port:           c.Port,
		AllowedOrigins: c.Origin,
	}
	if c.TLSCert != "" || c.TLSKey != "" {
		cfg.TLS = server.TLSConfig{
			Enabled:  true,
			CertFile: c.TLSCert,
			KeyFile:  c.TLSKey,
		}
	}
	return server.New(cfg).Start()
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("tally version %s\n", version)
	fmt.Printf("  sqlite driver: %s\n", sqlite.DriverName())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("tally"),
		kong.Description("TallyBook - grouped reporting walkthroughs over a sample HR dataset"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
