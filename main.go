package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/chazu/toponame/pkg/config"
	"github.com/chazu/toponame/pkg/topo"
)

var (
	version = "dev"
	cfgFile string
	debug   bool
	traceOn bool
	format  string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:           "toponame",
	Short:         "Persistent topological names for extruded sketch solids",
	Long:          `toponame evaluates a sketch source, extrudes the faces it requests and names every face, edge and coedge of the result after the sketch entities it came from.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct FILE",
	Short: "Evaluate a sketch source and print the names of every solid element",
	Args:  cobra.ExactArgs(1),
	RunE:  runReconstruct,
}

var diffCmd = &cobra.Command{
	Use:   "diff OLD NEW",
	Short: "List the names lost and gained between two revisions of a sketch source",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

var regionsCmd = &cobra.Command{
	Use:   "regions FILE",
	Short: "Merge the sketch faces into regions and report their preview meshes",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegions,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./"+config.DefaultFile+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
	rootCmd.PersistentFlags().BoolVar(&traceOn, "trace", false, "write reconstruction spans to stderr")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(reconstructCmd, diffCmd, regionsCmd)
}

func initConfig() error {
	v := viper.New()
	var err error
	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	if traceOn {
		cfg.Trace.Enabled = true
	}
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown --format %q: want text, json or yaml", format)
	}
	return nil
}

// newLogger builds the slog logger selected by the log config. Output goes
// to w so that stdout stays reserved for command results.
func newLogger(lc config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// withApp runs fn with an App built from the loaded config and tears down
// tracing afterwards.
func withApp(fn func(ctx context.Context, app *App) error) error {
	tr, err := setupTracing(cfg.Trace.Enabled, os.Stderr)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer func() {
		if err := tr.Shutdown(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()
	return fn(ctx, NewApp(cfg, newLogger(cfg.Log, os.Stderr)))
}

func readSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading source: %w", err)
	}
	return string(b), nil
}

func runReconstruct(cmd *cobra.Command, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, app *App) error {
		res := app.EvaluateContext(ctx, src)
		if err := write(cmd.OutOrStdout(), res, writeEvalText); err != nil {
			return err
		}
		return resultError(res.Errors, res.Report)
	})
}

func runDiff(cmd *cobra.Command, args []string) error {
	before, err := readSource(args[0])
	if err != nil {
		return err
	}
	after, err := readSource(args[1])
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, app *App) error {
		res := app.Diff(before, after)
		if err := write(cmd.OutOrStdout(), res, writeDiffText); err != nil {
			return err
		}
		return resultError(res.Errors, nil)
	})
}

func runRegions(cmd *cobra.Command, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, app *App) error {
		res := app.Regions(src)
		summary := regionsSummaryOf(res)
		if err := write(cmd.OutOrStdout(), summary, writeRegionsText); err != nil {
			return err
		}
		return resultError(res.Errors, nil)
	})
}

// resultError turns evaluation errors and fatal anomalies into a non-nil
// command error so the exit status reflects them.
func resultError(errs []EvalErrorData, report *topo.Report) error {
	if len(errs) > 0 {
		return fmt.Errorf("%d evaluation error(s)", len(errs))
	}
	if report != nil && !report.OK() {
		return fmt.Errorf("reconstruction reported fatal anomalies")
	}
	return nil
}

// write encodes v in the selected format, using text for the text format.
func write[T any](w io.Writer, v T, text func(io.Writer, T) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w, v)
	}
}

func writeErrors(w io.Writer, errs []EvalErrorData) {
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(w, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "error: %s\n", e.Message)
		}
	}
}

func writeEvalText(w io.Writer, res EvalResult) error {
	writeErrors(w, res.Errors)
	for _, s := range res.Solids {
		fmt.Fprintf(w, "solid %s (face %s): %d faces, %d edges, %d coedges\n",
			s.Name, s.Face, s.Faces, s.Edges, s.Coedges)
	}
	for _, t := range res.Tags {
		role := ""
		if t.UserData != nil {
			role = string(t.UserData.Role)
		}
		fmt.Fprintf(w, "  %-8s %-16s %-24s %s\n", t.Kind, t.Element, t.Tag, role)
	}
	if res.Report != nil {
		for _, a := range res.Report.Anomalies {
			fmt.Fprintln(w, a.Error())
		}
	}
	if len(res.Summary) > 0 {
		keys := make([]string, 0, len(res.Summary))
		for k := range res.Summary {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%d", k, res.Summary[k])
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
	}
	return nil
}

func writeDiffText(w io.Writer, res DiffResult) error {
	writeErrors(w, res.Errors)
	for _, n := range res.Lost {
		fmt.Fprintf(w, "- %s\n", n)
	}
	for _, n := range res.Gained {
		fmt.Fprintf(w, "+ %s\n", n)
	}
	fmt.Fprintf(w, "%d kept, %d lost, %d gained\n", res.Kept, len(res.Lost), len(res.Gained))
	return nil
}

// regionSummary is the printable form of one region mesh.
type regionSummary struct {
	Part      string `json:"part" yaml:"part"`
	Color     string `json:"color" yaml:"color"`
	Vertices  int    `json:"vertices" yaml:"vertices"`
	Triangles int    `json:"triangles" yaml:"triangles"`
}

type regionsSummary struct {
	Errors  []EvalErrorData `json:"errors" yaml:"errors"`
	Regions []regionSummary `json:"regions" yaml:"regions"`
}

func regionsSummaryOf(res RegionsResult) regionsSummary {
	out := regionsSummary{Errors: res.Errors, Regions: []regionSummary{}}
	for _, m := range res.Meshes {
		out.Regions = append(out.Regions, regionSummary{
			Part:      m.PartName,
			Color:     m.Color,
			Vertices:  len(m.Vertices) / 3,
			Triangles: len(m.Indices) / 3,
		})
	}
	return out
}

func writeRegionsText(w io.Writer, res regionsSummary) error {
	writeErrors(w, res.Errors)
	for _, r := range res.Regions {
		fmt.Fprintf(w, "%s %s: %d vertices, %d triangles\n", r.Part, r.Color, r.Vertices, r.Triangles)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("toponame: %v", err)
		os.Exit(1)
	}
}
