// XDR Analyzer - inspection and analysis tool for XDR flight recordings
// This program decodes .xdr recording files, prints their schema and frames,
// derives statistics, spectra and correlations, exports CSV, and can follow
// a recording that is still being written.
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"xdr-analyzer/internal/analysis"
	"xdr-analyzer/internal/config"
	"xdr-analyzer/internal/dataset"
	"xdr-analyzer/internal/tail"
	"xdr-analyzer/internal/version"
	"xdr-analyzer/internal/xdr"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Command line flag variables
var (
	cfgFile       string  // Configuration file path
	showVersion   bool    // Show version information
	showDatarefs  bool    // List the dataref schema
	frameIndex    int     // Frame to display
	statsParam    string  // Parameter to summarize
	spectrumParam string  // Parameter to compute a spectrum for
	correlateList string  // Comma-separated parameters to correlate
	exportPath    string  // CSV export destination
	follow        bool    // Keep polling an in-progress recording
	rangeStart    float64 // Lower timestamp bound (inclusive)
	rangeEnd      float64 // Upper timestamp bound (inclusive)
	maxPoints     int     // Point ceiling for extracted series
	logLevel      string  // Log level override
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "xdr-analyzer [file.xdr]",
	Short: "Inspect and analyze XDR flight recording files",
	Long: `XDR Analyzer decodes .xdr flight recordings and reports on their contents.

Display and analysis modes:
  --datarefs    List the recorded dataref schema
  --frame N     Show every value of frame N
  --stats       Summary statistics for one parameter
  --spectrum    Frequency spectrum of one parameter
  --correlate   Pairwise correlation matrix for a parameter list
  --export      Write all frames as CSV
  --follow      Keep reading while the recording grows`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("XDR Analyzer"))
			return
		}

		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Error: filename required\n")
			cmd.Usage()
			os.Exit(1)
		}

		if err := run(args[0], cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// init initializes the CLI flags and configuration
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().BoolVarP(&showDatarefs, "datarefs", "d", false, "list the recorded dataref schema")
	rootCmd.Flags().IntVar(&frameIndex, "frame", -1, "display all values of one frame by index")
	rootCmd.Flags().StringVar(&statsParam, "stats", "", "summary statistics for a parameter")
	rootCmd.Flags().StringVar(&spectrumParam, "spectrum", "", "frequency spectrum of a parameter")
	rootCmd.Flags().StringVar(&correlateList, "correlate", "", "comma-separated parameters to correlate")
	rootCmd.Flags().StringVarP(&exportPath, "export", "e", "", "write all frames as CSV to this path")
	rootCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep reading while the recording grows")
	rootCmd.Flags().Float64Var(&rangeStart, "start", 0, "lower timestamp bound for extracted series (inclusive)")
	rootCmd.Flags().Float64Var(&rangeEnd, "end", 0, "upper timestamp bound for extracted series (inclusive)")
	rootCmd.Flags().IntVar(&maxPoints, "max-points", dataset.DefaultPointCeiling, "point ceiling for extracted series")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Bind command line flags to viper configuration keys
	viper.BindPFlag("viewer.point_ceiling", rootCmd.Flags().Lookup("max-points"))
	viper.BindPFlag("logging.level", rootCmd.Flags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.ReadInConfig()
}

// run is the main application logic
func run(filename string, cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	logger, err := buildLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	d, err := dataset.Open(filename)
	if err != nil {
		return err
	}

	displaySummary(filename, d)

	if reason, marker := d.LastStop(); reason == xdr.StopForeignMarker {
		logger.Warn("unrecognized frame marker, decoding stopped before it",
			zap.ByteString("marker", marker[:]))
	}

	if showDatarefs {
		displayDatarefs(d)
	}
	if cmd.Flags().Changed("frame") {
		if err := displayFrame(d, frameIndex); err != nil {
			return err
		}
	}

	tr := timeRange(cmd)
	if statsParam != "" {
		if err := displayStats(d, statsParam, tr); err != nil {
			return err
		}
	}
	if spectrumParam != "" {
		if err := displaySpectrum(d, spectrumParam, tr); err != nil {
			return err
		}
	}
	if correlateList != "" {
		if err := displayCorrelation(d, correlateList, tr, cfg.Viewer.PointCeiling); err != nil {
			return err
		}
	}
	if exportPath != "" {
		if err := exportCSV(d, exportPath); err != nil {
			return err
		}
	}

	if follow && !d.Complete() {
		return followRecording(filename, d, cfg.Live.PollInterval, logger)
	}
	return nil
}

// buildLogger constructs a console zap logger at the configured level
func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

// timeRange builds the optional inclusive timestamp filter from --start/--end
func timeRange(cmd *cobra.Command) *dataset.TimeRange {
	if !cmd.Flags().Changed("start") && !cmd.Flags().Changed("end") {
		return nil
	}
	tr := &dataset.TimeRange{Start: float32(rangeStart), End: float32(rangeEnd)}
	if !cmd.Flags().Changed("end") {
		// Open-ended range: --start alone keeps everything from there on.
		tr.End = math.MaxFloat32
	}
	return tr
}

// displaySummary prints file information and the recording header
func displaySummary(filename string, d *dataset.Dataset) {
	fmt.Printf("XDR RECORDING ANALYZER %s\n\n", version.GetFullVersion())

	if fileInfo, err := os.Stat(filename); err == nil {
		fmt.Printf("📁 File Information:\n")
		fmt.Printf("Name: %s\n", filepath.Base(filename))
		fmt.Printf("Size: %.2f KB (%d bytes)\n", float64(fileInfo.Size())/1024, fileInfo.Size())
		fmt.Printf("Modified: %s\n\n", fileInfo.ModTime().Format("2006-01-02 15:04:05"))
	}

	h := d.Header()
	fmt.Printf("📋 Recording Header:\n")
	fmt.Printf("Format Version: %d\n", h.Version)
	fmt.Printf("Recording Level: %s\n", h.Level)
	fmt.Printf("Frame Interval: %g s\n", h.Interval)
	fmt.Printf("Start Time: %s\n", time.Unix(int64(h.StartTime), 0).UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Printf("Datarefs: %d\n", h.DatarefCount)
	fmt.Printf("Frames Decoded: %d\n", d.FrameCount())

	if d.Complete() {
		f := d.Footer()
		fmt.Printf("Status: sealed (%d frames declared)\n", f.TotalFrames)
		if f.TotalFrames != uint32(d.FrameCount()) {
			fmt.Printf("Warning: footer declares %d frames, decoded %d\n", f.TotalFrames, d.FrameCount())
		}
		if secs, ok := d.Duration(); ok {
			fmt.Printf("Duration: %s\n", time.Duration(secs)*time.Second)
		}
	} else {
		fmt.Printf("Status: in progress (no footer yet)\n")
	}
	fmt.Println()
}

// displayDatarefs prints the recorded schema as a table
func displayDatarefs(d *dataset.Dataset) {
	fmt.Printf("📊 Dataref Schema:\n")
	fmt.Printf("%-4s %-52s %-8s %s\n", "#", "Name", "Type", "Arity")
	for i, def := range d.Datarefs() {
		arity := "scalar"
		if def.ArraySize > 0 {
			arity = fmt.Sprintf("[%d]", def.ArraySize)
		}
		fmt.Printf("%-4d %-52s %-8s %s\n", i, def.Name, def.Kind, arity)
	}
	fmt.Println()
}

// displayFrame prints every value of one frame
func displayFrame(d *dataset.Dataset, idx int) error {
	if idx < 0 || idx >= d.FrameCount() {
		return fmt.Errorf("frame %d out of range (0..%d)", idx, d.FrameCount()-1)
	}

	frame := d.Frame(idx)
	fmt.Printf("🔎 Frame %d (t=%g s):\n", idx, frame.Timestamp)
	for i, def := range d.Datarefs() {
		fmt.Printf("%-52s %s\n", def.Name, formatValue(frame.Values[i]))
	}
	fmt.Println()
	return nil
}

// formatValue renders one frame value for tabular display
func formatValue(v xdr.Value) string {
	switch v := v.(type) {
	case xdr.Float:
		return fmt.Sprintf("%g", float32(v))
	case xdr.Int:
		return fmt.Sprintf("%d", int32(v))
	case xdr.String:
		return fmt.Sprintf("%q", string(v))
	case xdr.FloatArray:
		parts := make([]string, len(v))
		for i, f := range v {
			parts[i] = fmt.Sprintf("%g", f)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case xdr.IntArray:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "?"
}

// lookupParameter resolves a catalog name like "sim/cockpit/engine/fuel_flow"
// or "sim/flightmodel/engine/n1[2]" to its series coordinates
func lookupParameter(d *dataset.Dataset, name string) (dataset.Parameter, error) {
	for _, p := range d.Parameters() {
		if p.Name == name {
			return p, nil
		}
	}
	return dataset.Parameter{}, fmt.Errorf("unknown parameter %q (see --datarefs for the schema)", name)
}

// displayStats prints summary statistics for one parameter at full resolution
func displayStats(d *dataset.Dataset, name string, tr *dataset.TimeRange) error {
	p, err := lookupParameter(d, name)
	if err != nil {
		return err
	}

	// Statistics always use every frame; the point ceiling is display-only.
	_, vals := d.Series(p.Dataref, p.ArrayIndex, tr, 1)
	stats, ok := analysis.Describe(vals)
	if !ok {
		return fmt.Errorf("no samples for %q in the selected range", name)
	}

	fmt.Printf("📈 Statistics for %s:\n", name)
	fmt.Printf("Count:  %d\n", stats.Count)
	fmt.Printf("Min:    %g\n", stats.Min)
	fmt.Printf("Max:    %g\n", stats.Max)
	fmt.Printf("Mean:   %g\n", stats.Mean)
	fmt.Printf("Median: %g\n", stats.Median)
	fmt.Printf("Std:    %g\n", stats.Std)
	fmt.Printf("Range:  %g\n\n", stats.Range)
	return nil
}

// displaySpectrum prints the strongest frequency components of one parameter
func displaySpectrum(d *dataset.Dataset, name string, tr *dataset.TimeRange) error {
	p, err := lookupParameter(d, name)
	if err != nil {
		return err
	}

	ts, vals := d.Series(p.Dataref, p.ArrayIndex, tr, 1)
	freqs, mags := analysis.Spectrum(ts, vals)
	if len(freqs) == 0 {
		return fmt.Errorf("need at least %d samples for a spectrum, have %d",
			analysis.MinSpectrumSamples, len(vals))
	}

	order := make([]int, len(mags))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return mags[order[a]] > mags[order[b]] })

	fmt.Printf("🔊 Spectrum for %s (%d samples, %d bins):\n", name, len(vals), len(freqs))
	fmt.Printf("%-14s %s\n", "Freq (Hz)", "Magnitude")
	top := 8
	if top > len(order) {
		top = len(order)
	}
	for _, i := range order[:top] {
		fmt.Printf("%-14.4f %.6g\n", freqs[i], mags[i])
	}
	fmt.Println()
	return nil
}

// displayCorrelation prints the pairwise Pearson matrix for a parameter list
func displayCorrelation(d *dataset.Dataset, list string, tr *dataset.TimeRange, ceiling int) error {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) < 2 {
		return fmt.Errorf("--correlate needs at least two comma-separated parameters")
	}

	// One shared stride keeps every series aligned frame for frame.
	stride := dataset.StrideFor(d.FrameCount(), ceiling)
	series := make([][]float64, len(names))
	for i, name := range names {
		p, err := lookupParameter(d, name)
		if err != nil {
			return err
		}
		_, series[i] = d.Series(p.Dataref, p.ArrayIndex, tr, stride)
	}

	matrix := analysis.CorrelationMatrix(series)
	fmt.Printf("🔗 Correlation Matrix (%d parameters, stride %d):\n", len(names), stride)
	for i, name := range names {
		fmt.Printf("%-52s", name)
		for j := range names {
			fmt.Printf(" %7.4f", matrix[i][j])
		}
		fmt.Println()
	}
	fmt.Println()
	return nil
}

// exportCSV writes every decoded frame to path as CSV
func exportCSV(d *dataset.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := d.WriteCSV(f); err != nil {
		return fmt.Errorf("failed to export CSV: %w", err)
	}
	fmt.Printf("💾 Exported %d frames to %s\n", d.FrameCount(), path)
	return nil
}

// followRecording polls the dataset until the recorder seals it or the user
// interrupts
func followRecording(filename string, d *dataset.Dataset, interval time.Duration, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("👀 Following %s (Ctrl+C to stop)...\n", filepath.Base(filename))
	err := tail.New(filename, d, interval, logger).Run(ctx, func(u tail.Update) {
		if u.Added > 0 {
			fmt.Printf("  +%d frames (total %d)\n", u.Added, d.FrameCount())
		}
		if u.Sealed {
			fmt.Printf("  recording sealed at %d frames\n", d.FrameCount())
		}
	})
	if errors.Is(err, context.Canceled) {
		fmt.Printf("Stopped at %d frames.\n", d.FrameCount())
		return nil
	}
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
