// XDR Record - synthetic flight recording generator
// This program writes a growing .xdr file with simulated flight parameters,
// useful for exercising the analyzer's live-follow mode and for producing
// test fixtures without a simulator attached.
package main

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xdr-analyzer/internal/version"
	"xdr-analyzer/internal/xdr"

	"github.com/spf13/cobra"
)

// Command line flag variables
var (
	output      string  // Output file path
	interval    float64 // Seconds of simulated time between frames
	frameCount  int     // Number of frames to write (0 = until interrupted)
	rate        float64 // Wall-clock frames per second while writing
	noFooter    bool    // Leave the recording unsealed
	showVersion bool    // Show version information
)

// recordedDatarefs is the synthetic schema: one of each value shape the
// format supports.
var recordedDatarefs = []xdr.DatarefDef{
	{Name: "sim/flightmodel/position/indicated_airspeed", Kind: xdr.KindFloat},
	{Name: "sim/flightmodel/position/elevation", Kind: xdr.KindFloat},
	{Name: "sim/flightmodel/position/vh_ind_fpm", Kind: xdr.KindFloat},
	{Name: "sim/flightmodel/engine/ENGN_N1_", Kind: xdr.KindFloat, ArraySize: 2},
	{Name: "sim/cockpit/radios/nav1_freq_hz", Kind: xdr.KindInt},
	{Name: "sim/cockpit/switches/gear_handle_status", Kind: xdr.KindInt},
	{Name: "sim/aircraft/view/acf_tailnum", Kind: xdr.KindString},
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "xdr-record",
	Short: "Generate a synthetic XDR flight recording",
	Long: `XDR Record writes a simulated flight recording in the XDR container format.
Frames are flushed as they are written, so an analyzer following the file
sees them appear live. The recording is sealed with a footer on completion
or interrupt unless --no-footer is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("XDR Record"))
			return
		}
		if err := record(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// init initializes the CLI flags
func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().StringVarP(&output, "output", "o", "flight.xdr", "output file path")
	rootCmd.Flags().Float64VarP(&interval, "interval", "i", 0.1, "simulated seconds between frames")
	rootCmd.Flags().IntVarP(&frameCount, "frames", "n", 600, "frames to write (0 = until interrupted)")
	rootCmd.Flags().Float64VarP(&rate, "rate", "r", 10, "wall-clock frames per second")
	rootCmd.Flags().BoolVar(&noFooter, "no-footer", false, "leave the recording unsealed (no footer)")
}

// record writes the recording until the frame budget is spent or the user
// interrupts
func record() error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := xdr.NewWriter(f)
	header := xdr.FileHeader{
		Version:   1,
		Level:     xdr.LevelNormal,
		Interval:  float32(interval),
		StartTime: uint64(time.Now().Unix()),
	}
	if err := w.WriteHeader(header, recordedDatarefs); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if rate <= 0 {
		rate = 10
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()

	fmt.Printf("Recording to %s (%d datarefs, Ctrl+C to stop)...\n", output, len(recordedDatarefs))

	written := 0
	interrupted := false
loop:
	for frameCount <= 0 || written < frameCount {
		select {
		case <-sigCh:
			interrupted = true
			break loop
		case <-ticker.C:
		}

		ts := float32(float64(written) * interval)
		if err := w.WriteFrame(xdr.Frame{Timestamp: ts, Values: simulate(float64(ts))}); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", written, err)
		}
		// Flush per frame so a live follower sees complete frames promptly.
		if err := f.Sync(); err != nil {
			return fmt.Errorf("failed to sync: %w", err)
		}
		written++
	}

	if noFooter {
		fmt.Printf("Wrote %d frames, left unsealed.\n", written)
		return nil
	}

	footer := xdr.Footer{
		TotalFrames: uint32(written),
		EndTime:     uint64(time.Now().Unix()),
	}
	if err := w.WriteFooter(footer); err != nil {
		return fmt.Errorf("failed to write footer: %w", err)
	}

	if interrupted {
		fmt.Printf("Interrupted, sealed at %d frames.\n", written)
	} else {
		fmt.Printf("Wrote %d frames, sealed.\n", written)
	}
	return nil
}

// simulate produces one frame of plausible flight data at simulated time t
func simulate(t float64) []xdr.Value {
	airspeed := 120 + 15*math.Sin(2*math.Pi*0.05*t)
	elevation := 3000 + 40*t
	verticalSpeed := 2400 * math.Cos(2*math.Pi*0.05*t) * 0.1
	n1 := 85 + 3*math.Sin(2*math.Pi*0.02*t)

	gear := int32(1)
	if t > 30 {
		gear = 0
	}

	return []xdr.Value{
		xdr.Float(airspeed),
		xdr.Float(elevation),
		xdr.Float(verticalSpeed),
		xdr.FloatArray{float32(n1), float32(n1 - 0.4)},
		xdr.Int(11070),
		xdr.Int(gear),
		xdr.String("N172SP"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
