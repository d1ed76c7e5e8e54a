// Package cmd provides CLI command implementations
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Flags for analyze command
	dataDir       string
	corpusFile    string
	wellTable     string
	outputPrefix  string
	plottingDir   string
	minIntensity  float64
	ionModeFlag   string
	ionNames      string
	rtMin         float64
	rtMax         float64
	mzHalfwidth   float64

	// Flags for peaks command
	peaksInput     string
	peaksMz        float64
	peaksThreshold float64
	peaksSepRatio  float64

	// Flags for masses command
	massesFormula string

	// Flags for network command
	networkOut  string
	skipInvalid bool

	// Flags for load command
	loadOut string

	// Flags for watch command
	watchDir string
)

var rootCmd = &cobra.Command{
	Use:   "iondetect",
	Short: "iondetect - LCMS validation of predicted metabolites",
	Long: `iondetect scores predicted pathway products against LCMS runs.

Positive-sample wells are searched for the ion masses of each predicted
chemical; signal-to-noise is computed against pooled negative controls
and each mass is classified as a valid or invalid hit. Replicate wells
are reduced to a consensus result set.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(peaksCmd)
	rootCmd.AddCommand(massesCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(watchCmd)

	// Analyze command flags
	analyzeCmd.Flags().StringVarP(&dataDir, "data-dir", "d", "", "Directory holding the raw scan files (required)")
	analyzeCmd.Flags().StringVarP(&corpusFile, "corpus", "c", "", "Chemical list to search, one formula per line (required)")
	analyzeCmd.Flags().StringVarP(&wellTable, "wells", "w", "", "Tab-separated control-well table (required)")
	analyzeCmd.Flags().StringVarP(&outputPrefix, "output-prefix", "o", "", "Prefix for per-well and consensus JSON outputs (required)")
	analyzeCmd.Flags().StringVar(&plottingDir, "plotting-dir", "", "Directory for per-mass trace artifacts (omit to skip plotting)")
	analyzeCmd.Flags().Float64Var(&minIntensity, "min-intensity", 0, "Minimum peak intensity for a valid hit (required)")
	analyzeCmd.Flags().StringVar(&ionModeFlag, "ion-mode", "pos", "Ionization mode: pos or neg")
	analyzeCmd.Flags().StringVar(&ionNames, "ions", "", "Comma-separated ion species to search (default: mode's standard adduct)")
	analyzeCmd.Flags().Float64Var(&rtMin, "rt-min", 0, "Retention-time window start in seconds")
	analyzeCmd.Flags().Float64Var(&rtMax, "rt-max", 450, "Retention-time window end in seconds")
	analyzeCmd.Flags().Float64Var(&mzHalfwidth, "mz-halfwidth", 0.01, "Half-width of the m/z extraction window")

	analyzeCmd.MarkFlagRequired("data-dir")
	analyzeCmd.MarkFlagRequired("corpus")
	analyzeCmd.MarkFlagRequired("wells")
	analyzeCmd.MarkFlagRequired("output-prefix")
	analyzeCmd.MarkFlagRequired("min-intensity")

	// Peaks command flags
	peaksCmd.Flags().StringVarP(&peaksInput, "in", "i", "", "Raw scan file to inspect (required)")
	peaksCmd.Flags().Float64Var(&peaksMz, "mz", 0, "Target m/z to extract (required)")
	peaksCmd.Flags().Float64Var(&mzHalfwidth, "mz-halfwidth", 0.01, "Half-width of the m/z extraction window")
	peaksCmd.Flags().Float64Var(&rtMin, "rt-min", 0, "Retention-time window start in seconds")
	peaksCmd.Flags().Float64Var(&rtMax, "rt-max", 450, "Retention-time window end in seconds")
	peaksCmd.Flags().Float64Var(&peaksThreshold, "intensity-threshold", 10000, "Discard samples at or below this intensity")
	peaksCmd.Flags().Float64Var(&peaksSepRatio, "separation-threshold", 20, "Cluster separation ratio above which two peaks are reported")

	peaksCmd.MarkFlagRequired("in")
	peaksCmd.MarkFlagRequired("mz")

	// Masses command flags
	massesCmd.Flags().StringVar(&massesFormula, "formula", "", "Single chemical formula (alternative to a corpus file argument)")
	massesCmd.Flags().StringVar(&ionModeFlag, "ion-mode", "pos", "Ionization mode: pos or neg")
	massesCmd.Flags().StringVar(&ionNames, "ions", "", "Comma-separated ion species (default: all known for the mode)")

	// Network command flags
	networkCmd.Flags().StringVarP(&networkOut, "out", "o", "", "Output network JSON file (required)")
	networkCmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "Skip unreadable corpus files instead of failing")

	networkCmd.MarkFlagRequired("out")

	// Load command flags
	loadCmd.Flags().StringVarP(&loadOut, "out", "o", "", "Output presentation database (required)")

	loadCmd.MarkFlagRequired("out")

	// Watch command flags
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "Directory to watch for new scan files (required)")

	watchCmd.MarkFlagRequired("dir")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full SNR analysis over an experiment",
	Long: `Search every positive well for the ion masses of the predicted
chemicals, score each mass against the pooled negative controls, and
write per-well result files plus a consensus file for replicates.

Examples:
  # Default M+H search over a plate
  iondetect analyze --data-dir ./plate1 --corpus products.txt --wells wells.tsv \
      --output-prefix results/plate1 --min-intensity 10000

  # Search several adducts with plotting artifacts
  iondetect analyze --data-dir ./plate1 --corpus products.txt --wells wells.tsv \
      --output-prefix results/plate1 --min-intensity 10000 \
      --ions M+H,M+Na,M+K --plotting-dir results/plots`,
	RunE: runAnalyze,
}

var peaksCmd = &cobra.Command{
	Use:   "peaks",
	Short: "Detect peaks for one target mass in one scan file",
	Long: `Extract the trace for a single m/z window from one scan file and
report the representative peak(s) found by intensity clustering.`,
	RunE: runPeaks,
}

var massesCmd = &cobra.Command{
	Use:   "masses [corpus-file]",
	Short: "Enumerate ion masses for predicted chemicals",
	Long: `Print the ion m/z values that would be searched for each chemical,
either for a single --formula or for every line of a corpus file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMasses,
}

var networkCmd = &cobra.Command{
	Use:   "network [corpus-files...]",
	Short: "Build a metabolic network from prediction corpuses",
	Long: `Assemble the chemicals and predicted transformations of one or more
prediction corpuses into a single network JSON document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNetwork,
}

var loadCmd = &cobra.Command{
	Use:   "load [result-files...]",
	Short: "Load analysis results into a presentation database",
	Long: `Insert per-well and consensus analysis JSON files into a SQLite
database for the reporting front end. The source well of each file is
derived from its filename.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and pre-cache new scan files",
	Long: `Watch a directory for new raw scan files and parse each one into its
cache entry as it arrives, so later analysis runs skip the parse.`,
	RunE: runWatch,
}
