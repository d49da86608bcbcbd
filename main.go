package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/namneyugn21/Hotelytics/trip"
)

// Version is set at build time via -ldflags
var Version = "dev"

// AppOptions carries parsed CLI options into the application.
type AppOptions struct {
	ConfigFile      string
	DataDir         string
	OutputFile      string
	ScoreMode       bool
	ClusterCategory string
	TourHotel       string
	Strategy        string
	StopCount       int
	HttpMode        bool
	HttpPort        int
}

// appRunner is the surface main drives; App implements it, tests mock it.
type appRunner interface {
	ApplyOptions(opts AppOptions)
	RunScore()
	RunCluster(category string)
	RunTour(hotel string)
	RunService()
}

// run parses args, applies options to the app, and dispatches the
// requested mode. Output intended for the terminal goes to out.
func run(args []string, out io.Writer, app appRunner) error {
	fs := flag.NewFlagSet("hotelytics", flag.ContinueOnError)
	fs.SetOutput(out)

	configFile := fs.String("config", "config.yaml", "Path to configuration file")
	dataDir := fs.String("data-dir", ".", "Directory containing hotels.geojson, amenities.csv, attractions.csv")
	outputFile := fs.String("output", "", "Output file for GeoJSON results (default: stdout)")
	scoreMode := fs.Bool("score", false, "Score all hotels by nearby amenities and exit")
	clusterCategory := fs.String("cluster", "", "Cluster amenities of the given category and exit")
	tourHotel := fs.String("tour", "", "Plan a walking tour from the named hotel and exit")
	strategy := fs.String("strategy", trip.StrategyApproxTSP, "Tour strategy: approx-tsp, greedy-nn, or both")
	stopCount := fs.Int("stops", 5, "Number of nearest attractions to include in a tour")
	httpMode := fs.Bool("http", false, "Run the HTTP service")
	httpPort := fs.Int("http-port", 8080, "HTTP server port (default 8080)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(out, "hotelytics version: %s\n", Version)

	opts := AppOptions{
		ConfigFile:      *configFile,
		DataDir:         *dataDir,
		OutputFile:      *outputFile,
		ScoreMode:       *scoreMode,
		ClusterCategory: *clusterCategory,
		TourHotel:       *tourHotel,
		Strategy:        *strategy,
		StopCount:       *stopCount,
		HttpMode:        *httpMode,
		HttpPort:        *httpPort,
	}
	app.ApplyOptions(opts)

	switch {
	case *scoreMode:
		app.RunScore()
	case *clusterCategory != "":
		app.RunCluster(*clusterCategory)
	case *tourHotel != "":
		app.RunTour(*tourHotel)
	case *httpMode:
		app.RunService()
	default:
		fmt.Fprintln(out, "hotelytics service starting...")
		fmt.Fprintln(out, "Use --score to rank hotels by nearby amenities")
		fmt.Fprintln(out, "Use --cluster CATEGORY to cluster amenities of one category")
		fmt.Fprintln(out, "Use --tour HOTEL to plan a walking tour")
		fmt.Fprintln(out, "Use --http to run the HTTP service")
		fmt.Fprintln(out, "\nConfiguration:")
		fmt.Fprintln(out, "  config.yaml - scoring weights, clustering and network settings")
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, NewApp()); err != nil {
		os.Exit(2)
	}
}
