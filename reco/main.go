package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	reco "github.com/next-exp/reco_go/pkg"
	"github.com/next-exp/reco_go/pkg/likelihood"
	"github.com/next-exp/reco_go/pkg/writer"
)

var configuration reco.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	method := flag.String("method", "", "Optimization method, overrides the configuration file")
	flag.Parse()

	if err := run(*configFilename, *method); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(configFilename string, method string) error {
	var err error
	configuration, err = LoadConfiguration(configFilename)
	if err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	if method != "" {
		configuration.Method = method
	}
	reco.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	dbConn, err := reco.ConnectToDatabase(configuration)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	geometry, err := reco.LoadGeometry(dbConn, configuration.RunNumber, VerbosityLevel)
	dbConn.Close()
	if err != nil {
		return err
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Loaded geometry of %d sensors, %d operational",
			geometry.NumSensors(), countOperational(geometry.Sensors()))
		logger.Info(message, "main")
	}

	tables, err := likelihood.NewAnalyticTables(configuration.Likelihood)
	if err != nil {
		return err
	}
	factory, err := likelihood.NewFactory(tables, configuration.Likelihood)
	if err != nil {
		return err
	}
	rec, err := reco.NewReconstructor(configuration, geometry, factory)
	if err != nil {
		return err
	}
	meta, err := rec.Meta(configuration.RunNumber)
	if err != nil {
		return err
	}

	pulses, err := writer.ReadPulses(configuration.FileIn, configuration.PulsesTable)
	if err != nil {
		return err
	}
	events := selectEvents(reco.GroupEvents(pulses), configuration.Skip, configuration.MaxEvents)
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d (%d pulses)", len(events), len(pulses))
		logger.Info(message, "main")
	}

	w, err := writer.NewWriter(configuration.FileOut, configuration.CompressionLevel, configuration.WriteTrace)
	if err != nil {
		return err
	}
	if err := w.WriteConfiguration(meta); err != nil {
		return errors.Join(err, w.Close())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	jobs := make(chan reco.Event, configuration.NumWorkers)
	results := make(chan WorkerResult, 100)

	var wg sync.WaitGroup
	for id := 1; id <= configuration.NumWorkers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(ctx, id, rec, jobs, results)
		}(id)
	}
	go sendEventsToWorkers(ctx, events, jobs)
	go func() {
		wg.Wait()
		close(results)
	}()

	stats := processWorkerResults(results, w, len(events))
	written := w.EvtCounter
	if err := w.Close(); err != nil {
		return err
	}

	meta.EventsDone = stats.Done
	meta.EventsError = stats.Errors
	if err := meta.WriteJSON(configuration.FileOut + ".json"); err != nil {
		return err
	}

	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reconstructed %d events, %d discarded, %d written to %s. Total time: %d ms",
			stats.Done, stats.Errors, written, configuration.FileOut, time.Since(start).Milliseconds())
		logger.Info(message, "main")
	}
	return nil
}

func countOperational(sensors []reco.SensorGeometry) int {
	n := 0
	for _, s := range sensors {
		if s.Operational {
			n++
		}
	}
	return n
}
