// dbhandler runs SQL statements from standard input against one SQLite file.
//
// Each non-empty input line is executed as one statement. Result rows are
// written to standard output, one per line, values separated by tabs.
// Failed statements are logged and skipped. Writes are committed when input
// ends; an interrupt discards them.
//
// Configuration is read from configs/config.yaml, or from the file named by
// DBHANDLER_CONFIG.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nerrad567/dbhandler/internal/handler"
	"github.com/nerrad567/dbhandler/internal/infrastructure/config"
	"github.com/nerrad567/dbhandler/internal/infrastructure/database"
	"github.com/nerrad567/dbhandler/internal/infrastructure/influxdb"
	"github.com/nerrad567/dbhandler/internal/infrastructure/logging"
	"github.com/nerrad567/dbhandler/internal/infrastructure/mqtt"
	"github.com/nerrad567/dbhandler/internal/observe"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// maxStatementSize bounds one input line.
const maxStatementSize = 1 << 20

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - in: SQL statements, one per line
//   - out: Destination for result rows
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, in io.Reader, out io.Writer) error {
	log := logging.Default()

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Debug("starting dbhandler",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", configPath,
	)

	observers, closeObservers, err := connectObservers(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeObservers()

	h := handler.New(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	}, log, observers...)
	if err := h.Open(); err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := h.Close(); closeErr != nil {
			log.Critical("error closing database", "error", closeErr)
		}
	}()

	if err := execute(ctx, h, in, out); err != nil {
		return err
	}

	if ctx.Err() != nil {
		log.Warning("Interrupted, uncommitted writes discarded")
		return nil
	}
	if err := h.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// execute runs every non-empty line of in until input ends or ctx is done.
func execute(ctx context.Context, h *handler.Handler, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStatementSize)

	w := bufio.NewWriter(out)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return w.Flush()
		}

		statement := strings.TrimSpace(scanner.Text())
		if statement == "" {
			continue
		}

		for _, row := range h.ExecuteQuery(ctx, statement) {
			if _, err := fmt.Fprintln(w, strings.Join(row.Strings(), "\t")); err != nil {
				return fmt.Errorf("writing results: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading statements: %w", err)
	}

	return w.Flush()
}

// connectObservers connects the optional statement journal and metrics.
// Each client is health-checked before use. The returned func closes
// whatever was connected.
func connectObservers(ctx context.Context, cfg *config.Config, log *logging.Logger) ([]handler.Observer, func(), error) {
	var observers []handler.Observer
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(ctx, cfg.MQTT)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		closers = append(closers, func() {
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Critical("error closing MQTT", "error", closeErr)
			}
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
		observers = append(observers, observe.NewJournal(mqttClient, mqttClient.QoS(), log))
	}

	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		influxClient.SetLogger(log)
		closers = append(closers, func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Critical("error closing InfluxDB", "error", closeErr)
			}
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		observers = append(observers, observe.NewMetrics(influxClient))
	}

	return observers, closeAll, nil
}

// getConfigPath returns the configuration file path.
// Uses DBHANDLER_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("DBHANDLER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
