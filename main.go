package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gregLibert/felica/internal/config"
	"github.com/gregLibert/felica/internal/logging"
	"github.com/gregLibert/felica/pkg/felica"
	"github.com/gregLibert/felica/pkg/pcsc"
	"github.com/gregLibert/felica/pkg/push"
)

func main() {
	configPath := flag.String("config", "", "TOML or YAML configuration file")
	readerFlag := flag.String("reader", "", "reader index or name substring")
	modeFlag := flag.String("mode", "", "reader framing: direct or transparent")
	pushFlag := flag.String("push", "", "URL to push to the card after the dump")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *readerFlag, *modeFlag, *pushFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "felica: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New("felica", cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "felica: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("Demo aborted")
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the optional file and applies the command line overrides.
func loadConfig(path, reader, mode, pushURL string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if reader != "" {
		cfg.Reader.Selector = reader
	}
	if mode != "" {
		cfg.Reader.Mode = mode
	}
	if pushURL != "" {
		cfg.Push.URL = pushURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// --- 1. Hardware Setup ---
	reader, transport, err := connectToCard(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := transport.EndSession(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("Failed to end transparent session")
		}
		if err := reader.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to release reader")
		}
	}()

	// --- 2. Logic Setup ---
	exec := felica.NewExecutor(felica.WithLogger(logger))

	// --- 3. Execution Flow ---

	// Step 1: Wake the card up and learn its IDm
	idm, err := step1Poll(ctx, exec, transport, cfg)
	if err != nil {
		return err
	}

	// Step 2: List the systems of the card
	step2SystemCodes(ctx, exec, transport, idm, logger)

	// Step 3: Enumerate the services of the polled system
	services := step3ServiceCodes(ctx, exec, transport, idm, logger)

	// Step 4: Read what can be read without authentication
	step4DumpServices(ctx, exec, transport, idm, services, cfg.Dump.Blocks)

	// Step 5: Optional push
	if cfg.Push.URL != "" {
		if err := step5Push(ctx, exec, transport, idm, cfg.Push); err != nil {
			return err
		}
	}

	fmt.Println("\n>> Demo Finished Successfully")
	return nil
}

// =========================================================================
// Helper Functions
// =========================================================================

// connectToCard opens the reader, waits for a card and prepares the transport.
func connectToCard(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pcsc.Reader, *pcsc.Transport, error) {
	mode, err := pcsc.ParseMode(cfg.Reader.Mode)
	if err != nil {
		return nil, nil, err
	}

	reader, err := pcsc.Open(cfg.Reader.Selector, logger)
	if err != nil {
		return nil, nil, err
	}

	fmt.Printf(">> Using reader: %s (%s mode)\n", reader.Name, mode)
	fmt.Println(">> Waiting for a card...")

	if err := reader.WaitForCard(ctx); err != nil {
		return nil, nil, errors.Join(err, reader.Close())
	}
	if err := reader.Connect(); err != nil {
		return nil, nil, errors.Join(err, reader.Close())
	}

	transport := pcsc.NewTransport(reader,
		pcsc.WithMode(mode),
		pcsc.WithTimeout(cfg.Reader.Timeout.Duration),
		pcsc.WithLogger(logger),
	)
	if err := transport.StartSession(ctx); err != nil {
		return nil, nil, errors.Join(err, reader.Close())
	}

	if uid, err := transport.UID(ctx); err == nil {
		logger.Debug().Hex("uid", uid).Msg("Reader reports card identifier")
	}
	return reader, transport, nil
}

func banner(title string) {
	fmt.Println("\n=============================================")
	fmt.Printf(" %s\n", title)
	fmt.Println("=============================================")
}

// step1Poll sends Polling with the configured system code.
func step1Poll(ctx context.Context, exec *felica.Executor, t felica.Transceiver, cfg *config.Config) (felica.IDm, error) {
	sc, err := cfg.SystemCode()
	if err != nil {
		return felica.IDm{}, err
	}
	banner(fmt.Sprintf("Step 1: POLLING (system %s)", sc))

	res, err := exec.Poll(ctx, t, sc, felica.RequestCode(cfg.Polling.RequestCode), felica.TimeSlot(cfg.Polling.TimeSlot))
	if err != nil {
		return felica.IDm{}, fmt.Errorf("polling failed: %w", err)
	}
	if res.IDm == nil {
		return felica.IDm{}, fmt.Errorf("polling: %w", felica.ErrNoResponse)
	}

	fmt.Println(res.Describe())
	fmt.Println(res.IDm.Describe())
	if res.PMm != nil {
		fmt.Println(res.PMm.Describe())
	}
	return *res.IDm, nil
}

// step2SystemCodes lists the system codes the card hosts.
func step2SystemCodes(ctx context.Context, exec *felica.Executor, t felica.Transceiver, idm felica.IDm, logger zerolog.Logger) {
	banner("Step 2: REQUEST SYSTEM CODE")

	codes, err := exec.RequestSystemCodes(ctx, t, idm)
	if err != nil {
		logger.Warn().Err(err).Msg("Request System Code failed")
		return
	}
	for i, sc := range codes {
		fmt.Printf("   [%d] System %s\n", i, sc)
	}
}

// step3ServiceCodes walks the service list of the polled system.
func step3ServiceCodes(ctx context.Context, exec *felica.Executor, t felica.Transceiver, idm felica.IDm, logger zerolog.Logger) []felica.ServiceCode {
	banner("Step 3: SEARCH SERVICE CODE")

	services, err := exec.ServiceCodes(ctx, t, idm)
	if err != nil {
		// Keep what was found before the card went silent.
		logger.Warn().Err(err).Int("found", len(services)).Msg("Service enumeration interrupted")
	}
	if len(services) == 0 {
		fmt.Println(">> No services found.")
	}
	for _, sc := range services {
		fmt.Printf("   - %s\n", sc)
	}
	return services
}

// step4DumpServices reads the first blocks of every service open without
// authentication.
func step4DumpServices(ctx context.Context, exec *felica.Executor, t felica.Transceiver, idm felica.IDm, services []felica.ServiceCode, blocks int) {
	banner(fmt.Sprintf("Step 4: READ WITHOUT ENCRYPTION (%d blocks per service)", blocks))

	for _, sc := range services {
		if sc.RequiresAuthentication() {
			continue
		}

		fmt.Printf("\n[Service %s]\n", sc)
		for n := range blocks {
			res, err := exec.ReadBlock(ctx, t, idm, sc, uint16(n))
			if err != nil {
				fmt.Printf("   (!) Block %d: %v\n", n, err)
				break
			}
			if !res.IsSuccess() {
				// Past the end of the service, or the card left.
				if n == 0 {
					fmt.Println(res.Describe())
				}
				break
			}

			data, err := res.Blocks()
			if err != nil || len(data) == 0 {
				break
			}
			fmt.Printf("   %04X: %s\n", n, strings.TrimSpace(data[0].String()))
		}
	}
}

// step5Push sends one intent segment through command 0xB0.
func step5Push(ctx context.Context, exec *felica.Executor, t felica.Transceiver, idm felica.IDm, cfg config.PushConfig) error {
	banner(fmt.Sprintf("Step 5: PUSH %s", cfg.URL))

	var opts []push.Option
	if cfg.LegacyZeroURLLength {
		opts = append(opts, push.WithLegacyZeroURLLength())
	}
	if cfg.UnsignedChecksum {
		opts = append(opts, push.WithUnsignedChecksum())
	}

	cmd, err := push.NewCommand(idm, []push.IntentSegment{{URL: cfg.URL, ICC: cfg.ICC}}, opts...)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	fmt.Printf(">> Command: %s\n", cmd)

	res, err := exec.Execute(ctx, t, cmd)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	if res.IsEmpty() {
		fmt.Println(">> No reply (the card may have launched the intent).")
		return nil
	}
	fmt.Printf(">> Reply: %s\n", res)
	return nil
}
