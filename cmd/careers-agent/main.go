package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-careers-agent/internal/agent"
	"go-careers-agent/internal/ai"
	"go-careers-agent/internal/browser"
	"go-careers-agent/internal/config"
	"go-careers-agent/internal/input"
	"go-careers-agent/internal/models"
	"go-careers-agent/internal/notify"
	"go-careers-agent/internal/output"
	"go-careers-agent/internal/resolver"
	"go-careers-agent/internal/retry"
	"go-careers-agent/internal/scraper"
	"go-careers-agent/internal/tools"
	"go-careers-agent/utils"

	"github.com/alecthomas/kong"
	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
	"github.com/playwright-community/playwright-go"
)

type CLIFlags struct {
	ConfigFile string `help:"Path to configuration file" default:"configs/config.yaml" short:"c"`
	OutputFile string `help:"Path to output file (overrides output_path)" short:"o"`
	Headless   bool   `help:"Run the browser without a window"`
	LogLevel   string `help:"Log level (debug, info, warn, error)"`
	NoNotify   bool   `help:"Do not send the Telegram summary"`
}

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred teardown always happens before os.Exit
func run() int {
	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("careers-agent"),
		kong.Description("Finds job postings on a company website with an LLM driven browser agent."),
	)

	//load config
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	//Override config with command line flags if provided
	if flags.OutputFile != "" {
		cfg.OutputPath = flags.OutputFile
	}
	if flags.Headless {
		cfg.Browser.Headless = true
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}

	//logs and agent progress pause the spinner so lines never interleave
	spin := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriterFile(os.Stderr))
	logger := newLogger(cfg.LogLevel, spinnerWriter{spin: spin, w: os.Stderr})
	for _, w := range cfg.Warnings {
		logger.Warn("⚠️ " + w)
	}
	logger.Info("🔧 Config loaded", "model", cfg.LLM.Model, "resolver", cfg.LLM.ResolverProvider, "headless", cfg.Browser.Headless)

	//ask before the browser starts, Ctrl-C here just quits
	req, err := input.NewCollector(os.Stdin, os.Stdout).Collect()
	if err != nil {
		fmt.Printf("\nFatal error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := newNotifier(cfg, flags.NoNotify, logger)

	out, err := scrape(ctx, cfg, req, spin, logger)
	if err != nil {
		switch {
		case errors.Is(err, retry.ErrRateLimitExceeded):
			fmt.Println("\nRate limit exceeded after all retries")
		case errors.Is(err, context.Canceled):
			fmt.Println("\nInterrupted, browser closed")
		default:
			fmt.Printf("\nFatal error: %v\n", err)
		}
		if notifier != nil {
			if err := notifier.SendError(req, err); err != nil {
				logger.Warn("⚠️ Failed to send Telegram error", "err", err)
			}
		}
		return 1
	}

	if err := output.WriteAtomic(cfg.OutputPath, out); err != nil {
		fmt.Printf("\nFatal error: %v\n", err)
		return 1
	}
	fmt.Printf("\n%s\nResults saved to: %s\n", scraper.Summary(out), cfg.OutputPath)

	if notifier != nil {
		if err := notifier.SendResult(out); err != nil {
			logger.Warn("⚠️ Failed to send Telegram summary", "err", err)
		}
	}
	return 0
}

// scrape wires the browser, the models and the agent, and closes the browser on every path
func scrape(ctx context.Context, cfg *config.Config, req models.SearchRequest, spin *spinner.Spinner, logger *log.Logger) (models.Output, error) {
	llm := ai.NewOpenAIClient(ai.OpenAIOptions{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	})
	var completer ai.Completer = llm
	if cfg.LLM.ResolverProvider == config.ProviderGemini {
		gemini, err := ai.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return models.Output{}, err
		}
		completer = gemini
	}
	res := resolver.New(completer, logger)

	//init playwright manager
	pwManager, err := browser.NewPlaywright(browser.Options{
		Headless:       cfg.Browser.Headless,
		SlowMo:         cfg.Browser.SlowMo(),
		Timeout:        cfg.Browser.Timeout(),
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.Viewport.Width,
		ViewportHeight: cfg.Browser.Viewport.Height,
	}, logger)
	if err != nil {
		return models.Output{}, err
	}

	var cookies []playwright.OptionalCookie
	if cfg.Browser.CookiesPath != "" {
		cookies, err = browser.LoadCookies(cfg.Browser.CookiesPath)
		if err != nil {
			logger.Warn("⚠️ Could not load cookies, continuing", "path", cfg.Browser.CookiesPath, "err", err)
		} else {
			logger.Info("🍪 Loaded cookies", "count", len(cookies))
		}
	}
	if _, err := pwManager.NewContext(cookies); err != nil {
		pwManager.Close()
		return models.Output{}, err
	}
	mainFrame, err := pwManager.NewPage()
	if err != nil {
		pwManager.Close()
		return models.Output{}, err
	}

	surface := browser.NewSurface(
		mainFrame,
		res,
		browser.NewFrameLocator(res, logger),
		browser.SurfaceOptions{Settle: cfg.Browser.Settle(), SubmitSettle: 2 * time.Second, Scroll: true},
		utils.NewScreenShotDebugger(cfg.Browser.ScreenshotDir, logger),
		pwManager,
		logger,
	)
	//close playwright when the scrape stops, whatever the outcome
	defer surface.Close()

	registry := tools.Default(surface, res, spinnerWriter{spin: spin, w: os.Stdout}, logger)
	ag := agent.New(llm, registry, agent.Config{
		MaxTurns:      cfg.Agent.MaxTurns,
		MaxUnlogged:   cfg.Agent.MaxUnloggedCalls,
		SearchEngines: cfg.Agent.SearchEngines,
	}, logger)
	sc := scraper.New(ag, surface, retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
	}, logger)

	spin.Suffix = " 🤖 Agent is browsing " + req.Company()
	spin.Start()
	defer spin.Stop()

	out, result, err := sc.Run(ctx, req)
	if err != nil {
		return models.Output{}, err
	}
	logger.Info("🏁 Run finished", "run", result.RunID, "turns", result.Turns, "exhausted", result.Exhausted)
	return out, nil
}

func newLogger(level string, w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "careers-agent",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	log.SetDefault(logger)
	return logger
}

func newNotifier(cfg *config.Config, disabled bool, logger *log.Logger) *notify.TelegramNotifier {
	if disabled || !cfg.Telegram.Enabled() {
		return nil
	}
	n, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		logger.Warn("⚠️ Telegram disabled", "err", err)
		return nil
	}
	logger.Info("🤖 Telegram notifier initialized")
	return n
}

// spinnerWriter stops the spinner around each write and restarts it if it was running
type spinnerWriter struct {
	spin *spinner.Spinner
	w    io.Writer
}

func (s spinnerWriter) Write(p []byte) (int, error) {
	if !s.spin.Active() {
		return s.w.Write(p)
	}
	s.spin.Stop()
	defer s.spin.Start()
	return s.w.Write(p)
}
