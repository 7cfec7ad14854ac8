package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/CaiJingLong/Tally/internal/cli"
	"github.com/CaiJingLong/Tally/internal/config"
)

// main delegates to runMain so deferred calls (closing the log file) run
// before the process exits.
func main() {
	os.Exit(runMain())
}

// runMain parses the global flags, sets up logging and signals, then hands
// the remaining arguments to the subcommand dispatcher.
func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	configPath := flag.String(config.FlagConfig, "", config.FlagDescConfig)
	lang := flag.String(config.FlagLang, "", config.FlagDescLang)
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), config.MsgUsage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	args := flag.Args()
	command := config.CmdServe
	if len(args) > 0 {
		command = args[0]
	}

	// Only the server logs to stdout; the one-shot commands keep stdout
	// for their own output.
	console := io.Writer(os.Stderr)
	if command == config.CmdServe {
		console = os.Stdout
	}
	logCloser := setupLogging(*debugMode, console, command == config.CmdServe)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *configPath == "" {
		if p, err := getConfigFilePath(); err == nil {
			*configPath = p
		}
	}

	logStartupInfo(command)

	code := cli.New(*lang, *configPath).Run(ctx, args)
	if code == config.ExitCodeSuccess && command == config.CmdServe {
		slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	}
	return code
}

func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo(command string) {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyCommand, command,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger writing to console and, for the
// long-running server, to a log file in the user's cache directory.
// One-shot commands only log warnings unless debug is on.
func setupLogging(debugMode bool, console io.Writer, toFile bool) io.Closer {
	writers := []io.Writer{console}
	var logFile *os.File

	if toFile {
		if logPath, err := getLogFilePath(); err == nil {
			// O_TRUNC resets logs on restart to prevent indefinite growth.
			f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
			if err == nil {
				writers = append(writers, f)
				logFile = f
			} else {
				fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
			}
		}
	}

	level := slog.LevelInfo
	if !toFile {
		level = slog.LevelWarn
	}
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}

// getConfigFilePath is the default settings file; it need not exist.
func getConfigFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrConfigDir, err)
	}
	return filepath.Join(dir, config.AppID, config.ConfigFileName), nil
}
