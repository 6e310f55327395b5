// Package utils provides the shared command line app scaffolding: the
// common flags, the cli app constructor and the top level wait group.
package utils

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"

	"github.com/crosslock/CrossChain-Escrow/log"
	"github.com/crosslock/CrossChain-Escrow/params"
	"github.com/urfave/cli/v2"
)

var (
	// TopWaitGroup is the top level wait group the main program waits on.
	TopWaitGroup = new(sync.WaitGroup)

	cleanupOnce sync.Once
	cleanupChan = make(chan struct{})
)

// common flags
var (
	DataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the databases and keystore",
		Value: "datadir",
	}
	ConfigFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Specify config file",
	}
	LogFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "Specify log file, support rotate",
	}
	LogRotationFlag = &cli.Uint64Flag{
		Name:  "log.rotate",
		Usage: "Specify log rotation time (unit hour)",
		Value: 24,
	}
	LogMaxAgeFlag = &cli.Uint64Flag{
		Name:  "log.maxage",
		Usage: "Specify log max age (unit hour)",
		Value: 720,
	}
	VerbosityFlag = &cli.Uint64Flag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=panic, 1=fatal, 2=error, 3=warn, 4=info, 5=debug, 6=trace",
		Value: 4,
	}
	JSONFormatFlag = &cli.BoolFlag{
		Name:  "log.json",
		Usage: "Output log in json format",
	}
	ColorFormatFlag = &cli.BoolFlag{
		Name:  "log.color",
		Usage: "Output log in color text format",
		Value: true,
	}
	EscrowServerFlag = &cli.StringFlag{
		Name:  "server",
		Usage: "Escrow server rpc address",
	}
	KeystoreFileFlag = &cli.StringFlag{
		Name:  "keystore",
		Usage: "Keystore file path",
	}
	PasswordFileFlag = &cli.StringFlag{
		Name:  "password",
		Usage: "Password file path",
	}
)

// CommonLogFlags are the log flags shared by sub commands.
var CommonLogFlags = []cli.Flag{
	LogFileFlag,
	LogRotationFlag,
	LogMaxAgeFlag,
	VerbosityFlag,
	JSONFormatFlag,
	ColorFormatFlag,
}

// SetLogger set logger from the common log flags.
func SetLogger(ctx *cli.Context) {
	logLevel := uint32(ctx.Uint64(VerbosityFlag.Name))
	jsonFormat := ctx.Bool(JSONFormatFlag.Name)
	colorFormat := ctx.Bool(ColorFormatFlag.Name)
	log.SetLogger(logLevel, jsonFormat, colorFormat)

	logFile := ctx.String(LogFileFlag.Name)
	if logFile != "" {
		logRotation := ctx.Uint64(LogRotationFlag.Name)
		logMaxAge := ctx.Uint64(LogMaxAgeFlag.Name)
		log.SetLogFile(logFile, logRotation, logMaxAge)
	}
}

// GetDataDir returns the data directory from flags.
func GetDataDir(ctx *cli.Context) string {
	return ctx.String(DataDirFlag.Name)
}

// GetConfigFilePath returns the config file path from flags, defaulting
// to config.toml under the data directory.
func GetConfigFilePath(ctx *cli.Context) string {
	if configFile := ctx.String(ConfigFileFlag.Name); configFile != "" {
		return configFile
	}
	return filepath.Join(GetDataDir(ctx), "config.toml")
}

// IsCleanuping returns true after a shutdown signal arrived.
func IsCleanuping() bool {
	select {
	case <-cleanupChan:
		return true
	default:
		return false
	}
}

// CleanupChan returns the channel closed on shutdown.
func CleanupChan() <-chan struct{} {
	return cleanupChan
}

// WaitAndCleanup waits for an interrupt signal, runs the callback and
// then waits for the top level wait group to drain.
func WaitAndCleanup(cleanup func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Info("receive exit signal", "signal", sig)
	cleanupOnce.Do(func() {
		close(cleanupChan)
		if cleanup != nil {
			cleanup()
		}
	})
	TopWaitGroup.Wait()
}

// NewApp creates an app with sane defaults.
func NewApp(clientIdentifier, gitCommit, gitDate, usage string) *cli.App {
	app := cli.NewApp()
	app.Name = clientIdentifier
	app.Usage = usage
	app.Version = params.VersionWithMeta
	if gitCommit != "" {
		app.Version += "-" + gitCommit[:8]
		if gitDate != "" {
			app.Version += "-" + gitDate
		}
	}
	return app
}

// VersionCommand prints version numbers.
var VersionCommand = &cli.Command{
	Action:    version,
	Name:      "version",
	Usage:     "Print version numbers",
	ArgsUsage: " ",
	Description: `
The output of this command is supposed to be machine-readable.
`,
}

func version(ctx *cli.Context) error {
	fmt.Println(ctx.App.Name)
	fmt.Println("Version:", params.VersionWithMeta)
	fmt.Println("Go Version:", runtime.Version())
	fmt.Println("Operating System:", runtime.GOOS)
	return nil
}
