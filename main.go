package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wwrando/pkg/engine/terminal"
	"wwrando/pkg/game/data"
	"wwrando/pkg/game/generator"
	"wwrando/pkg/game/locale"
	"wwrando/pkg/game/renderer"
	"wwrando/pkg/game/setup"
	"wwrando/pkg/game/state"
)

// reportedError is an error the renderer has already shown
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// app holds the global flags and what they produce
type app struct {
	verbose    bool
	lang       string
	output     string
	dataDir    string
	configPath string
	algorithm  string

	logger *zap.Logger
	run    *state.Run
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "wwrando",
		Short: "Item randomizer seed generator",
		Long: `wwrando shuffles the items of a rule set across its locations so that
every world can still be beaten, and writes a spoiler log of the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.finish()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.lang, "lang", "", "Output language (default from $LANG)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "Output format: text or json")
	root.PersistentFlags().StringVar(&a.dataDir, "data", "", "Rule set directory (default: built-in rule set)")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML settings file")
	root.PersistentFlags().StringVar(&a.algorithm, "algorithm", generator.DefaultAlgorithm.Name(),
		"Placement algorithm: "+strings.Join(algorithmNames(), ", "))

	root.AddCommand(
		newGenerateCmd(a),
		newCheckCmd(a),
		newMassTestCmd(a),
		newHistoryCmd(a),
		newDumpCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if a.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	if err := a.initLanguage(); err != nil {
		return err
	}

	a.run = state.NewRun(cmd.Name())
	switch a.output {
	case "text":
		out := cmd.OutOrStdout()
		width := terminal.DefaultWidth
		colors := false
		if f, ok := out.(*os.File); ok {
			width = terminal.GetWidth(f)
			colors = terminal.ColorEnabled(f)
		}
		renderer.SetRenderer(renderer.NewConsole(out, width))
		renderer.Init(colors)
	case "json":
		renderer.SetRenderer(renderer.NewJSON(cmd.OutOrStdout()))
		renderer.Init(false)
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}
	return nil
}

// initLanguage applies --lang, falling back to $LANG. Only an explicit
// unknown language is an error.
func (a *app) initLanguage() error {
	if a.lang != "" {
		return locale.SetLanguage(a.lang)
	}
	if err := locale.SetLanguage(os.Getenv("LANG")); err != nil {
		a.logger.Debug("falling back to default language", zap.Error(err))
		return locale.SetLanguage(locale.DefaultLanguage)
	}
	return nil
}

func (a *app) finish() {
	if a.run != nil {
		renderer.Messages(a.run)
		a.run.ClearMessages()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// logMessage adds a formatted message to the run's message log
func (a *app) logMessage(msg string, args ...any) {
	a.run.AddMessage(fmt.Sprintf(msg, args...))
}

// options builds generator options from the global flags
func (a *app) options() (generator.Options, error) {
	cfg, err := setup.Load(a.configPath)
	if err != nil {
		return generator.Options{}, err
	}

	var fsys fs.FS = data.Builtin
	if a.dataDir != "" {
		fsys = os.DirFS(a.dataDir)
	}

	alg, ok := generator.Algorithms[a.algorithm]
	if !ok {
		return generator.Options{}, fmt.Errorf("unknown algorithm %q (want one of %s)",
			a.algorithm, strings.Join(algorithmNames(), ", "))
	}

	return generator.Options{
		Config:    cfg,
		Data:      fsys,
		Algorithm: alg,
		Logger:    a.logger,
	}, nil
}

func algorithmNames() []string {
	names := make([]string, 0, len(generator.Algorithms))
	for name := range generator.Algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var reported reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
