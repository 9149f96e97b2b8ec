package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"ft/internal/feature"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Run is the main entry point. Returns exit code.
func Run(out, errOut io.Writer, args []string, env map[string]string, sig <-chan os.Signal) int {
	if len(args) < minArgs {
		printUsage(out, buildCommands(&feature.Config{}))

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	cfg, err := feature.LoadConfig(feature.LoadConfigInput{
		WorkDirOverride:     flags.workDir,
		ConfigPath:          flags.configPath,
		FeaturesDirOverride: flags.featuresDir,
		Env:                 env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	commands := buildCommands(&cfg)

	if len(flags.remaining) == 0 {
		printUsage(out, commands)

		return 0
	}

	name := flags.remaining[0]
	if name == "-h" || name == helpFlag {
		printUsage(out, commands)

		return 0
	}

	ioCtx := NewIO(out, errOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sig != nil {
		go func() {
			<-sig
			cancel()
		}()
	}

	for _, cmd := range commands {
		if cmd.Name() != name {
			continue
		}

		code := cmd.Run(ctx, ioCtx, flags.remaining[1:])
		if code != 0 {
			return code
		}

		return ioCtx.Finish()
	}

	fprintln(errOut, "error: unknown command:", name)
	printUsage(errOut, commands)

	return 1
}

func buildCommands(cfg *feature.Config) []*Command {
	return []*Command{
		CreateCmd(cfg),
		LsCmd(cfg),
		ShowCmd(cfg),
		StatusCmd(cfg),
		PromoteCmd(cfg),
		StartCmd(cfg),
		PauseCmd(cfg),
		BlockCmd(cfg),
		UnblockCmd(cfg),
		DoneCmd(cfg),
		PrintConfigCmd(cfg),
	}
}

type globalFlags struct {
	workDir     string
	configPath  string
	featuresDir string
	remaining   []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if (arg == "-C" || arg == "--cwd") && idx+1 < len(args) {
		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", feature.ErrFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// --features-dir flag
	if arg == "--features-dir" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", feature.ErrFlagRequiresArg, arg)
		}

		flags.featuresDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--features-dir="); ok {
		flags.featuresDir = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", feature.ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(writer io.Writer, commands []*Command) {
	fprintln(writer, `ft - feature lifecycle tracker

Usage: ft [options] <command> [args]

Options:
  -C, --cwd <dir>      Run as if started in <dir>
  -c, --config <file>  Use specified config file
  --features-dir <dir> Override the features directory

Commands:`)

	for _, cmd := range commands {
		fprintln(writer, cmd.HelpLine())
	}
}
