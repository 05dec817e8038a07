package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/jeanpaul/zenmap/internal/app"
	"github.com/jeanpaul/zenmap/internal/config"
	"github.com/jeanpaul/zenmap/internal/kv"
	"github.com/jeanpaul/zenmap/internal/logging"
	"github.com/jeanpaul/zenmap/internal/mindmap"
	"github.com/jeanpaul/zenmap/internal/provider"
	"github.com/jeanpaul/zenmap/internal/store"
	"github.com/jeanpaul/zenmap/internal/tui"
	"github.com/jeanpaul/zenmap/pkg/version"
)

var (
	configFlag   = flag.String("config", "", "Path to config file")
	providerFlag = flag.String("provider", "", "Provider used for mind maps (google, ollama, ...)")
	modelFlag    = flag.String("model", "", "Model name")
	backendFlag  = flag.String("backend", "", "Storage backend (bolt, badger, file)")
	verboseFlag  = flag.Bool("verbose", false, "Debug logging")
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version")
	helpFlag := flag.Bool("help", false, "Show help")
	flag.BoolVar(helpFlag, "h", false, "Show help")

	flag.Usage = showHelp
	flag.Parse()

	if *helpFlag {
		showHelp()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		launchTUI()
		return
	}

	rest := args[1:]
	switch args[0] {
	case "add":
		cmdAdd(rest)
	case "list":
		cmdList(rest)
	case "search":
		if len(rest) == 0 {
			fatal("usage: zenmap search <text>")
		}
		cmdSearch(strings.Join(rest, " "))
	case "show":
		if len(rest) != 1 {
			fatal("usage: zenmap show <id>")
		}
		cmdShow(rest[0])
	case "edit":
		cmdEdit(rest)
	case "delete":
		if len(rest) != 1 {
			fatal("usage: zenmap delete <id>")
		}
		cmdDelete(rest[0])
	case "generate":
		cmdGenerate()
	case "map":
		cmdMap()
	case "export":
		cmdExport(rest)
	case "import":
		if len(rest) == 0 {
			fatal("usage: zenmap import <file|glob>...")
		}
		cmdImport(rest)
	case "clip":
		if len(rest) != 1 {
			fatal("usage: zenmap clip <url>")
		}
		cmdClip(rest[0])
	case "reset":
		cmdReset(rest)
	case "doctor":
		cmdDoctor()
	case "version":
		fmt.Println(version.String())
	case "help":
		showHelp()
	default:
		fatal("unknown command %q (run 'zenmap help')", args[0])
	}
}

// env is everything a command needs, opened from the loaded config.
type env struct {
	cfg      *config.Config
	log      *logrus.Logger
	settings provider.Settings
	sub      kv.Substrate
	ctrl     *app.Controller
	closers  []io.Closer
}

// openEnv loads the config and wires store, generator and controller.
// Interactive mode logs to a file so the TUI stays clean.
func openEnv(interactive bool) *env {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		fatal("config error: %s", err)
	}
	if *backendFlag != "" {
		cfg.Store.Backend = *backendFlag
		if err := cfg.Validate(); err != nil {
			fatal("%s", err)
		}
	}
	if *verboseFlag {
		cfg.Log.Level = "debug"
	}

	e := &env{cfg: cfg}
	logOpts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if interactive {
		log, closer, err := logging.ToFile(cfg.LogPath(), logOpts)
		if err != nil {
			fatal("log setup: %s", err)
		}
		e.log = log
		e.closers = append(e.closers, closer)
	} else {
		e.log, err = logging.New(os.Stderr, logOpts)
		if err != nil {
			fatal("log setup: %s", err)
		}
	}

	storeOpts := cfg.StoreOptions()
	storeOpts.Logger = e.log
	e.sub, err = kv.Open(storeOpts)
	if err != nil {
		fatal("open store: %s", err)
	}
	e.closers = append(e.closers, e.sub)

	e.settings, err = cfg.ProviderSettings(*providerFlag)
	if err != nil {
		fatal("%s", err)
	}
	if *modelFlag != "" {
		e.settings.Model = *modelFlag
	}
	prov, err := provider.New(e.settings)
	if err != nil {
		// Generation reports the missing provider as a configuration error.
		e.log.WithError(err).Warn("provider unavailable")
	}

	gen := mindmap.New(prov, mindmap.WithLogger(e.log))
	e.ctrl = app.New(store.New(e.sub, e.log), gen, app.WithLogger(e.log))
	return e
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			e.log.WithError(err).Warn("close")
		}
	}
}

// fail closes the store before exiting, which fatal alone would skip.
func (e *env) fail(format string, args ...any) {
	e.Close()
	fatal(format, args...)
}

// launchTUI starts the interactive interface.
func launchTUI() {
	e := openEnv(true)
	defer e.Close()
	tui.SetTheme(e.cfg.Theme)

	m := tui.NewModel(e.ctrl, tui.Options{
		ProviderName: e.settings.Name,
		ModelName:    e.settings.Model,
		Log:          e.log,
	})

	var opts []tea.ProgramOption
	if isTerminal() {
		opts = append(opts, tea.WithAltScreen())
	}

	e.log.WithFields(logrus.Fields{"provider": e.settings.Name, "backend": e.cfg.Store.Backend}).Info("zenmap started")
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		e.fail("TUI error: %s", err)
	}
}

// isTerminal checks if stdin is a terminal
func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("error: "+msg))
	os.Exit(1)
}

func showHelp() {
	help := `
` + tui.TitleStyle.Render("zenmap") + ` - capture notes, let an AI map them

` + tui.TitleStyle.Render("USAGE:") + `
  zenmap [flags]                   Start the interactive app
  zenmap [flags] <command> [args]  Run a command

` + tui.TitleStyle.Render("COMMANDS:") + `
  add [-t tag]... <text|->         Save a note (- reads stdin)
  list [-t tag]                    List notes, newest first
  search <text>                    Find notes by content or tag
  show <id>                        Print one note
  edit <id> [-t tag]... <text|->   Replace a note's text and tags
  delete <id>                      Delete a note
  generate                         Build a mind map from every note
  map                              Print the current mind map
  export [-f format] [-o file]     Export the map (markdown, yaml, xlsx)
  import <file|glob>...            Import .md .txt .html .pdf .xlsx files
  clip <url>                       Save a web page as a note
  reset [-y]                       Delete every note and the map
  doctor                           Check config, store and provider
  version                          Show version
  help                             Show this help

` + tui.TitleStyle.Render("FLAGS:") + `
  --config <path>                  Config file (default ~/.config/zenmap/config.yaml)
  --provider <name>                Provider from the config
  --model <name>                   Override the provider's model
  --backend <name>                 Storage backend (bolt, badger, file)
  --verbose                        Debug logging
  --version                        Show version
  --help, -h                       Show this help

` + tui.TitleStyle.Render("KEYS:") + `
  F1 F2 F3, Tab                    Capture, library, mind map
  Ctrl+K                           Command menu
  Ctrl+S                           Save note
  g                                Generate mind map (map view)
  Ctrl+C                           Quit

` + tui.HelpStyle.Render("Set GEMINI_API_KEY to use the default Google provider.") + `
`
	fmt.Println(help)
}
