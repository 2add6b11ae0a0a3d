package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"golang.org/x/term"

	"github.com/1broseidon/imgoverlay/internal/config"
	"github.com/1broseidon/imgoverlay/internal/daemon"
	"github.com/1broseidon/imgoverlay/internal/ipc"
	"github.com/1broseidon/imgoverlay/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runOverlay(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "load":
		os.Exit(runLoad(os.Args[2:]))
	case "clear":
		os.Exit(runSimple("clear", os.Args[2:], func(c *ipc.Client) error { return c.ClearImage() }))
	case "frame":
		os.Exit(runSimple("frame", os.Args[2:], func(c *ipc.Client) error {
			data, err := c.ToggleFrame()
			if err != nil {
				return err
			}
			fmt.Printf("decoration: %s\n", data.Decoration)
			return nil
		}))
	case "fullscreen":
		os.Exit(runSimple("fullscreen", os.Args[2:], func(c *ipc.Client) error {
			on, err := c.ToggleFullscreen()
			if err != nil {
				return err
			}
			fmt.Printf("fullscreen: %v\n", on)
			return nil
		}))
	case "topmost":
		os.Exit(runSimple("topmost", os.Args[2:], func(c *ipc.Client) error {
			on, err := c.ToggleTopmost()
			if err != nil {
				return err
			}
			fmt.Printf("always_on_top: %v\n", on)
			return nil
		}))
	case "minimize":
		os.Exit(runSimple("minimize", os.Args[2:], func(c *ipc.Client) error { return c.Minimize() }))
	case "close":
		os.Exit(runSimple("close", os.Args[2:], func(c *ipc.Client) error { return c.Close() }))
	case "opacity":
		os.Exit(runOpacity(os.Args[2:]))
	case "settings":
		os.Exit(runSettings(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: imgoverlay <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run [--image PATH]  Open the overlay window (foreground)")
	fmt.Fprintln(w, "  status [--json]     Show overlay state")
	fmt.Fprintln(w, "  monitors [--json]   List monitors")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  load <path>         Display an image")
	fmt.Fprintln(w, "  clear               Remove the image")
	fmt.Fprintln(w, "  frame               Toggle the window frame")
	fmt.Fprintln(w, "  fullscreen          Toggle fullscreen")
	fmt.Fprintln(w, "  topmost             Toggle always-on-top")
	fmt.Fprintln(w, "  minimize            Minimize the overlay")
	fmt.Fprintln(w, "  opacity <0.5-1.0>   Set transparency")
	fmt.Fprintln(w, "  settings open|close Show or hide the settings panel")
	fmt.Fprintln(w, "  close               Close the overlay")
	fmt.Fprintln(w, "  tui                 Interactive remote for the running overlay")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Show where a config value was set")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'imgoverlay <command> --help' for command-specific options.")
}

func runOverlay(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: imgoverlay run [--image PATH] [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the overlay window and serve control commands until it is closed.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	image := fs.String("image", "", "Image to display on start")
	path := fs.String("config", "", "Config file path (default: ~/.config/imgoverlay/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := res.Config

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if res.File != "" {
		logger.Info("configuration loaded", "file", res.File)
	}

	if cfg.Display != "" && os.Getenv("DISPLAY") == "" {
		os.Setenv("DISPLAY", cfg.Display)
	}
	if cfg.XAuthority != "" && os.Getenv("XAUTHORITY") == "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = daemon.Run(ctx, daemon.Options{
		Config:    cfg,
		ImagePath: *image,
		Logger:    logger,
	})
	if errors.Is(err, daemon.ErrAlreadyRunning) && *image != "" {
		// Hand the image to the running overlay instead.
		if err := ipc.NewClient().LoadImage(*image); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return config.LoadFromPath(path)
}

// wantJSON reports whether output should be JSON: explicitly requested or
// stdout is not a terminal.
func wantJSON(flagged bool) bool {
	return flagged || !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: imgoverlay status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show overlay state via IPC.")
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*jsonOut) {
		return printJSON(status)
	}
	image := status.ImagePath
	if !status.HasImage {
		image = "(none)"
	}
	fmt.Printf("image:          %s\n", image)
	fmt.Printf("geometry:       %dx%d+%d+%d\n", status.Width, status.Height, status.X, status.Y)
	fmt.Printf("decoration:     %s\n", status.Decoration)
	fmt.Printf("always_on_top:  %v\n", status.AlwaysOnTop)
	fmt.Printf("fullscreen:     %v\n", status.Fullscreen)
	fmt.Printf("transparency:   %.2f\n", status.Transparency)
	fmt.Printf("settings_open:  %v\n", status.SettingsOpen)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := ipc.NewClient().GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*jsonOut) {
		return printJSON(data)
	}
	for _, m := range data.Monitors {
		primary := ""
		if m.Primary {
			primary = " (primary)"
		}
		fmt.Printf("%d %s %dx%d+%d+%d%s\n", m.ID, m.Name, m.Width, m.Height, m.X, m.Y, primary)
	}
	return 0
}

func runLoad(args []string) int {
	if len(args) != 1 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: imgoverlay load <path>")
		return 2
	}
	if err := ipc.NewClient().LoadImage(args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runSimple(name string, args []string, f func(*ipc.Client) error) int {
	if len(args) > 0 {
		if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
			fmt.Fprintf(os.Stdout, "Usage: imgoverlay %s\n", name)
			return 0
		}
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		return 2
	}
	if err := f(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runOpacity(args []string) int {
	if len(args) != 1 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: imgoverlay opacity <0.5-1.0>")
		return 2
	}
	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid opacity %q: %v\n", args[0], err)
		return 2
	}
	applied, err := ipc.NewClient().SetTransparency(value)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("transparency: %.2f\n", applied)
	return 0
}

func runSettings(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: imgoverlay settings open|close")
		return 2
	}
	client := ipc.NewClient()
	var err error
	switch args[0] {
	case "open":
		err = client.OpenSettings()
	case "close":
		err = client.CloseSettings()
	default:
		fmt.Fprintf(os.Stderr, "Unknown settings command: %s\n", args[0])
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runTUI(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: imgoverlay tui")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive remote for the running overlay.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  f         Toggle window frame")
		fmt.Fprintln(os.Stderr, "  F         Toggle fullscreen")
		fmt.Fprintln(os.Stderr, "  t         Toggle always-on-top")
		fmt.Fprintln(os.Stderr, "  m         Minimize")
		fmt.Fprintln(os.Stderr, "  c         Clear image")
		fmt.Fprintln(os.Stderr, "  s         Open/close settings panel")
		fmt.Fprintln(os.Stderr, "  +/-       Adjust transparency")
		fmt.Fprintln(os.Stderr, "  x         Close the overlay")
		fmt.Fprintln(os.Stderr, "  q, Esc    Quit")
		return 0
	}
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "tui takes no arguments")
		return 2
	}
	if err := tui.Run(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  imgoverlay config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  imgoverlay config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  imgoverlay config explain [--path PATH]")
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/imgoverlay/config.yaml)")
	printDefaults := fs.Bool("defaults", false, "Print built-in defaults (print only)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	switch args[0] {
	case "validate":
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if res.File == "" {
			fmt.Println("no config file; all values are defaults")
			return 0
		}
		keys := make([]string, 0, len(res.Sources))
		for k := range res.Sources {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%-28s %s\n", k, formatSource(res.Sources[k]))
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	if src.Line > 0 {
		return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
	}
	return "file:" + src.File
}
