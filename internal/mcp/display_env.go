package mcp

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/1broseidon/imgoverlay/internal/config"
	"github.com/1broseidon/imgoverlay/internal/runtimepath"
)

const x11SocketDir = "/tmp/.X11-unix"

var errNoDisplay = errors.New("starting the overlay requires DISPLAY; set display in config (e.g. display: \":1\") or export DISPLAY for the MCP server")

// displayTarget is the X display an overlay child process will connect to.
type displayTarget struct {
	Display    string
	XAuthority string
	// Source names where Display came from: env, config, session or socket.
	Source string
}

// displayResolver resolves a displayTarget for processes started from an
// environment without a graphical session, such as an MCP client's stdio child.
type displayResolver struct {
	uid      int
	command  func(name string, args ...string) (string, error)
	readFile func(string) ([]byte, error)
	readDir  func(string) ([]os.DirEntry, error)
	stat     func(string) (os.FileInfo, error)
}

func newDisplayResolver() *displayResolver {
	return &displayResolver{
		uid: os.Getuid(),
		command: func(name string, args ...string) (string, error) {
			out, err := exec.Command(name, args...).Output()
			return string(out), err
		},
		readFile: os.ReadFile,
		readDir:  os.ReadDir,
		stat:     os.Stat,
	}
}

// resolve picks DISPLAY and XAUTHORITY for env, consulting the config, the
// user's login session and finally the X socket directory.
func (p *displayResolver) resolve(env []string, cfg *config.Config) (displayTarget, error) {
	t := displayTarget{
		Display:    strings.TrimSpace(envLookup(env, "DISPLAY")),
		XAuthority: strings.TrimSpace(envLookup(env, "XAUTHORITY")),
		Source:     "env",
	}
	if t.Display == "" && cfg != nil && strings.TrimSpace(cfg.Display) != "" {
		t.Display, t.Source = strings.TrimSpace(cfg.Display), "config"
	}
	if t.XAuthority == "" && cfg != nil {
		t.XAuthority = strings.TrimSpace(cfg.XAuthority)
	}

	if t.Display == "" || t.XAuthority == "" {
		if d, xauth, ok := p.fromSession(); ok {
			if t.Display == "" {
				t.Display, t.Source = d, "session"
			}
			if t.XAuthority == "" {
				t.XAuthority = xauth
			}
		}
	}
	if t.Display == "" {
		if d := p.fromSockets(x11SocketDir); d != "" {
			t.Display, t.Source = d, "socket"
		}
	}
	if t.Display == "" {
		return displayTarget{}, errNoDisplay
	}

	if t.XAuthority == "" {
		home := strings.TrimSpace(envLookup(env, "HOME"))
		if home == "" {
			home, _ = os.UserHomeDir()
		}
		if home != "" {
			candidate := filepath.Join(home, ".Xauthority")
			if _, err := p.stat(candidate); err == nil {
				t.XAuthority = candidate
			}
		}
	}
	return t, nil
}

// fromSession asks logind for the first graphical session owned by the
// current user and reads the display settings from its leader's environment.
func (p *displayResolver) fromSession() (display, xauthority string, ok bool) {
	out, err := p.command("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return "", "", false
	}
	for _, id := range sessionsForUID(out, strconv.Itoa(p.uid)) {
		display = p.sessionProp(id, "Display")
		if display == "" || strings.EqualFold(display, "n/a") {
			continue
		}
		if leader := p.sessionProp(id, "Leader"); leader != "" && leader != "0" {
			env := p.procEnviron(leader)
			if d := strings.TrimSpace(env["DISPLAY"]); d != "" {
				display = d
			}
			xauthority = strings.TrimSpace(env["XAUTHORITY"])
		}
		return display, xauthority, true
	}
	return "", "", false
}

func (p *displayResolver) sessionProp(id, prop string) string {
	out, err := p.command("loginctl", "show-session", id, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func (p *displayResolver) procEnviron(pid string) map[string]string {
	data, err := p.readFile(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil
	}
	env := make(map[string]string)
	for _, entry := range strings.Split(string(data), "\x00") {
		if k, v, found := strings.Cut(entry, "="); found && k != "" {
			env[k] = v
		}
	}
	return env
}

// fromSockets returns the highest-numbered display with a socket in dir.
func (p *displayResolver) fromSockets(dir string) string {
	entries, err := p.readDir(dir)
	if err != nil {
		return ""
	}
	var numbers []int
	for _, e := range entries {
		rest, found := strings.CutPrefix(e.Name(), "X")
		if !found {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) == 0 {
		return ""
	}
	return fmt.Sprintf(":%d", slices.Max(numbers))
}

// sessionsForUID parses `loginctl list-sessions --no-legend` output.
func sessionsForUID(output, uid string) []string {
	var ids []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == uid {
			ids = append(ids, fields[0])
		}
	}
	return ids
}

// applyDisplayEnv writes the resolved display target and the runtime dir
// into cmd's environment so the child finds both the X server and the
// control socket the MCP server will dial.
func applyDisplayEnv(cmd *exec.Cmd, p *displayResolver, cfg *config.Config) (displayTarget, error) {
	env := cmd.Environ()
	if strings.TrimSpace(envLookup(env, "XDG_RUNTIME_DIR")) == "" {
		if dir, err := runtimepath.Dir(); err == nil && dir != "" {
			env = upsertEnv(env, "XDG_RUNTIME_DIR", dir)
		}
	}
	t, err := p.resolve(env, cfg)
	if err != nil {
		return displayTarget{}, err
	}
	env = upsertEnv(env, "DISPLAY", t.Display)
	if t.XAuthority != "" {
		env = upsertEnv(env, "XAUTHORITY", t.XAuthority)
	}
	cmd.Env = env
	return t, nil
}

func envLookup(env []string, key string) string {
	// Later entries win, matching exec.Cmd's dedup.
	for i := len(env) - 1; i >= 0; i-- {
		if v, found := strings.CutPrefix(env[i], key+"="); found {
			return v
		}
	}
	return ""
}

func upsertEnv(env []string, key, value string) []string {
	i := slices.IndexFunc(env, func(e string) bool { return strings.HasPrefix(e, key+"=") })
	if i < 0 {
		return append(env, key+"="+value)
	}
	env[i] = key + "=" + value
	return env
}
