package mcp

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/imgoverlay/internal/config"
)

type fakeEntry string

func (e fakeEntry) Name() string               { return string(e) }
func (e fakeEntry) IsDir() bool                { return false }
func (e fakeEntry) Type() fs.FileMode          { return fs.ModeSocket }
func (e fakeEntry) Info() (fs.FileInfo, error) { return nil, errors.New("not implemented") }

type fakeInfo struct{ name string }

func (i fakeInfo) Name() string       { return i.name }
func (i fakeInfo) Size() int64        { return 0 }
func (i fakeInfo) Mode() fs.FileMode  { return 0o600 }
func (i fakeInfo) ModTime() time.Time { return time.Time{} }
func (i fakeInfo) IsDir() bool        { return false }
func (i fakeInfo) Sys() any           { return nil }

// resolverFixture builds a displayResolver backed by canned loginctl output, proc
// environments, socket names and existing files.
type resolverFixture struct {
	commands map[string]string
	environs map[string]string
	sockets  []string
	files    map[string]bool
}

func (f resolverFixture) resolver() *displayResolver {
	return &displayResolver{
		uid: 1000,
		command: func(name string, args ...string) (string, error) {
			key := strings.Join(append([]string{name}, args...), " ")
			out, ok := f.commands[key]
			if !ok {
				return "", errors.New("command failed")
			}
			return out, nil
		},
		readFile: func(path string) ([]byte, error) {
			data, ok := f.environs[path]
			if !ok {
				return nil, os.ErrNotExist
			}
			return []byte(data), nil
		},
		readDir: func(string) ([]os.DirEntry, error) {
			if f.sockets == nil {
				return nil, os.ErrNotExist
			}
			entries := make([]os.DirEntry, len(f.sockets))
			for i, s := range f.sockets {
				entries[i] = fakeEntry(s)
			}
			return entries, nil
		},
		stat: func(path string) (os.FileInfo, error) {
			if !f.files[path] {
				return nil, os.ErrNotExist
			}
			return fakeInfo{name: filepath.Base(path)}, nil
		},
	}
}

func loginSession(display, leader, environ string) resolverFixture {
	return resolverFixture{
		commands: map[string]string{
			"loginctl list-sessions --no-legend":         "c1 1001 bob seat0\n4 1000 user seat0\n",
			"loginctl show-session 4 -p Display --value": display + "\n",
			"loginctl show-session 4 -p Leader --value":  leader + "\n",
		},
		environs: map[string]string{"/proc/" + leader + "/environ": environ},
	}
}

func TestResolveDisplay(t *testing.T) {
	tests := []struct {
		name    string
		fixture resolverFixture
		env     []string
		cfg     *config.Config
		want    displayTarget
	}{
		{
			name:    "environment wins",
			fixture: loginSession(":9", "77", "XAUTHORITY=/run/x"),
			env:     []string{"DISPLAY=:7", "XAUTHORITY=/tmp/xauth-env"},
			cfg:     &config.Config{Display: ":1", XAuthority: "/tmp/cfg"},
			want:    displayTarget{Display: ":7", XAuthority: "/tmp/xauth-env", Source: "env"},
		},
		{
			name:    "config then home xauthority",
			fixture: resolverFixture{files: map[string]bool{"/home/u/.Xauthority": true}},
			env:     []string{"HOME=/home/u"},
			cfg:     &config.Config{Display: " :1 "},
			want:    displayTarget{Display: ":1", XAuthority: "/home/u/.Xauthority", Source: "config"},
		},
		{
			name:    "login session leader environment",
			fixture: loginSession(":0", "77", "PATH=/bin\x00DISPLAY=:3\x00XAUTHORITY=/run/user/1000/xauth\x00"),
			env:     []string{"HOME=/home/u"},
			want:    displayTarget{Display: ":3", XAuthority: "/run/user/1000/xauth", Source: "session"},
		},
		{
			name:    "session supplies only xauthority",
			fixture: loginSession(":0", "77", "XAUTHORITY=/run/xa\x00"),
			env:     []string{"DISPLAY=:2"},
			want:    displayTarget{Display: ":2", XAuthority: "/run/xa", Source: "env"},
		},
		{
			name:    "highest socket",
			fixture: resolverFixture{sockets: []string{"X0", "X12", "X2", "junk", "Xa"}},
			env:     []string{"HOME=/home/u"},
			want:    displayTarget{Display: ":12", Source: "socket"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fixture.resolver().resolve(tt.env, tt.cfg)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("target (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveDisplaySkipsHeadlessSessions(t *testing.T) {
	f := loginSession("n/a", "77", "DISPLAY=:5")
	f.sockets = []string{"X1"}

	got, err := f.resolver().resolve([]string{"HOME=/home/u"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Display != ":1" || got.Source != "socket" {
		t.Errorf("got %+v, want socket display :1", got)
	}
}

func TestResolveDisplayUnavailable(t *testing.T) {
	_, err := resolverFixture{}.resolver().resolve([]string{"HOME=/home/u"}, &config.Config{})
	if !errors.Is(err, errNoDisplay) {
		t.Fatalf("err = %v, want errNoDisplay", err)
	}
}

func TestApplyDisplayEnv(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", xdg)

	cmd := exec.Command("true")
	cmd.Env = []string{"HOME=/home/u", "DISPLAY="}
	p := resolverFixture{files: map[string]bool{"/home/u/.Xauthority": true}}.resolver()

	target, err := applyDisplayEnv(cmd, p, &config.Config{Display: ":4"})
	if err != nil {
		t.Fatalf("applyDisplayEnv: %v", err)
	}
	if target.Source != "config" {
		t.Errorf("source = %q", target.Source)
	}
	for key, want := range map[string]string{
		"DISPLAY":         ":4",
		"XAUTHORITY":      "/home/u/.Xauthority",
		"XDG_RUNTIME_DIR": xdg,
	} {
		if got := envLookup(cmd.Env, key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestSessionsForUID(t *testing.T) {
	out := "1 1000 user seat0\n2 1001 other seat0\n\n   3 1000 user seat1  \n"
	if diff := cmp.Diff([]string{"1", "3"}, sessionsForUID(out, "1000")); diff != "" {
		t.Errorf("sessions (-want +got):\n%s", diff)
	}
}
