package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"text/template"

	"github.com/adrg/xdg"
)

// ServiceManager installs the daemon as a user-level system service:
// a launchd agent on macOS, a systemd user unit on Linux.
type ServiceManager struct {
	executable string
	debug      bool
}

// NewServiceManager resolves the current executable for service files.
func NewServiceManager() (*ServiceManager, error) {
	executable, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}
	return &ServiceManager{executable: executable}, nil
}

// SetDebug enables debug output.
func (m *ServiceManager) SetDebug(debug bool) {
	m.debug = debug
}

// Install writes the service definition and starts the service.
func (m *ServiceManager) Install() error {
	switch runtime.GOOS {
	case "darwin":
		return m.installLaunchd()
	case "linux":
		return m.installSystemd()
	default:
		return fmt.Errorf("service installation is not supported on %s", runtime.GOOS)
	}
}

// Uninstall stops the service and removes its definition.
func (m *ServiceManager) Uninstall() error {
	switch runtime.GOOS {
	case "darwin":
		return m.uninstallLaunchd()
	case "linux":
		return m.uninstallSystemd()
	default:
		return fmt.Errorf("service uninstallation is not supported on %s", runtime.GOOS)
	}
}

// IsInstalled reports whether a service definition exists.
func (m *ServiceManager) IsInstalled() bool {
	switch runtime.GOOS {
	case "darwin":
		return fileExists(m.launchdPath())
	case "linux":
		return fileExists(m.systemdPath())
	default:
		return false
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// renderServiceFile writes a template-expanded service definition,
// creating the parent directory first.
func renderServiceFile(path, name, text string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return fmt.Errorf("parsing %s template: %w", name, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s file: %w", name, err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("writing %s file: %w", name, err)
	}
	return nil
}

func runCommand(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v: %w: %s", name, args, err, string(output))
	}
	return nil
}

// macOS launchd

const launchdPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>com.pawminder.daemon</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.Executable}}</string>
        <string>daemon</string>
        <string>start</string>
        <string>--foreground</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>{{.LogPath}}</string>
    <key>StandardErrorPath</key>
    <string>{{.LogPath}}</string>
    <key>WorkingDirectory</key>
    <string>{{.WorkingDirectory}}</string>
</dict>
</plist>
`

func (m *ServiceManager) launchdPath() string {
	return filepath.Join(os.Getenv("HOME"), "Library", "LaunchAgents", "com.pawminder.daemon.plist")
}

func (m *ServiceManager) installLaunchd() error {
	plistPath := m.launchdPath()

	err := renderServiceFile(plistPath, "plist", launchdPlist, struct {
		Executable       string
		LogPath          string
		WorkingDirectory string
	}{
		Executable:       m.executable,
		LogPath:          GetLogPath(),
		WorkingDirectory: filepath.Dir(m.executable),
	})
	if err != nil {
		return err
	}

	if err := runCommand("launchctl", "load", plistPath); err != nil {
		return fmt.Errorf("loading service: %w", err)
	}

	if m.debug {
		fmt.Printf("[DEBUG] Installed launchd agent at %s\n", plistPath)
	}
	return nil
}

func (m *ServiceManager) uninstallLaunchd() error {
	plistPath := m.launchdPath()

	// Unload may fail when the agent was never loaded.
	exec.Command("launchctl", "unload", plistPath).Run()

	if err := os.Remove(plistPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing plist file: %w", err)
	}

	if m.debug {
		fmt.Printf("[DEBUG] Removed launchd agent from %s\n", plistPath)
	}
	return nil
}

// Linux systemd

const systemdUnit = `[Unit]
Description=Pawminder dog care reminder daemon
After=network.target

[Service]
Type=simple
ExecStart={{.Executable}} daemon start --foreground
Restart=on-failure
RestartSec=5
StandardOutput=append:{{.LogPath}}
StandardError=append:{{.LogPath}}
Environment="HOME={{.Home}}"
Environment="XDG_DATA_HOME={{.DataHome}}"
Environment="XDG_STATE_HOME={{.StateHome}}"

[Install]
WantedBy=default.target
`

func (m *ServiceManager) systemdPath() string {
	return filepath.Join(xdg.ConfigHome, "systemd", "user", "pawminder.service")
}

func (m *ServiceManager) installSystemd() error {
	unitPath := m.systemdPath()

	err := renderServiceFile(unitPath, "unit", systemdUnit, struct {
		Executable string
		LogPath    string
		Home       string
		DataHome   string
		StateHome  string
	}{
		Executable: m.executable,
		LogPath:    GetLogPath(),
		Home:       os.Getenv("HOME"),
		DataHome:   xdg.DataHome,
		StateHome:  xdg.StateHome,
	})
	if err != nil {
		return err
	}

	if err := runCommand("systemctl", "--user", "daemon-reload"); err != nil {
		return fmt.Errorf("reloading systemd: %w", err)
	}
	if err := runCommand("systemctl", "--user", "enable", "pawminder.service"); err != nil {
		return fmt.Errorf("enabling service: %w", err)
	}
	if err := runCommand("systemctl", "--user", "start", "pawminder.service"); err != nil {
		return fmt.Errorf("starting service: %w", err)
	}

	if m.debug {
		fmt.Printf("[DEBUG] Installed systemd user unit at %s\n", unitPath)
	}
	return nil
}

func (m *ServiceManager) uninstallSystemd() error {
	unitPath := m.systemdPath()

	// Stop/disable may fail when the unit is not active.
	exec.Command("systemctl", "--user", "stop", "pawminder.service").Run()
	exec.Command("systemctl", "--user", "disable", "pawminder.service").Run()

	if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing unit file: %w", err)
	}

	exec.Command("systemctl", "--user", "daemon-reload").Run()

	if m.debug {
		fmt.Printf("[DEBUG] Removed systemd user unit from %s\n", unitPath)
	}
	return nil
}
