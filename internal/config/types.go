package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DashctlConfig is the top-level configuration structure for dashctl.
type DashctlConfig struct {
	// LogLevel is the minimum level shown in the log panel: debug, info, warn
	// or error.
	LogLevel string `yaml:"logLevel" toml:"logLevel"`
	// RedrawRate is how often the screen is checked for changes when there's
	// no input. At least one second.
	RedrawRate time.Duration `yaml:"redrawRate" toml:"redrawRate"`
	// RefreshRate forces a full repaint when this much time has passed since
	// the last one. Zero disables it.
	RefreshRate time.Duration `yaml:"refreshRate" toml:"refreshRate"`
	// ConfirmQuit asks for a second q before exiting.
	ConfirmQuit bool `yaml:"confirmQuit" toml:"confirmQuit"`

	Panels PanelsConfig `yaml:"panels" toml:"panels"`
	Kube   KubeConfig   `yaml:"kube" toml:"kube"`

	// UnusedKeys lists entries in the loaded files that didn't match any
	// setting.
	UnusedKeys []string `yaml:"-" toml:"-"`
	// Sources are the files applied on top of the defaults, in the order
	// they were loaded.
	Sources []SourceFile `yaml:"-" toml:"-"`
}

// SourceFile is a configuration file as it was read.
type SourceFile struct {
	Path    string
	Content string
}

// Lines splits the file into lines, with tabs expanded and trailing
// whitespace removed.
func (f SourceFile) Lines() []string {
	content := strings.TrimRight(f.Content, "\n")
	if content == "" {
		return nil
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(strings.ReplaceAll(line, "\t", "   "), " \r")
	}
	return lines
}

// PanelsConfig selects the pages shown and tunes their panels.
type PanelsConfig struct {
	Show   ShowConfig     `yaml:"show" toml:"show"`
	Header PollConfig     `yaml:"header" toml:"header"`
	Nodes  PollConfig     `yaml:"nodes" toml:"nodes"`
	Log    LogPanelConfig `yaml:"log" toml:"log"`
}

// ShowConfig toggles optional panels. The header is always shown.
type ShowConfig struct {
	Nodes  bool `yaml:"nodes" toml:"nodes"`
	Log    bool `yaml:"log" toml:"log"`
	Config bool `yaml:"config" toml:"config"`
	// Command is the prompt for cluster queries.
	Command bool `yaml:"command" toml:"command"`
}

// PollConfig is the update interval of a panel that polls its data.
type PollConfig struct {
	Interval time.Duration `yaml:"interval" toml:"interval"`
}

// LogPanelConfig configures the log panel.
type LogPanelConfig struct {
	Interval time.Duration `yaml:"interval" toml:"interval"`
	// Backlog is the number of entries kept.
	Backlog int `yaml:"backlog" toml:"backlog"`
}

// KubeConfig selects the cluster the nodes panel shows.
type KubeConfig struct {
	// Context is the kubeconfig context to use. Empty means the current one.
	Context string `yaml:"context" toml:"context"`
	// Disabled turns off everything that talks to a cluster.
	Disabled bool `yaml:"disabled" toml:"disabled"`
}

// Entry is a single setting as shown to the user.
type Entry struct {
	Key   string
	Value string
}

// Entries lists the effective settings, in the order they're documented.
func (c DashctlConfig) Entries() []Entry {
	kubeContext := c.Kube.Context
	if kubeContext == "" {
		kubeContext = "(current)"
	}

	return []Entry{
		{Key: "logLevel", Value: c.LogLevel},
		{Key: "redrawRate", Value: c.RedrawRate.String()},
		{Key: "refreshRate", Value: formatRate(c.RefreshRate)},
		{Key: "confirmQuit", Value: strconv.FormatBool(c.ConfirmQuit)},
		{Key: "panels.show.nodes", Value: strconv.FormatBool(c.Panels.Show.Nodes)},
		{Key: "panels.show.log", Value: strconv.FormatBool(c.Panels.Show.Log)},
		{Key: "panels.show.config", Value: strconv.FormatBool(c.Panels.Show.Config)},
		{Key: "panels.show.command", Value: strconv.FormatBool(c.Panels.Show.Command)},
		{Key: "panels.header.interval", Value: c.Panels.Header.Interval.String()},
		{Key: "panels.nodes.interval", Value: c.Panels.Nodes.Interval.String()},
		{Key: "panels.log.interval", Value: c.Panels.Log.Interval.String()},
		{Key: "panels.log.backlog", Value: strconv.Itoa(c.Panels.Log.Backlog)},
		{Key: "kube.context", Value: kubeContext},
		{Key: "kube.disabled", Value: strconv.FormatBool(c.Kube.Disabled)},
	}
}

func formatRate(d time.Duration) string {
	if d == 0 {
		return fmt.Sprintf("%s (disabled)", d)
	}
	return d.String()
}
