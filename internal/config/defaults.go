package config

import "time"

const (
	minRedrawRate   = time.Second
	minPollInterval = 100 * time.Millisecond
)

// GetDefaultConfig returns the configuration used when no files override it:
// every panel shown, polling at a few seconds, and the current kube context.
func GetDefaultConfig() DashctlConfig {
	return DashctlConfig{
		LogLevel:    "info",
		RedrawRate:  5 * time.Second,
		RefreshRate: 5 * time.Second,
		ConfirmQuit: true,
		Panels: PanelsConfig{
			Show: ShowConfig{
				Nodes:   true,
				Log:     true,
				Config:  true,
				Command: true,
			},
			Header: PollConfig{Interval: time.Second},
			Nodes:  PollConfig{Interval: 5 * time.Second},
			Log: LogPanelConfig{
				Interval: 500 * time.Millisecond,
				Backlog:  1000,
			},
		},
	}
}

// normalize clamps settings to the ranges they support.
func normalize(cfg DashctlConfig) DashctlConfig {
	defaults := GetDefaultConfig()

	cfg.RedrawRate = max(minRedrawRate, cfg.RedrawRate)
	cfg.RefreshRate = max(0, cfg.RefreshRate)

	cfg.Panels.Header.Interval = max(minPollInterval, cfg.Panels.Header.Interval)
	cfg.Panels.Nodes.Interval = max(minPollInterval, cfg.Panels.Nodes.Interval)
	cfg.Panels.Log.Interval = max(minPollInterval, cfg.Panels.Log.Interval)

	if cfg.Panels.Log.Backlog <= 0 {
		cfg.Panels.Log.Backlog = defaults.Panels.Log.Backlog
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	return cfg
}
