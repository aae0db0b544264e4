// Package config provides configuration management for dashctl.
//
// This package implements a layered configuration system that allows users to
// customize dashctl's behavior through YAML or TOML files. Configuration is
// loaded from multiple sources and merged in a specific order, with later
// sources overriding earlier ones.
//
// # Configuration Layers
//
// Configuration is loaded and merged in the following order:
//
//  1. Default Configuration (embedded in binary)
//     - Every panel shown, polling every few seconds
//
//  2. User Configuration (~/.config/dashctl/config.yaml)
//     - User-specific settings that apply everywhere
//
//  3. Project Configuration (./.dashctl/config.yaml)
//     - Settings for the current directory, shareable via version control
//
//  4. The file passed with --config
//     - Decoded as TOML when it ends in .toml, YAML otherwise
//
// Each layer only overrides the settings it mentions. Entries that don't
// match a setting are collected in UnusedKeys so they can be reported.
//
// # Configuration Structure
//
//	logLevel: info
//	redrawRate: 5s       # at least 1s
//	refreshRate: 5s      # 0 disables periodic repaints
//	confirmQuit: true
//	panels:
//	  show:
//	    nodes: true
//	    log: true
//	    config: true
//	  header:
//	    interval: 1s
//	  nodes:
//	    interval: 5s
//	  log:
//	    interval: 500ms
//	    backlog: 1000
//	kube:
//	  context: ""        # current kubeconfig context when empty
//	  disabled: false
//
// Durations are written as strings such as "500ms" or "2m".
//
// # Usage Example
//
//	cfg, err := config.LoadConfig("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, entry := range cfg.Entries() {
//	    fmt.Printf("%s = %s\n", entry.Key, entry.Value)
//	}
package config
