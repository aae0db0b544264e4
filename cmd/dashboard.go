package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"dashctl/internal/config"
	"dashctl/internal/kube"
	"dashctl/internal/tui/controller"
	"dashctl/internal/tui/panel"
	"dashctl/internal/tui/panels"
	"dashctl/internal/tui/screen"
	"dashctl/pkg/logging"

	"github.com/mattn/go-isatty"
	"k8s.io/client-go/kubernetes"
)

const subsystem = "CLI"

// haltTimeout bounds how long we wait for panels to finish updating on exit.
const haltTimeout = 2 * time.Second

var errNoTerminal = errors.New("dashctl needs an interactive terminal")

// For mocking in tests
var isTerminal = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type dashboardFlags struct {
	ConfigPath  string
	Debug       bool
	KubeContext string
	NoKube      bool
}

// loadDashboardConfig loads the configuration files and applies the command
// line on top.
func loadDashboardConfig(flags dashboardFlags) (config.DashctlConfig, error) {
	cfg, err := config.LoadConfig(flags.ConfigPath)
	if err != nil {
		return config.DashctlConfig{}, err
	}

	if flags.KubeContext != "" {
		cfg.Kube.Context = flags.KubeContext
	}
	if flags.NoKube {
		cfg.Kube.Disabled = true
	}
	if flags.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func runDashboard(ctx context.Context, flags dashboardFlags) error {
	if !isTerminal() {
		return errNoTerminal
	}

	cfg, err := loadDashboardConfig(flags)
	if err != nil {
		return err
	}
	level, err := logging.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid logLevel: %w", err)
	}

	logs := logging.InitForTUI(level)
	defer logging.CloseTUIChannel()
	for _, key := range cfg.UnusedKeys {
		logging.Warn(subsystem, "Ignoring unknown setting %q", key)
	}

	c := buildDashboard(cfg, screen.New(0, 0), logs)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.Start(ctx)
	_, runErr := controller.NewProgram(c).Run()
	cancel()
	if err := c.Halt(haltTimeout); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if runErr != nil {
		return fmt.Errorf("dashboard failed: %w", runErr)
	}
	return nil
}

// buildDashboard creates the header and one page per shown panel: nodes, log,
// configuration and the command prompt, in that order.
func buildDashboard(cfg config.DashctlConfig, scr *screen.Screen, logs <-chan logging.LogEntry) *controller.Controller {
	header := panels.NewHeaderPanel(scr, cfg.Panels.Header.Interval, panels.CollectSystemStats)

	var clientset kubernetes.Interface
	var contextName string
	if cfg.Panels.Show.Nodes || cfg.Panels.Show.Command {
		clientset, contextName = connectCluster(cfg)
	}

	var pages [][]panel.Interface
	if cfg.Panels.Show.Nodes && clientset != nil {
		pages = append(pages, []panel.Interface{
			panels.NewNodesPanel(scr, cfg.Panels.Nodes.Interval, clientset, contextName),
		})
	}
	if cfg.Panels.Show.Log {
		pages = append(pages, []panel.Interface{
			panels.NewLogPanel(scr, cfg.Panels.Log.Interval, logs, cfg.Panels.Log.Backlog),
		})
	}
	if cfg.Panels.Show.Config {
		pages = append(pages, []panel.Interface{panels.NewConfigPanel(scr, cfg)})
	}
	if cfg.Panels.Show.Command {
		pages = append(pages, []panel.Interface{panels.NewCommandPanel(scr, clientset, contextName)})
	}

	return controller.New(scr, header, pages, controller.Options{
		RedrawRate:  cfg.RedrawRate,
		RefreshRate: cfg.RefreshRate,
		ConfirmQuit: cfg.ConfirmQuit,
	})
}

// connectCluster connects to the configured cluster. The clientset is nil when
// kube is disabled or the kubeconfig can't be used.
func connectCluster(cfg config.DashctlConfig) (kubernetes.Interface, string) {
	if cfg.Kube.Disabled {
		logging.Info(subsystem, "Kubernetes disabled, not connecting to a cluster")
		return nil, ""
	}

	clientset, contextName, err := kube.GetClientsetForContext(cfg.Kube.Context)
	if err != nil {
		logging.Error(subsystem, err, "Not connecting to a cluster")
		return nil, ""
	}
	logging.Info(subsystem, "Using context %s", contextName)
	return clientset, contextName
}
