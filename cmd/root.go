package cmd

import (
	"os"

	"dashctl/internal/color"
	"dashctl/internal/kube"

	"github.com/spf13/cobra"
)

// Flags of the root command
var (
	configPath  string
	debugMode   bool
	kubeContext string
	noKube      bool
	noColor     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dashctl",
	Short: "Terminal dashboard for your machine and Kubernetes cluster",
	Long: `dashctl is a paged terminal dashboard. A header with system stats sits
above pages showing the nodes of a Kubernetes cluster, the application log,
the effective configuration and a prompt for cluster queries. Panels
refresh in the background and can be paused with p.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. no terminal, broken config file)
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		color.Initialize(noColor)
		return runDashboard(cmd.Context(), dashboardFlags{
			ConfigPath:  configPath,
			Debug:       debugMode,
			KubeContext: kubeContext,
			NoKube:      noKube,
		})
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "dashctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

// completeKubeContexts offers the contexts in the kubeconfig for --kube-context.
func completeKubeContexts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	contexts, err := kube.GetAvailableContexts()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return contexts, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file applied after the user and project ones (.yaml or .toml)")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Show debug messages in the log panel")
	rootCmd.Flags().StringVar(&kubeContext, "kube-context", "", "Kubeconfig context for the nodes panel (default is the current context)")
	rootCmd.Flags().BoolVar(&noKube, "no-kube", false, "Don't connect to a Kubernetes cluster")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Draw without colors")

	_ = rootCmd.RegisterFlagCompletionFunc("kube-context", completeKubeContexts)
}
