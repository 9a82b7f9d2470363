package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/rdapgw/internal/classifier"
	"github.com/zjrosen/rdapgw/internal/config"
)

var gatewaysCmd = &cobra.Command{
	Use:   "gateways",
	Short: "Manage the shared RDAP gateway table",
}

var gatewaysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and configured gateways",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		listGateways(cfg, cmd.OutOrStdout())
		return nil
	},
}

var gatewaysAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a gateway to the config file",
	Long: `Add a shared RDAP operator to the gateways section of the config file.
At least one of --host, --suffix or --domain is required. Other sections of
the file keep their comments and layout.

Examples:
  rdapgw gateways add "Example Hosting" --host rdap.examplehosting.net
  rdapgw gateways add Acme --suffix .rdap.acme.example --domain acme.example`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts, _ := cmd.Flags().GetStringSlice("host")
		suffixes, _ := cmd.Flags().GetStringSlice("suffix")
		domains, _ := cmd.Flags().GetStringSlice("domain")
		g := config.GatewayConfig{Name: strings.TrimSpace(args[0]), Hosts: hosts, Suffixes: suffixes, Domains: domains}

		path := configFilePath()
		updated, err := config.AddGateway(path, g, cfg.Gateways)
		if err != nil {
			return fmt.Errorf("adding gateway: %w", err)
		}
		cfg.Gateways = updated
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added gateway %q to %s\n", g.Name, path)
		return nil
	},
}

var gatewaysClassifyCmd = &cobra.Command{
	Use:   "classify <rdap-url> [registrar name]",
	Short: "Show how an RDAP URL would be classified",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		classifyURL(cfg, args[0], name, cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gatewaysCmd)
	gatewaysCmd.AddCommand(gatewaysListCmd, gatewaysAddCmd, gatewaysClassifyCmd)

	gatewaysAddCmd.Flags().StringSlice("host", nil, "exact RDAP host (repeatable)")
	gatewaysAddCmd.Flags().StringSlice("suffix", nil, "host suffix such as .rdap.example.net (repeatable)")
	gatewaysAddCmd.Flags().StringSlice("domain", nil, "registrable domain (repeatable)")
}

func listGateways(c config.Config, out io.Writer) {
	write := func(source string, g classifier.Gateway) {
		var parts []string
		if len(g.Hosts) > 0 {
			parts = append(parts, "hosts: "+strings.Join(g.Hosts, ", "))
		}
		if len(g.Suffixes) > 0 {
			parts = append(parts, "suffixes: "+strings.Join(g.Suffixes, ", "))
		}
		if len(g.Domains) > 0 {
			parts = append(parts, "domains: "+strings.Join(g.Domains, ", "))
		}
		_, _ = fmt.Fprintf(out, "%s  %s  %s\n", cell(g.Name, 24), cell(source, 8), strings.Join(parts, "; "))
	}
	for _, g := range classifier.BuiltinGateways() {
		write("built-in", g)
	}
	for _, g := range c.ClassifierGateways() {
		write("config", g)
	}
}

func classifyURL(c config.Config, rawURL, name string, out io.Writer) {
	p := classifier.Default(c.ClassifierGateways()...).Classify(rawURL, name)
	host := classifier.ParseHost(rawURL)
	_, _ = fmt.Fprintf(out, "host:     %s\n", host)
	if d := classifier.RegistrableDomain(host); d != "" {
		_, _ = fmt.Fprintf(out, "domain:   %s\n", d)
	}
	_, _ = fmt.Fprintf(out, "provider: %s\n", p.Name)
	_, _ = fmt.Fprintf(out, "kind:     %s\n", p.Kind)
	_, _ = fmt.Fprintf(out, "reason:   %s\n", p.Reason)
}
