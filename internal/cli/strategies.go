package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/genxdata/internal/strategy"
)

// StrategyInfo describes one registered strategy.
type StrategyInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Params      []string `json:"params"`
	Aliases     []string `json:"aliases,omitempty"`
}

// NewListStrategiesCommand creates the list-strategies command.
func NewListStrategiesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list-strategies",
		Short:         "List strategies, their aliases and params",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListStrategies(rootOpts, cmd)
		},
	}
}

func runListStrategies(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	infos, err := describeStrategies(strategy.DefaultFactory(newLogger(opts, cmd.ErrOrStderr())))
	if err != nil {
		return reportError(formatter, "failed to list strategies", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%s\n  %s\n", info.Name, info.Description)
		fmt.Fprintf(formatter.Writer, "  params: %s\n", strings.Join(info.Params, ", "))
		if len(info.Aliases) > 0 {
			fmt.Fprintf(formatter.Writer, "  aliases: %s\n", strings.Join(info.Aliases, ", "))
		}
	}
	return nil
}

func describeStrategies(f *strategy.Factory) ([]StrategyInfo, error) {
	aliases := map[string][]string{}
	for alias, name := range f.Aliases() {
		aliases[name] = append(aliases[name], alias)
	}

	var out []StrategyInfo
	for _, name := range f.Names() {
		d, err := f.Resolve(name)
		if err != nil {
			return nil, err
		}
		a := aliases[name]
		sort.Strings(a)
		out = append(out, StrategyInfo{
			Name:        d.Name,
			Description: d.Description,
			Params:      d.Fields(),
			Aliases:     a,
		})
	}
	return out, nil
}
