// Package cli implements the walletvault inspection commands. The CLI reads
// stores; mutating the wallet stays with the wallet itself.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	// Register the backend variants selectable via --backend.
	_ "github.com/mighty840/walletvault/internal/storage/badgerdb"
	_ "github.com/mighty840/walletvault/internal/storage/bolt"
	_ "github.com/mighty840/walletvault/internal/storage/memory"
	_ "github.com/mighty840/walletvault/internal/storage/sqlite"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "walletvault",
		Short:         "Inspect wallet persistence stores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	cmd.AddCommand(newVersionCommand(out, build))
	cmd.AddCommand(newBackendsCommand(out))
	cmd.AddCommand(newAccountsCommand(out))
	cmd.AddCommand(newSchemaCommand(out))
	cmd.InitDefaultCompletionCmd()
	return cmd
}

func newVersionCommand(out io.Writer, build BuildInfo) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(build)
			}

			_, err := fmt.Fprintf(out, "version=%s commit=%s build_time=%s\n", build.Version, build.Commit, build.BuildTime)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version as JSON")
	return cmd
}
