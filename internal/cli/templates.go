package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwhite-io/easel/internal/template"
)

// TemplateInfo describes one catalog template for listing.
type TemplateInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Frames      int    `json:"frames"`
	Columns     int    `json:"columns"`
}

// NewTemplatesCommand creates the templates command.
func NewTemplatesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "templates",
		Short:         "List the built-in board templates",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplates(rootOpts, cmd)
		},
	}
}

func runTemplates(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	catalog, err := template.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "load template catalog", err)
	}

	infos := []TemplateInfo{}
	for _, name := range catalog.Names() {
		tpl, _ := catalog.Get(name)
		infos = append(infos, TemplateInfo{
			Name:        tpl.Name,
			Title:       tpl.Title,
			Description: tpl.Description,
			Frames:      len(tpl.Frames),
			Columns:     tpl.Columns,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%-10s %s (%d frames, %d columns)\n",
			info.Name, info.Title, info.Frames, info.Columns)
		if info.Description != "" {
			fmt.Fprintf(formatter.Writer, "           %s\n", info.Description)
		}
	}
	return nil
}
