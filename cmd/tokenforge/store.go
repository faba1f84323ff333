package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yacobolo/tokenforge/internal/loader"
	"github.com/yacobolo/tokenforge/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage design systems in the local database",
	Long: `The store is the SQLite database the HTTP gateway serves from. push
uploads a workspace as a design system; list shows the stored systems.`,
	PersistentPreRunE: preRun,
}

var storePushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the workspace tokens, themes and templates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ws, err := buildWorkspace().Load()
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = systemName(ws, buildWorkspace().Root)
		}

		ctx := cmd.Context()
		st, err := store.Open(ctx, storePath())
		if err != nil {
			return err
		}
		defer st.Close()

		sys, err := pushWorkspace(ctx, st, ws, name)
		if err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
		if !quiet() {
			fmt.Fprintf(cmd.OutOrStdout(), "Pushed %s (%s): %d tokens, %d themes, %d templates\n",
				sys.Name, sys.ID, ws.Tokens.Len(), len(ws.Overrides), len(ws.Templates))
		}
		return nil
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored design systems",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := store.Open(ctx, storePath())
		if err != nil {
			return err
		}
		defer st.Close()

		systems, err := st.Systems(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tTOKENS\tTHEMES\tUPDATED")
		for _, sys := range systems {
			tokens, err := st.Tokens(ctx, sys.ID)
			if err != nil {
				return err
			}
			themes, err := st.Themes(ctx, sys.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", sys.ID, sys.Name, tokens.Len(), len(themes), sys.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

func init() {
	storeCmd.PersistentFlags().String("store", ".tokenforge/tokens.db", "SQLite database path")
	storePushCmd.Flags().String("name", "", "System name (default: document name or workspace directory)")
	storeCmd.AddCommand(storePushCmd)
	storeCmd.AddCommand(storeListCmd)
}

func systemName(ws *loader.Workspace, root string) string {
	if ws.Document != nil && ws.Document.Name() != "" {
		return ws.Document.Name()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return filepath.Base(abs)
}

// pushWorkspace creates the named system when needed and replaces its
// tokens. Themes upsert by theme id and templates by name, so pushing twice
// keeps ids stable.
func pushWorkspace(ctx context.Context, st *store.Store, ws *loader.Workspace, name string) (store.System, error) {
	sys, err := st.System(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		description := ""
		if ws.Document != nil {
			description = ws.Document.MetaText("description")
		}
		sys, err = st.CreateSystem(ctx, name, description)
	}
	if err != nil {
		return store.System{}, err
	}

	if err := st.ReplaceTokens(ctx, sys.ID, ws.Tokens); err != nil {
		return store.System{}, err
	}

	for _, o := range ws.Overrides {
		stored := *o
		stored.ID = ""
		stored.SystemID = sys.ID
		if err := st.SaveTheme(ctx, &stored); err != nil {
			return store.System{}, fmt.Errorf("theme %s: %w", o.ThemeID, err)
		}
	}

	existing, err := st.Templates(ctx, sys.ID)
	if err != nil {
		return store.System{}, err
	}
	ids := make(map[string]string, len(existing))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}
	for _, c := range ws.Templates {
		if c.ID == "" {
			c.ID = ids[c.Name]
		}
		if err := st.SaveTemplate(ctx, sys.ID, &c); err != nil {
			return store.System{}, fmt.Errorf("template %s: %w", c.Name, err)
		}
	}
	return sys, nil
}
