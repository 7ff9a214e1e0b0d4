package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/signstudio/signstudio/pkg/editor"
	"github.com/signstudio/signstudio/pkg/interact"
	"github.com/signstudio/signstudio/pkg/preview"
	"github.com/signstudio/signstudio/pkg/session"
	"github.com/signstudio/signstudio/pkg/template"
	"github.com/signstudio/signstudio/pkg/viewport"
)

// editCommand creates the edit command for the interactive canvas editor.
func (c *CLI) editCommand() *cobra.Command {
	var (
		configPath string
		output     string
		resume     bool
		noSnap     bool
	)

	cmd := &cobra.Command{
		Use:   "edit [payload.json]",
		Short: "Open a template payload in the canvas editor",
		Long: `Open a template payload in the canvas editor.

The editor shows the template's blocks on a scaled canvas. Drag blocks with
the mouse to move them, drag a selected block's right or bottom edge to
resize, and use the keyboard for everything else (press ? inside the editor
for the key map).

Edits autosave to a recovery session at the configured interval. Pressing s
writes the save payload to the output file; quitting with unsaved changes
keeps the recovery session around for --resume.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], configPath, output, resume, noSnap)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default ./signstudio.toml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "save payload file (default <input>.save.json)")
	cmd.Flags().BoolVar(&resume, "resume", false, "restore the autosaved session for this template")
	cmd.Flags().BoolVar(&noSnap, "no-snap", false, "disable snap guides while dragging")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, path, configPath, output string, resume, noSnap bool) error {
	cfg, err := c.loadConfig(configPath)
	if err != nil {
		return err
	}
	if output == "" {
		output = path + ".save.json"
	}

	payload, err := template.ReadPayloadFile(path)
	if err != nil {
		return err
	}

	store := editor.New(c.Logger, cfg.Editor.HistoryLimit,
		editor.WithScaleBounds(cfg.Editor.MinScale, cfg.Editor.MaxScale))
	store.Load(payload)

	sessions, err := sessionStore(ctx, cfg.Session)
	if err != nil {
		return fmt.Errorf("initialize session store: %w", err)
	}
	defer sessions.Close()
	autosave := session.NewAutosave(sessions)

	if resume {
		if err := restoreSession(ctx, store, autosave, payload); err != nil {
			printWarning("Could not restore session: %v", err)
		}
	}

	dragOpts := []interact.Option{interact.WithMinSize(cfg.Editor.MinBlockSize)}
	if cfg.Editor.SnapEnabled && !noSnap {
		dragOpts = append(dragOpts, interact.WithSnap(cfg.Editor.SnapThreshold))
	}

	m := newCanvasModel(canvasDeps{
		store:    store,
		drag:     interact.New(store, c.Logger, dragOpts...),
		view:     viewport.New(store, viewport.WithPadding(cfg.Editor.FitPaddingPixels)),
		builder:  preview.NewBuilder(cfg.Renderer.BaseURL),
		autosave: autosave,
		logger:   c.Logger,
		savePath: output,
		interval: cfg.Editor.AutosaveSeconds,
	})

	prog := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseAllMotion())

	// Preview fetches resolve on background goroutines; route completions
	// back into the update loop.
	loader := preview.NewPreloader(preview.NewHTTPFetcher(), c.Logger, func(blockID string) {
		prog.Send(previewReadyMsg{blockID: blockID})
	})
	m.loader = loader

	final, err := prog.Run()
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	fm, ok := final.(*canvasModel)
	if !ok {
		return nil
	}
	if fm.savedOnce {
		printSuccess("Template saved")
		printFile(output)
	}
	if store.IsDirty() {
		printWarning("Unsaved changes kept in the recovery session")
		printNextStep("Resume with", fmt.Sprintf("signstudio edit --resume %s", path))
	}
	return nil
}

// restoreSession overwrites the loaded template with the autosaved snapshot,
// keeping the original payload's zone and media context.
func restoreSession(ctx context.Context, store *editor.Store, autosave *session.Autosave, payload template.LoadPayload) error {
	sess, err := autosave.Restore(ctx, payload.Template.ID)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("no session for template %q", payload.Template.ID)
	}
	snap, err := template.UnmarshalSave(sess.Snapshot)
	if err != nil {
		return err
	}
	payload.Template.Name = snap.Name
	payload.Template.BackgroundID = snap.BackgroundID
	payload.Template.Blocks = snap.Blocks
	store.Load(payload)
	store.MarkDirty()
	return nil
}
