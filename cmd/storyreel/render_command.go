package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/projects"
	"storyreel/internal/workflow"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var wait bool
	var now bool

	cmd := &cobra.Command{
		Use:   "render <project-id>",
		Short: "Queue a project for rendering",
		Long: "Marks a project pending so the running daemon picks it up. With --wait the\n" +
			"command blocks until the render reaches a terminal status. With --now the\n" +
			"render runs inside this process instead, without a daemon.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *projects.Store) error {
				projectID := args[0]
				project, err := store.GetByID(cmd.Context(), projectID)
				if err != nil {
					return err
				}
				if project == nil {
					return fmt.Errorf("project %s not found", projectID)
				}
				if err := checkRenderInputs(project); err != nil {
					return err
				}

				if now {
					return renderInProcess(cmd.Context(), cfg, store, ctx, projectID, cmd)
				}

				if project.Status == projects.StatusPending || project.IsRendering() {
					return fmt.Errorf("project %s already has a render in progress", projectID)
				}
				project.Status = projects.StatusPending
				project.ErrorMessage = ""
				project.ProgressStage = "Queued"
				project.ProgressMessage = "Waiting for render daemon"
				if err := store.Update(cmd.Context(), project); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued render for %s (%s)\n", project.Title, project.ID)

				if wait {
					return waitForTerminal(cmd.Context(), store, projectID, cmd)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the render completes or fails")
	cmd.Flags().BoolVar(&now, "now", false, "Render in this process instead of queueing")
	return cmd
}

// checkRenderInputs mirrors the API preconditions so the failure shows up
// before the project is queued.
func checkRenderInputs(project *projects.Project) error {
	if project.AudioFilePath == "" {
		return fmt.Errorf("project has no narration audio; run `storyreel generate captions --audio <file>` first")
	}
	if _, err := os.Stat(project.AudioFilePath); err != nil {
		return fmt.Errorf("narration audio missing on disk: %s", project.AudioFilePath)
	}
	// A project without captions still renders, just without burned-in
	// cues; only a captions payload that fails to decode blocks here.
	if _, err := project.Words(); err != nil {
		return fmt.Errorf("decode captions: %w", err)
	}
	sections, err := project.Sections()
	if err != nil {
		return fmt.Errorf("decode sections: %w", err)
	}
	if !projects.AllSectionsSelected(sections) {
		return fmt.Errorf("every section needs a selected clip; run `storyreel fetch clips` first")
	}
	return nil
}

func renderInProcess(cmdCtx context.Context, cfg *config.Config, store *projects.Store, ctx *commandContext, projectID string, cmd *cobra.Command) error {
	manager := workflow.NewManager(cfg, store, ctx.commandLogger())
	if err := manager.RenderOnce(cmdCtx, projectID); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	project, err := store.GetByID(cmdCtx, projectID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Render complete: %s\n", project.FinalVideoPath)
	return nil
}

func waitForTerminal(cmdCtx context.Context, store *projects.Store, projectID string, cmd *cobra.Command) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	lastStage := ""
	for {
		select {
		case <-cmdCtx.Done():
			return cmdCtx.Err()
		case <-ticker.C:
		}

		project, err := store.GetByID(cmdCtx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("project %s disappeared while waiting", projectID)
		}
		if project.ProgressStage != "" && project.ProgressStage != lastStage {
			lastStage = project.ProgressStage
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", lastStage)
		}
		switch project.Status {
		case projects.StatusCompleted:
			fmt.Fprintf(cmd.OutOrStdout(), "Render complete: %s\n", project.FinalVideoPath)
			return nil
		case projects.StatusFailed:
			return fmt.Errorf("render failed: %s", project.ErrorMessage)
		}
	}
}
