package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	lang "storyreel/internal/language"
	"storyreel/internal/projects"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage video projects",
	}

	projectCmd.AddCommand(newProjectNewCommand(ctx))
	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))
	projectCmd.AddCommand(newProjectDeleteCommand(ctx))

	return projectCmd
}

func newProjectNewCommand(ctx *commandContext) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "new <idea text>",
		Short: "Create a project from an idea",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *projects.Store) error {
				idea := strings.TrimSpace(strings.Join(args, " "))
				if idea == "" {
					return fmt.Errorf("idea text is required")
				}

				code, ok := lang.Normalize(language)
				if !ok {
					return fmt.Errorf("unsupported language %q (supported: %s)", language, strings.Join(lang.Supported(), ", "))
				}

				project, err := store.Create(cmd.Context(), projects.TitleFromIdea(idea), code)
				if err != nil {
					return err
				}
				project.IdeaText = idea
				project.CurrentStep = stepScript
				if err := store.Update(cmd.Context(), project); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", project.Title, project.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "en", "Narration language code")
	return cmd
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *projects.Store) error {
				var filter []projects.Status
				if statusFlag != "" {
					status, ok := projects.ParseStatus(statusFlag)
					if !ok {
						return fmt.Errorf("unknown status %q", statusFlag)
					}
					filter = append(filter, status)
				}

				list, err := store.List(cmd.Context(), filter...)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No projects")
					return nil
				}

				rows := make([][]string, 0, len(list))
				for _, project := range list {
					rows = append(rows, []string{
						project.ID[:8],
						project.Title,
						string(project.Status),
						fmt.Sprintf("%d/7", project.CurrentStep),
						project.UpdatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(out, []string{"ID", "Title", "Status", "Step", "Updated"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&statusFlag, "status", "s", "", "Filter by status")
	return cmd
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *projects.Store) error {
				project, err := findProject(cmd, store, args[0])
				if err != nil {
					return err
				}

				words, _ := project.Words()
				sections, _ := project.Sections()
				selected := 0
				for _, section := range sections {
					if section.Selected != nil {
						selected++
					}
				}

				rows := [][]string{
					{"ID", project.ID},
					{"Title", project.Title},
					{"Status", string(project.Status)},
					{"Step", fmt.Sprintf("%d/7", project.CurrentStep)},
					{"Language", lang.DisplayName(project.LanguageCode)},
					{"Idea", truncate(project.IdeaText, 70)},
					{"Script", fmt.Sprintf("%d chars", len(project.ScriptText))},
					{"Audio", yesNo(project.AudioFilePath != "")},
					{"Captions", fmt.Sprintf("%d words", len(words))},
					{"Sections", fmt.Sprintf("%d (%d selected)", len(sections), selected)},
					{"Created", project.CreatedAt.Local().Format(time.RFC1123)},
					{"Updated", project.UpdatedAt.Local().Format(time.RFC1123)},
				}
				if project.FinalVideoPath != "" {
					rows = append(rows, []string{"Output", project.FinalVideoPath})
				}
				if project.ErrorMessage != "" {
					rows = append(rows, []string{"Error", project.ErrorMessage})
				}
				if project.ProgressStage != "" {
					rows = append(rows, []string{"Progress", project.ProgressStage})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(out, []string{"Field", "Value"}, rows))
				return nil
			})
		},
	}
}

func newProjectDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *projects.Store) error {
				project, err := findProject(cmd, store, args[0])
				if err != nil {
					return err
				}
				if project.IsRendering() {
					return fmt.Errorf("project %s has a render in progress", project.ID)
				}
				removed, err := store.Delete(cmd.Context(), project.ID)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("project %s not found", project.ID)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", project.ID)
				return nil
			})
		},
	}
}

// findProject resolves a project by full ID or unambiguous ID prefix.
func findProject(cmd *cobra.Command, store *projects.Store, id string) (*projects.Project, error) {
	project, err := store.GetByID(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if project != nil {
		return project, nil
	}

	list, err := store.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	var match *projects.Project
	for _, candidate := range list {
		if strings.HasPrefix(candidate.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("project id prefix %q is ambiguous", id)
			}
			match = candidate
		}
	}
	if match == nil {
		return nil, fmt.Errorf("project %s not found", id)
	}
	return match, nil
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-1]) + "…"
}
