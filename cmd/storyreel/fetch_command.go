package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/projects"
	"storyreel/internal/services/pexels"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch stock footage",
	}

	fetchCmd.AddCommand(newFetchClipsCommand(ctx))
	return fetchCmd
}

func newFetchClipsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clips <project-id>",
		Short: "Search and download a stock clip for every section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *projects.Store) error {
				project, err := findProject(cmd, store, args[0])
				if err != nil {
					return err
				}

				sections, err := project.Sections()
				if err != nil {
					return err
				}
				if len(sections) == 0 {
					return fmt.Errorf("project has no sections; run `storyreel generate sections` first")
				}

				client := pexels.NewClient(cfg.Stock)
				out := cmd.OutOrStdout()

				for i := range sections {
					section := &sections[i]
					if section.Selected != nil {
						continue
					}

					videos, err := client.Search(cmd.Context(), section.SearchQuery)
					if err != nil {
						return fmt.Errorf("section %d (%q): %w", i+1, section.SearchQuery, err)
					}
					if len(videos) == 0 {
						return fmt.Errorf("section %d: no widescreen results for %q", i+1, section.SearchQuery)
					}

					section.Candidates = section.Candidates[:0]
					for _, video := range videos {
						section.Candidates = append(section.Candidates, projects.Candidate{
							ID:       video.ID,
							URL:      video.URL,
							Image:    video.Image,
							Width:    video.Width,
							Height:   video.Height,
							Duration: video.Duration,
							FileURL:  pexels.BestFile(video),
						})
					}

					chosen := videos[0]
					fileURL := pexels.BestFile(chosen)
					if fileURL == "" {
						return fmt.Errorf("section %d: video %d has no downloadable file", i+1, chosen.ID)
					}

					target := project.ClipSourcePath(cfg.Paths.StagingDir, chosen.ID)
					fmt.Fprintf(out, "  section %d: downloading clip %d for %q\n", i+1, chosen.ID, section.SearchQuery)
					if err := client.Download(cmd.Context(), fileURL, target); err != nil {
						return fmt.Errorf("section %d: download clip %d: %w", i+1, chosen.ID, err)
					}

					section.Selected = &projects.ClipRef{
						ID:     chosen.ID,
						URL:    chosen.URL,
						Width:  chosen.Width,
						Height: chosen.Height,
					}
				}

				if err := project.SetSections(sections); err != nil {
					return err
				}
				if project.CurrentStep < stepRender {
					project.CurrentStep = stepRender
				}
				if err := store.Update(cmd.Context(), project); err != nil {
					return err
				}

				fmt.Fprintf(out, "All %d sections have clips; render with `storyreel render %s`\n", len(sections), project.ID)
				return nil
			})
		},
	}
}
