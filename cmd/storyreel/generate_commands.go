package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/projects"
	"storyreel/internal/services/assemblyai"
	"storyreel/internal/services/openrouter"
)

// Wizard steps mirror the project workflow: idea, script, narration audio,
// captions, sections, clips, render.
const (
	stepIdea = iota + 1
	stepScript
	stepAudio
	stepCaptions
	stepSections
	stepClips
	stepRender
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate content with the configured AI services",
	}

	generateCmd.AddCommand(newGenerateIdeasCommand(ctx))
	generateCmd.AddCommand(newGenerateScriptCommand(ctx))
	generateCmd.AddCommand(newGenerateCaptionsCommand(ctx))
	generateCmd.AddCommand(newGenerateSectionsCommand(ctx))

	return generateCmd
}

func newGenerateIdeasCommand(ctx *commandContext) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "ideas",
		Short: "Generate video ideas",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *projects.Store) error {
				existing, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				previous := make([]string, 0, len(existing))
				for _, project := range existing {
					if project.IdeaText != "" {
						previous = append(previous, project.IdeaText)
					}
				}

				client := openrouter.NewClient(cfg.LLM)
				ideas, err := client.GenerateIdeas(cmd.Context(), count, previous)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for i, idea := range ideas {
					fmt.Fprintf(out, "%2d. %s\n", i+1, idea)
				}
				fmt.Fprintln(out, "\nCreate a project with `storyreel project new <idea text>`")
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 5, "Number of ideas to generate")
	return cmd
}

func newGenerateScriptCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "script <project-id>",
		Short: "Generate the narration script for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *projects.Store) error {
				project, err := findProject(cmd, store, args[0])
				if err != nil {
					return err
				}
				if strings.TrimSpace(project.IdeaText) == "" {
					return fmt.Errorf("project has no idea text")
				}

				client := openrouter.NewClient(cfg.LLM)
				script, err := client.GenerateScript(cmd.Context(), project.IdeaText)
				if err != nil {
					return err
				}

				project.ScriptText = script
				if project.CurrentStep < stepAudio {
					project.CurrentStep = stepAudio
				}
				if err := store.Update(cmd.Context(), project); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Generated script (%d chars) for %s\n", len(script), project.Title)
				return nil
			})
		},
	}
}

func newGenerateCaptionsCommand(ctx *commandContext) *cobra.Command {
	var audioPath string

	cmd := &cobra.Command{
		Use:   "captions <project-id>",
		Short: "Transcribe narration audio into word-level captions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *projects.Store) error {
				project, err := findProject(cmd, store, args[0])
				if err != nil {
					return err
				}

				if audioPath != "" {
					expanded, err := config.ExpandPath(audioPath)
					if err != nil {
						return fmt.Errorf("resolve audio path: %w", err)
					}
					project.AudioFilePath = expanded
				}
				if project.AudioFilePath == "" {
					return fmt.Errorf("project has no narration audio; pass --audio <file>")
				}

				client := assemblyai.NewClient(cfg.Transcription)
				words, err := client.Transcribe(cmd.Context(), project.AudioFilePath)
				if err != nil {
					return err
				}
				if err := project.SetWords(words); err != nil {
					return err
				}
				if project.CurrentStep < stepSections {
					project.CurrentStep = stepSections
				}
				if err := store.Update(cmd.Context(), project); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Transcribed %d words for %s\n", len(words), project.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "Narration audio file to transcribe")
	return cmd
}

func newGenerateSectionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sections <project-id>",
		Short: "Plan visual sections from the caption timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *projects.Store) error {
				project, err := findProject(cmd, store, args[0])
				if err != nil {
					return err
				}

				words, err := project.Words()
				if err != nil {
					return err
				}
				if len(words) == 0 {
					return fmt.Errorf("project has no captions; run `storyreel generate captions` first")
				}

				timings := make([]openrouter.WordTiming, 0, len(words))
				for _, word := range words {
					timings = append(timings, openrouter.WordTiming{Text: word.Text, Start: word.Start, End: word.End})
				}

				client := openrouter.NewClient(cfg.LLM)
				plans, err := client.GenerateSections(cmd.Context(), timings)
				if err != nil {
					return err
				}

				sections := make([]projects.Section, 0, len(plans))
				for _, plan := range plans {
					sections = append(sections, projects.Section{
						Text:        plan.SectionText,
						SearchQuery: plan.SearchQuery,
						StartTime:   plan.StartTime,
						EndTime:     plan.EndTime,
						Duration:    plan.EndTime - plan.StartTime,
					})
				}
				if err := project.SetSections(sections); err != nil {
					return err
				}
				if project.CurrentStep < stepClips {
					project.CurrentStep = stepClips
				}
				if err := store.Update(cmd.Context(), project); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Planned %d sections for %s\n", len(sections), project.Title)
				return nil
			})
		},
	}
}
