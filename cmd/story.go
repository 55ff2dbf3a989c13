package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"facereel/internal/store"
	"facereel/internal/story"
)

var storyCmd = &cobra.Command{
	Use:   "story [person]",
	Short: "Build a highlight reel playlist for a person",
	Long: `Build a roughly 60 second, 20 clip highlight playlist for a registered
person from their scanned appearances. The playlist follows a four act
narrative arc and is written as JSON for the external renderer.`,
	Args: cobra.ExactArgs(1),
	RunE: runStory,
}

func init() {
	rootCmd.AddCommand(storyCmd)

	storyCmd.Flags().String("period", "All Time", `Restrict to a month ("2025-04") or a year ("2025")`)
	storyCmd.Flags().String("focus", "Balance", "Stylistic focus: Balance, Smile, Active or Emotional")
	storyCmd.Flags().Int64("seed", 0, "RNG seed for reproducible selection (0 = random)")
	storyCmd.Flags().String("output", "story_playlist.json", "Playlist output file")
}

func runStory(cmd *cobra.Command, args []string) error {
	person := args[0]

	focus, err := story.ParseFocus(mustGetString(cmd, "focus"))
	if err != nil {
		return err
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}

	engine := story.NewEngine(rt.store, rt.cfg.Tuning, mustGetInt64(cmd, "seed"), rt.logger)
	playlist, err := engine.Generate(person, mustGetString(cmd, "period"), focus)
	if err != nil {
		return err
	}

	output := mustGetString(cmd, "output")
	if err := store.WriteJSONAtomic(output, playlist); err != nil {
		return err
	}

	fmt.Printf("Playlist for %s: %d clips (focus %s)\n", person, len(playlist.Clips), focus)
	fmt.Printf("Suggested BGM: %s\n\n", playlist.SuggestedBGM)
	for _, clip := range playlist.Clips {
		marker := " "
		if clip.Overlay != "" {
			marker = "*"
		}
		fmt.Printf("%s [%-11s] %s @ %.1fs  (%s)\n",
			marker, clip.Phase, filepath.Base(clip.VideoPath), clip.Event.Time, clip.Event.Timestamp)
	}
	fmt.Printf("\nPlaylist saved to %s\n", output)
	return nil
}
