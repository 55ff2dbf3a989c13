package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"facereel/internal/identity"
)

var registerCmd = &cobra.Command{
	Use:   "register [name] [image]",
	Short: "Register a person from a portrait image",
	Long: `Register a person by extracting a face embedding from a portrait image.
The image must contain exactly one face. Registering the same name again
adds another reference embedding, which improves matching over time.`,
	Args: cobra.ExactArgs(2),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	name, imagePath := args[0], args[1]

	rt, err := newRuntime()
	if err != nil {
		return err
	}

	err = identity.RegisterFromImage(context.Background(), rt.registry, rt.vision,
		imagePath, name, rt.cfg.ProfileDir())
	switch {
	case errors.Is(err, identity.ErrNoFace):
		return fmt.Errorf("no face found in %s", imagePath)
	case errors.Is(err, identity.ErrMultipleFaces):
		return fmt.Errorf("%s contains more than one face, use a solo portrait", imagePath)
	case err != nil:
		return err
	}

	rt.store.EnsurePeople([]string{name})
	if err := rt.store.Save(); err != nil {
		return err
	}

	fmt.Printf("Registered %s (%d reference embeddings)\n", name, rt.registry.References(name))
	return nil
}
