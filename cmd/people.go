package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"facereel/internal/identity"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List registered people",
	RunE:  runPeopleList,
}

var peopleRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a person and all their recorded appearances",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeopleRemove,
}

func init() {
	peopleCmd.AddCommand(peopleRemoveCmd)
	rootCmd.AddCommand(peopleCmd)
}

func runPeopleList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	names := rt.registry.Names()
	if len(names) == 0 {
		fmt.Println("No people registered yet. Use 'facereel register' to add one.")
		return nil
	}

	for _, name := range names {
		fmt.Printf("%-24s %3d references  %5d events\n",
			name, rt.registry.References(name), rt.store.EventCount(name))
	}
	return nil
}

func runPeopleRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	rt, err := newRuntime()
	if err != nil {
		return err
	}

	if !rt.registry.Delete(name) {
		return fmt.Errorf("person %q is not registered", name)
	}
	if err := rt.registry.Save(); err != nil {
		return err
	}

	rt.store.PurgePerson(name)
	if err := rt.store.Save(); err != nil {
		return err
	}
	identity.DeleteProfileIcon(rt.cfg.ProfileDir(), name)

	fmt.Printf("Removed %s and all their appearance events\n", name)
	return nil
}
