package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawminder/pawminder/internal/model"
	"github.com/pawminder/pawminder/internal/output"
	"github.com/pawminder/pawminder/internal/runtime"
	"github.com/pawminder/pawminder/internal/storage"
	"github.com/pawminder/pawminder/internal/validate"
)

// dogCmd represents the dog command.
var dogCmd = &cobra.Command{
	Use:     "dog [command]",
	Aliases: []string{"dogs"},
	Short:   "Manage dogs",
	Long: `Add, list, and remove the dogs reminders attach to.

Examples:
  pawminder dog add Biscuit
  pawminder dog list
  pawminder dog remove Biscuit`,
	RunE: runDogList,
}

// dogAddCmd adds a new dog.
var dogAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a new dog",
	Args:  cobra.ExactArgs(1),
	RunE:  runDogAdd,
}

// dogListCmd lists all dogs.
var dogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all dogs",
	RunE:  runDogList,
}

// dogRemoveCmd removes a dog.
var dogRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a dog and its reminders",
	Args:    cobra.ExactArgs(1),
	RunE:    runDogRemove,
}

func init() {
	dogRemoveCmd.ValidArgsFunction = completeDogArgs

	dogCmd.AddCommand(dogAddCmd)
	dogCmd.AddCommand(dogListCmd)
	dogCmd.AddCommand(dogRemoveCmd)
	rootCmd.AddCommand(dogCmd)
}

func runDogAdd(cmd *cobra.Command, args []string) error {
	name := validate.SanitizeDogName(args[0])
	if name == "" {
		return fmt.Errorf("dog name cannot be empty")
	}

	if existing, err := ctx.DogRepo.GetByName(name); err == nil && existing != nil {
		return fmt.Errorf("dog %q already exists", name)
	}

	family, err := ctx.FamilyRepo.Get()
	if err != nil {
		return err
	}

	dog := model.NewDog(name, family.Key)
	if err := ctx.DogRepo.Create(dog); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewDogOutput(dog))
	}

	cli := ctx.CLIFormatter()
	cli.Success("Added dog: " + cli.DogName(name))
	cli.Printf("  Set up a reminder with: pawminder reminder add %s walk every 4h\n", name)
	return nil
}

func runDogList(cmd *cobra.Command, args []string) error {
	dogs, err := ctx.DogRepo.ListActive()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		outputs := make([]*output.DogOutput, len(dogs))
		for i, d := range dogs {
			outputs[i] = output.NewDogOutput(d)
		}
		return ctx.JSONFormatter().PrintDogs(outputs)
	}

	cli := ctx.CLIFormatter()

	if len(dogs) == 0 {
		cli.Muted("No dogs yet.")
		cli.Muted("Use 'pawminder dog add <name>' to add one.")
		return nil
	}

	cli.Title(fmt.Sprintf("Dogs (%d)", len(dogs)))
	cli.Println("")

	for _, d := range dogs {
		reminders, err := ctx.ReminderRepo.ListByDog(d.Key)
		if err != nil {
			return err
		}
		cli.Printf("• %s  %d reminders\n", cli.DogName(d.Name), len(reminders))
	}

	return nil
}

// runDogRemove soft-deletes a dog along with its reminders. The daemon
// drops alarm jobs for the deleted reminders on its next resync.
func runDogRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	now := time.Now()

	dog, err := ctx.DogRepo.GetByName(name)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return runtime.ErrDogNotFound
		}
		return err
	}

	reminders, err := ctx.ReminderRepo.ListByDog(dog.Key)
	if err != nil {
		return err
	}
	for _, r := range reminders {
		if err := ctx.ReminderRepo.SoftDelete(r.Key, now); err != nil {
			return err
		}
	}

	if err := ctx.DogRepo.SoftDelete(dog.Key, now); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":            "removed",
			"dog":               name,
			"reminders_removed": len(reminders),
		})
	}

	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Removed %s and %d reminders", cli.DogName(name), len(reminders)))
	return nil
}
