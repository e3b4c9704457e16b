package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"vetclinic/models"
	"vetclinic/services/enrichment"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type petFlags struct {
	name  string
	age   int
	breed string
}

func (f *petFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "pet name")
	cmd.Flags().IntVar(&f.age, "age", 0, "age in years")
	cmd.Flags().StringVar(&f.breed, "breed", "", "breed name or id")
}

func newPetsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pets",
		Short: "Manage your pets",
	}
	cmd.AddCommand(newPetListCommand(e), newPetCreateCommand(e), newPetUpdateCommand(e), newPetDeleteCommand(e))
	return cmd
}

func newPetListCommand(e *env) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			pets, err := app.API.ListPets(cmd.Context(), all)
			if err != nil {
				return err
			}
			breeds, err := app.API.ListBreeds(cmd.Context())
			if err != nil {
				return err
			}
			return printPets(cmd.OutOrStdout(), pets, breeds)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every owner's pets (staff)")
	return cmd
}

// resolveBreed accepts a breed id or a case-insensitive breed name.
func resolveBreed(breeds []models.Breed, v string) (models.Breed, error) {
	if id, err := strconv.Atoi(v); err == nil {
		for _, b := range breeds {
			if b.ID == id {
				return b, nil
			}
		}
	}
	for _, b := range breeds {
		if strings.EqualFold(b.Name, v) {
			return b, nil
		}
	}
	return models.Breed{}, fmt.Errorf("unknown breed %q", v)
}

// recommend asks for the care recommendation of one pet and waits for it, bounded by the API timeout.
// Failures produce the placeholder text.
func recommend(ctx context.Context, app *App, key enrichment.RecommendationKey) string {
	rec, err := app.Recommender(ctx)
	if err != nil {
		app.Logger.Warn("recommender unavailable", zap.Error(err))
		return enrichment.NoRecommendation
	}
	tracker := enrichment.NewRecommendationTracker(ctx, rec, app.Logger)
	defer tracker.Close()

	const group = "pet"
	tracker.Request(group, key)
	waitCtx, cancel := context.WithTimeout(ctx, app.Cfg.APITimeout)
	defer cancel()
	r, ok, err := tracker.Await(waitCtx, group)
	if err != nil || !ok {
		return enrichment.NoRecommendation
	}
	return r.Text
}

func newPetCreateCommand(e *env) *cobra.Command {
	var flags petFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a pet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(flags.name) == "" || flags.breed == "" {
				return fmt.Errorf("--name and --breed are required")
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			breeds, err := app.API.ListBreeds(ctx)
			if err != nil {
				return err
			}
			breed, err := resolveBreed(breeds, flags.breed)
			if err != nil {
				return err
			}
			in := models.PetInput{Name: flags.name, Age: flags.age, BreedID: breed.ID}
			in.Recommendations = recommend(ctx, app, enrichment.RecommendationKey{Age: in.Age, BreedID: breed.ID, BreedName: breed.Name})

			pet, err := app.API.CreatePet(ctx, in)
			if err != nil {
				return err
			}
			return printPets(cmd.OutOrStdout(), []models.Pet{pet}, breeds)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPetUpdateCommand(e *env) *cobra.Command {
	var flags petFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a pet's name, age or breed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pets, err := app.API.ListPets(ctx, false)
			if err != nil {
				return err
			}
			breeds, err := app.API.ListBreeds(ctx)
			if err != nil {
				return err
			}
			var current *models.Pet
			for i := range pets {
				if pets[i].ID == id {
					current = &pets[i]
				}
			}
			if current == nil {
				return fmt.Errorf("pet %d not found", id)
			}

			in := models.PetInput{Name: current.Name, Age: current.Age, BreedID: current.BreedID, Recommendations: current.Recommendations}
			if cmd.Flags().Changed("name") {
				in.Name = flags.name
			}
			if cmd.Flags().Changed("age") {
				in.Age = flags.age
			}
			if cmd.Flags().Changed("breed") {
				b, err := resolveBreed(breeds, flags.breed)
				if err != nil {
					return err
				}
				in.BreedID = b.ID
			}
			if in.Age != current.Age || in.BreedID != current.BreedID {
				in.Recommendations = recommend(ctx, app, enrichment.RecommendationKey{
					Age: in.Age, BreedID: in.BreedID, BreedName: models.BreedName(breeds, in.BreedID),
				})
			}

			pet, err := app.API.UpdatePet(ctx, id, in)
			if err != nil {
				return err
			}
			return printPets(cmd.OutOrStdout(), []models.Pet{pet}, breeds)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPetDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			if err := app.API.DeletePet(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pet %d deleted.\n", id)
			return nil
		},
	}
}
