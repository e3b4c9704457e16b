package commands

import (
	"fmt"
	"strconv"

	"vetclinic/models"

	"github.com/spf13/cobra"
)

type entryFlags struct {
	name        string
	description string
	vaccineType string
	periodDays  int
	address     string
	phone       string
	usage       string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "entry name")
	cmd.Flags().StringVar(&f.description, "description", "", "description (vaccines, analysis-types)")
	cmd.Flags().StringVar(&f.vaccineType, "type", "", "vaccine type (vaccines)")
	cmd.Flags().IntVar(&f.periodDays, "period", 0, "revaccination period in days (vaccines)")
	cmd.Flags().StringVar(&f.address, "address", "", "address (clinics)")
	cmd.Flags().StringVar(&f.phone, "phone", "", "phone (clinics)")
	cmd.Flags().StringVar(&f.usage, "usage", "", "usage instructions (medicines)")
}

// entry builds the request body for kind from the flags.
func (f *entryFlags) entry(kind models.CatalogKind) (models.CatalogEntry, error) {
	if f.name == "" {
		return nil, fmt.Errorf("--name is required")
	}
	switch kind {
	case models.KindVaccine:
		return models.VaccineEntry{Name: f.name, Description: f.description, Type: f.vaccineType, PeriodDays: f.periodDays}, nil
	case models.KindBreed:
		return models.BreedEntry{Name: f.name}, nil
	case models.KindClinic:
		return models.ClinicEntry{Name: f.name, Address: f.address, Phone: f.phone}, nil
	case models.KindAnalysisType:
		return models.AnalysisTypeEntry{Name: f.name, Description: f.description}, nil
	case models.KindMedicine:
		return models.MedicineEntry{Name: f.name, Usage: f.usage}, nil
	}
	return nil, fmt.Errorf("unsupported catalog kind %v", kind)
}

func newCatalogCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage reference data: vaccines, breeds, clinics, analysis types, medicines",
	}
	cmd.AddCommand(newCatalogListCommand(e), newCatalogAddCommand(e), newCatalogUpdateCommand(e), newCatalogDeleteCommand(e))
	return cmd
}

func catalogKindArg(args []string) (models.CatalogKind, error) {
	return models.ParseCatalogKind(args[0])
}

func newCatalogListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind>",
		Short: "List a catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalogKindArg(args)
			if err != nil {
				return err
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			items, err := app.API.ListEntries(cmd.Context(), kind)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME")
			for _, it := range items {
				fmt.Fprintf(tw, "%d\t%s\n", it.ID, it.Name)
			}
			return tw.Flush()
		},
	}
}

func newCatalogAddCommand(e *env) *cobra.Command {
	var flags entryFlags
	cmd := &cobra.Command{
		Use:   "add <kind>",
		Short: "Add a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalogKindArg(args)
			if err != nil {
				return err
			}
			entry, err := flags.entry(kind)
			if err != nil {
				return err
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			item, err := app.API.CreateEntry(cmd.Context(), entry)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %d (%s).\n", kind, item.ID, item.Name)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newCatalogUpdateCommand(e *env) *cobra.Command {
	var flags entryFlags
	cmd := &cobra.Command{
		Use:   "update <kind> <id|name>",
		Short: "Replace a catalog entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalogKindArg(args)
			if err != nil {
				return err
			}
			entry, err := flags.entry(kind)
			if err != nil {
				return err
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			id, err := strconv.Atoi(args[1])
			if err != nil {
				if id, err = app.API.FindEntryID(cmd.Context(), kind, args[1]); err != nil {
					return err
				}
			}
			item, err := app.API.UpdateEntry(cmd.Context(), id, entry)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %d (%s).\n", kind, item.ID, item.Name)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newCatalogDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <name>",
		Short: "Delete a catalog entry by name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalogKindArg(args)
			if err != nil {
				return err
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			id, err := app.API.DeleteEntryByName(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d (%s).\n", kind, id, args[1])
			return nil
		},
	}
}
