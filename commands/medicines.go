package commands

import (
	"fmt"

	"vetclinic/models"

	"github.com/spf13/cobra"
)

func newMedicinesCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "medicines",
		Short: "List and add medicines",
	}
	cmd.AddCommand(newMedicineListCommand(e), newMedicineAddCommand(e))
	return cmd
}

func newMedicineListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List medicines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			meds, err := app.API.ListMedicines(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tUSAGE")
			for _, m := range meds {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", m.ID, m.Name, orDash(m.Usage))
			}
			return tw.Flush()
		},
	}
}

func newMedicineAddCommand(e *env) *cobra.Command {
	var entry models.MedicineEntry
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a medicine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if entry.Name == "" {
				return fmt.Errorf("--name is required")
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			m, err := app.API.CreateMedicine(cmd.Context(), entry)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added medicine %d (%s).\n", m.ID, m.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&entry.Name, "name", "", "medicine name")
	cmd.Flags().StringVar(&entry.Usage, "usage", "", "usage instructions")
	return cmd
}
