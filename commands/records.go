package commands

import (
	"fmt"

	"vetclinic/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func ownedAppointmentIDs(v appointmentView) map[int]bool {
	ids := make(map[int]bool, len(v.appts))
	for _, a := range v.appts {
		ids[a.ID] = true
	}
	return ids
}

func newVaccinationsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vaccinations",
		Short: "Your pets' vaccination records",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List vaccinations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			v, err := loadAppointments(ctx, app)
			if err != nil {
				return err
			}
			all, err := app.API.ListVaccinations(ctx)
			if err != nil {
				return err
			}
			vaccines, err := app.API.ListVaccines(ctx)
			if err != nil {
				return err
			}
			names := make(map[int]string, len(vaccines))
			for _, vc := range vaccines {
				names[vc.ID] = vc.Name
			}
			owned := ownedAppointmentIDs(v)

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tPET\tVACCINE\tAPPOINTMENT")
			for _, vn := range all {
				if !owned[vn.AppointmentID] {
					continue
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", vn.ID, models.PetName(v.pets, vn.PetID), orDash(names[vn.VaccineID]), vn.AppointmentID)
			}
			return tw.Flush()
		},
	}
	del := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete vaccination records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			for _, a := range args {
				id, err := parseID(a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := app.API.DeleteVaccination(cmd.Context(), id); err != nil {
					app.Logger.Warn("failed to delete vaccination", zap.Int("vaccination_id", id), zap.Error(err))
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Vaccination %d deleted.\n", id)
			}
			return nil
		},
	}
	cmd.AddCommand(list, del)
	return cmd
}

func newAnalysesCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyses",
		Short: "Your pets' analysis records",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			v, err := loadAppointments(ctx, app)
			if err != nil {
				return err
			}
			all, err := app.API.ListAnalyses(ctx)
			if err != nil {
				return err
			}
			types, err := app.API.ListAnalysisTypes(ctx)
			if err != nil {
				return err
			}
			names := make(map[int]string, len(types))
			for _, t := range types {
				names[t.ID] = t.Name
			}
			petOf := make(map[int]int, len(v.appts))
			for _, a := range v.appts {
				petOf[a.ID] = a.PetID
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tPET\tANALYSIS\tAPPOINTMENT")
			for _, an := range all {
				petID, ok := petOf[an.AppointmentID]
				if !ok {
					continue
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", an.ID, models.PetName(v.pets, petID), orDash(names[an.AnalysisTypeID]), an.AppointmentID)
			}
			return tw.Flush()
		},
	})
	return cmd
}
