package commands

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"vetclinic/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func clinicName(clinics []models.Clinic, id int) string {
	for _, c := range clinics {
		if c.ID == id {
			return c.Name
		}
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printAppointments(w io.Writer, appts []models.Appointment, pets []models.Pet, clinics []models.Clinic) error {
	if len(appts) == 0 {
		_, err := fmt.Fprintln(w, "No appointments.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPET\tDATE\tCLINIC\tPROCEDURE\tSTATUS\tCONCLUSION")
	for _, a := range appts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, models.PetName(pets, a.PetID), a.ScheduledAt, clinicName(clinics, a.ClinicID),
			a.ProcedureLabel(), a.Status, orDash(a.Conclusion))
	}
	return tw.Flush()
}

func printClinics(w io.Writer, clinics []models.Clinic) error {
	if len(clinics) == 0 {
		_, err := fmt.Fprintln(w, "No clinics found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tADDRESS\tPHONE\tLOCATION")
	for _, c := range clinics {
		loc := "-"
		if c.Coords != nil {
			loc = fmt.Sprintf("%.5f,%.5f", c.Coords.Lat, c.Coords.Lng)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Address, c.Phone, loc)
	}
	return tw.Flush()
}

func printPets(w io.Writer, pets []models.Pet, breeds []models.Breed) error {
	if len(pets) == 0 {
		_, err := fmt.Fprintln(w, "No pets.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tAGE\tBREED\tRECOMMENDATIONS")
	for _, p := range pets {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", p.ID, p.Name, p.Age, models.BreedName(breeds, p.BreedID), orDash(p.Recommendations))
	}
	return tw.Flush()
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
