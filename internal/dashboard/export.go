package dashboard

import (
	"encoding/csv"
	"io"
)

var csvHeader = []string{"name", "email", "phoneNumber", "grade", "year"}

// WriteCSV writes users as CSV with a header row.
func WriteCSV(w io.Writer, users []User) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, u := range users {
		if err := cw.Write([]string{u.Name, u.Email, u.PhoneNumber, u.Grade, u.Year}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
