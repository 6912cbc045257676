// Package exportsvc renders data sets as spreadsheets for download.
package exportsvc

import (
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/Treasure123-school/THS/core/user"
)

const (
	UsersSheet  = "Users"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout  = "2006-01-02 15:04:05"
)

var userColumns = []interface{}{"ID", "Name", "Email", "Role", "Created At", "Updated At"}

// UsersWorkbook lays users out one per row beneath a bold header row.
func UsersWorkbook(users []user.User) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", UsersSheet); err != nil {
		return nil, errors.Wrap(err, "naming sheet")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, "creating header style")
	}
	if err = f.SetSheetRow(UsersSheet, "A1", &userColumns); err != nil {
		return nil, errors.Wrap(err, "writing header")
	}
	if err = f.SetRowStyle(UsersSheet, 1, 1, bold); err != nil {
		return nil, errors.Wrap(err, "styling header")
	}

	for i, usr := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			usr.ID,
			usr.Name,
			usr.Email,
			string(usr.Role),
			formatTime(usr.CreatedAt),
			formatTime(usr.UpdatedAt),
		}
		if err = f.SetSheetRow(UsersSheet, cell, &row); err != nil {
			return nil, errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if err = f.SetColWidth(UsersSheet, "A", "A", 38); err != nil {
		return nil, errors.Wrap(err, "sizing columns")
	}
	if err = f.SetColWidth(UsersSheet, "B", "C", 28); err != nil {
		return nil, errors.Wrap(err, "sizing columns")
	}
	if err = f.SetColWidth(UsersSheet, "E", "F", 20); err != nil {
		return nil, errors.Wrap(err, "sizing columns")
	}
	return f, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
