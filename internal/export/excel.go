package export

import (
	"fmt"
	"io"
	"time"

	"github.com/sbms-academy/server/internal/domain/registrations"
	"github.com/xuri/excelize/v2"
)

const registrationsSheet = "Registrations"

var registrationColumns = []string{
	"Reference",
	"Name",
	"Phone",
	"Instagram",
	"Organisation",
	"Event",
	"Session",
	"Payment Status",
	"Registered At",
}

// WriteRegistrations writes one sheet with a header row and one row per
// registration, in the order given.
func WriteRegistrations(w io.Writer, regs []registrations.Registration) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", registrationsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, title := range registrationColumns {
		if err := setCell(f, col+1, 1, title); err != nil {
			return err
		}
	}

	for i, reg := range regs {
		row := i + 2
		for col, value := range registrationRow(reg) {
			if err := setCell(f, col+1, row, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func registrationRow(reg registrations.Registration) []string {
	var name, phone, insta, org, event, session string
	if reg.User != nil {
		name = reg.User.FullName
		phone = reg.User.Number
		insta = reg.User.InstaID
		org = reg.User.Organisation
	}
	if reg.Event != nil {
		event = reg.Event.Name
	}
	if reg.Session != nil {
		session = reg.Session.Name
	}
	return []string{
		reg.Reference,
		name,
		phone,
		insta,
		org,
		event,
		session,
		reg.PaymentStatus,
		reg.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(registrationsSheet, cell, value); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	return nil
}
