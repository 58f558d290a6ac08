// Package export writes discovered creators and outreach outcomes to
// operator-facing destinations: an XLSX workbook and a Notion database.
package export

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

var creatorHeader = []string{
	"Username", "Full Name", "Email", "Niche", "Followers", "Posts", "Bio", "Profile URL",
}

// WriteCreatorsXLSX writes one row per creator to a workbook at path.
func WriteCreatorsXLSX(path string, creators []model.CreatorRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Creators")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range creatorHeader {
		header.AddCell().SetString(h)
	}

	for _, c := range creators {
		row := sheet.AddRow()
		row.AddCell().SetString(c.Username)
		row.AddCell().SetString(c.FullName)
		row.AddCell().SetString(c.PublicEmail)
		row.AddCell().SetString(c.Category)
		row.AddCell().SetString(strconv.Itoa(c.FollowerCount))
		row.AddCell().SetString(strconv.Itoa(c.MediaCount))
		row.AddCell().SetString(c.Biography)
		row.AddCell().SetString(c.ProfileImageURL)
	}

	return eris.Wrapf(f.Save(path), "export: save workbook %s", path)
}

// WriteOutreachXLSX appends an outreach log sheet to a new workbook at path.
func WriteOutreachXLSX(path string, recs []model.OutreachRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Outreach")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Recipient", "Subject", "Status", "Intent", "Phone", "Sent At"} {
		header.AddCell().SetString(h)
	}

	for _, rec := range recs {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.Recipient)
		row.AddCell().SetString(rec.Subject)
		row.AddCell().SetString(string(rec.Status))
		row.AddCell().SetString(rec.Intent)
		row.AddCell().SetString(rec.Phone)
		row.AddCell().SetString(rec.CreatedAt.Format("2006-01-02 15:04"))
	}

	return eris.Wrapf(f.Save(path), "export: save workbook %s", path)
}
