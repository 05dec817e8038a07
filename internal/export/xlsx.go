package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jeanpaul/zenmap/internal/note"
)

const (
	notesSheet = "Notes"
	mapSheet   = "Mind Map"
)

// Workbook writes the library to an xlsx workbook, one note per row, most
// recent first. When m is not nil its nodes go to a second sheet, one row
// per node with its depth.
func Workbook(w io.Writer, snippets []note.Snippet, m *note.MindMapData) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", notesSheet); err != nil {
		return err
	}
	if err := writeRows(f, notesSheet, []any{"ID", "Content", "Tags", "Created", "Updated"}, func(add func(...any) error) error {
		for _, s := range snippets {
			err := add(s.ID, s.Content, strings.Join(s.Tags, ", "),
				s.Created().Format("2006-01-02 15:04"), s.Updated().Format("2006-01-02 15:04"))
			if err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if m != nil {
		if _, err := f.NewSheet(mapSheet); err != nil {
			return err
		}
		err := writeRows(f, mapSheet, []any{"Depth", "ID", "Label", "Description"}, func(add func(...any) error) error {
			var werr error
			m.Root.Walk(func(n *note.MindMapNode, depth int) bool {
				werr = add(depth, n.ID, n.Label, n.Description)
				return werr == nil
			})
			return werr
		})
		if err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []any, body func(add func(...any) error) error) error {
	row := 1
	add := func(values ...any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(sheet, cell, &values)
	}
	if err := add(header...); err != nil {
		return err
	}
	return body(add)
}
