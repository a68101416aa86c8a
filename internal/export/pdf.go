package export

import (
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

func generatePDF(entity string, columns []Column, rows []Row) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, entity, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	colSizes := spreadColumns(len(columns))

	headerCols := make([]core.Col, 0, len(columns))
	for i, column := range columns {
		headerCols = append(headerCols, text.NewCol(colSizes[i], column.Header, props.Text{
			Style: fontstyle.Bold,
			Size:  9,
		}))
	}
	m.AddRow(8, headerCols...)

	for _, row := range rows {
		dataCols := make([]core.Col, 0, len(columns))
		for i, column := range columns {
			dataCols = append(dataCols, text.NewCol(colSizes[i], formatCell(row[column.Key]), props.Text{Size: 8}))
		}
		m.AddRow(7, dataCols...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// spreadColumns divides maroto's 12-unit grid across n columns,
// handing the remainder to the leftmost ones.
func spreadColumns(n int) []int {
	if n <= 0 {
		return nil
	}
	if n > 12 {
		n = 12
	}
	sizes := make([]int, n)
	base := 12 / n
	extra := 12 % n
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return sizes
}
