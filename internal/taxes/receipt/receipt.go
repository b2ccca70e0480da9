// Package receipt renders remittance receipts as PDF documents.
package receipt

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/civitas/internal/taxes/domain"
	"github.com/smallbiznis/civitas/pkg/money"
)

type Data struct {
	CountryName string
	CompanyName string
	Remittance  domain.Remittance
}

// Render returns the PDF bytes of one remittance receipt.
func Render(data Data) ([]byte, error) {
	r := data.Remittance
	if r.ID == 0 {
		return nil, fmt.Errorf("receipt: remittance is empty")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, "Country tax receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, data.CountryName, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(25,
		col.New(6).Add(
			text.New("Reference: "+r.Reference, props.Text{Top: 0}),
			text.New("Paid at: "+r.PaidAt.UTC().Format(time.RFC1123), props.Text{Top: 5}),
			text.New("Paid by: "+payer(r), props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Company", props.Text{Style: fontstyle.Bold}),
			text.New(data.CompanyName, props.Text{Top: 5}),
			text.New("ID "+r.CompanyID.String(), props.Text{Top: 10, Size: 8}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, money.Format(r.TotalAmount)+" remitted", props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	m.AddRow(10,
		text.NewCol(4, "Kind", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(8, "Record", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, id := range r.SaleIDs {
		m.AddRow(7,
			text.NewCol(4, "Sale", props.Text{Size: 9}),
			text.NewCol(8, id, props.Text{Size: 9, Align: align.Right}),
		)
	}
	for _, id := range r.ContractIDs {
		m.AddRow(7,
			text.NewCol(4, "Contract", props.Text{Size: 9}),
			text.NewCol(8, id, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, money.Format(r.TotalAmount), props.Text{Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func payer(r domain.Remittance) string {
	if r.PaidByName != "" {
		return r.PaidByName
	}
	return r.PaidBy
}
