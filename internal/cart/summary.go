package cart

import "strconv"

// TaxRate is the fixed VAT surcharge applied at summary rendering time only.
const TaxRate = 0.21

// Line is one rendered cart row.
type Line struct {
	LineItem
	LineSubtotal string `json:"line_subtotal"`
}

// Summary holds the rendered price block.
type Summary struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// View is the cart view model: badge count, rows in insertion order and the
// price summary, all recomputed from current state.
type View struct {
	Empty     bool    `json:"empty"`
	ItemCount int     `json:"item_count"`
	Lines     []Line  `json:"lines"`
	Summary   Summary `json:"summary"`
}

func buildView(items []LineItem) View {
	view := View{
		Empty: len(items) == 0,
		Lines: make([]Line, 0, len(items)),
	}

	for _, item := range items {
		view.ItemCount += item.Quantity
		view.Lines = append(view.Lines, Line{
			LineItem:     item,
			LineSubtotal: formatAmount(item.Price * float64(item.Quantity)),
		})
	}

	sub := subtotal(items)
	tax := formatAmount(sub * TaxRate)
	// Total is computed from the rounded tax figure so the displayed rows
	// always add up.
	taxValue, _ := strconv.ParseFloat(tax, 64)
	view.Summary = Summary{
		Subtotal: formatAmount(sub),
		Tax:      tax,
		Total:    formatAmount(sub + taxValue),
	}

	return view
}

func subtotal(items []LineItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
