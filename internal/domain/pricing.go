package domain

const (
	DefaultGSTPercent      = 5.0
	DefaultDiscountPercent = 0.0
)

var AllowedGSTPercents = []float64{0, 5, 12}

// Breakdown is the derived pricing of one unit of a product.
type Breakdown struct {
	TaxableValue  float64 `json:"taxableValue"`
	DiscountValue float64 `json:"discountValue"`
	TotalGST      float64 `json:"totalGstAmount"`
	CGST          float64 `json:"cgst"`
	SGST          float64 `json:"sgst"`
}

// Price applies the discount to base and computes GST on the discounted value.
// CGST and SGST are always equal halves of TotalGST.
func Price(base, discountPercent, gstPercent float64) Breakdown {
	discount := base * discountPercent / 100
	taxable := base - discount
	cgst, sgst, total := SplitGST(taxable, gstPercent)
	return Breakdown{
		TaxableValue:  taxable,
		DiscountValue: discount,
		TotalGST:      total,
		CGST:          cgst,
		SGST:          sgst,
	}
}

// SplitGST returns the central and state halves of the GST owed on amount.
func SplitGST(amount, gstPercent float64) (cgst, sgst, total float64) {
	total = amount * gstPercent / 100
	half := total / 2
	return half, half, total
}

func ValidGSTPercent(p float64) bool {
	for _, v := range AllowedGSTPercents {
		if v == p {
			return true
		}
	}
	return false
}

// Line is a priced order line before it is persisted.
type Line struct {
	Amount float64
	GST    float64
	CGST   float64
	SGST   float64
}

func PriceLine(quantity int, rate, gstPercent float64) Line {
	amount := float64(quantity) * rate
	cgst, sgst, total := SplitGST(amount, gstPercent)
	return Line{Amount: amount, GST: total, CGST: cgst, SGST: sgst}
}
