package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ReceiptData carries everything printed on a fee receipt.
type ReceiptData struct {
	ReceiptNo   string
	Date        string
	StudentName string
	StudentID   string
	CourseName  string
	Amount      int64
}

// ReceiptRenderer renders payment memos with a fixed boxed layout: centered
// header and institute identity, right-aligned receipt number and date, then
// the body lines with blanks for payment method and signatures.
type ReceiptRenderer struct {
	instituteName    string
	instituteAddress string
}

// NewReceiptRenderer constructs a renderer with the institute identity block.
func NewReceiptRenderer(name, address string) *ReceiptRenderer {
	return &ReceiptRenderer{instituteName: name, instituteAddress: address}
}

// Render produces the receipt PDF bytes.
func (r *ReceiptRenderer) Render(data ReceiptData) ([]byte, error) {
	if data.ReceiptNo == "" {
		return nil, fmt.Errorf("receipt requires a receipt number")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	const (
		margin    = 15.0
		boxWidth  = 180.0
		boxHeight = 130.0
	)
	pdf.SetLineWidth(0.6)
	pdf.Rect(margin, margin, boxWidth, boxHeight, "D")

	// Right-aligned receipt number and date, inside the top of the box.
	pdf.SetFont("Arial", "", 10)
	pdf.SetXY(margin, margin+6)
	pdf.CellFormat(boxWidth-5, 5, fmt.Sprintf("Receipt No: %s", data.ReceiptNo), "", 1, "R", false, 0, "")
	pdf.SetX(margin)
	pdf.CellFormat(boxWidth-5, 5, fmt.Sprintf("Date: %s", data.Date), "", 1, "R", false, 0, "")

	pdf.SetFont("Times", "B", 14)
	pdf.SetXY(margin, margin+20)
	pdf.CellFormat(boxWidth, 8, "COURSE FEE RECEIPT", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetX(margin)
	pdf.CellFormat(boxWidth, 5, r.instituteName, "", 1, "C", false, 0, "")
	pdf.SetX(margin)
	pdf.CellFormat(boxWidth, 5, r.instituteAddress, "", 1, "C", false, 0, "")

	// Core PDF fonts cannot render the rupee sign, so receipts spell it out.
	pdf.SetFont("Arial", "", 11)
	y := margin + 45
	for _, line := range []string{
		fmt.Sprintf("Received from: %s", data.StudentName),
		fmt.Sprintf("Student ID: %s", data.StudentID),
		fmt.Sprintf("The sum of: Rs. %d /-", data.Amount),
		fmt.Sprintf("Being payment of: %s", data.CourseName),
		"Cash / Cheque No: __________________________",
	} {
		pdf.SetXY(margin+8, y)
		pdf.CellFormat(boxWidth-16, 6, line, "", 1, "", false, 0, "")
		y += 10
	}

	pdf.SetXY(margin+8, y+10)
	pdf.CellFormat(boxWidth-16, 6, "Received by: _______________________        Signature: _______________________", "", 1, "", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
