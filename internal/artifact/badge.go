package artifact

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/passdesk/passdesk/internal/models"
)

// BuildBadge composes the printable badge PDF for a pass. Layout is a
// 300x420pt card: title, code, visitor name, company, QR image and the
// validity window. Everything is derived from the stored pass and visitor,
// so the badge is reproducible at any later time.
func BuildBadge(pass *models.Pass, visitor *models.Visitor) ([]byte, error) {
	qrPNG, err := EncodeQR(pass.Code)
	if err != nil {
		return nil, err
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: 300, Ht: 420},
	})
	doc.SetMargins(18, 18, 18)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	doc.SetDrawColor(229, 231, 235)
	doc.RoundedRect(10, 10, 280, 400, 12, "1234", "D")
	doc.SetDrawColor(0, 0, 0)

	doc.SetFont("Helvetica", "B", 16)
	doc.SetXY(18, 26)
	doc.CellFormat(264, 20, "Visitor Pass", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 12)
	doc.SetX(18)
	doc.CellFormat(264, 16, pass.Code, "", 1, "C", false, 0, "")

	doc.Ln(8)
	doc.SetFont("Helvetica", "", 14)
	doc.SetX(18)
	doc.CellFormat(264, 18, visitor.FullName(), "", 1, "C", false, 0, "")
	if visitor.Company != "" {
		doc.SetFont("Helvetica", "", 11)
		doc.SetTextColor(71, 85, 105)
		doc.SetX(18)
		doc.CellFormat(264, 14, visitor.Company, "", 1, "C", false, 0, "")
		doc.SetTextColor(0, 0, 0)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("qr-"+pass.Code, opts, bytes.NewReader(qrPNG))
	doc.ImageOptions("qr-"+pass.Code, (300-200)/2, doc.GetY()+12, 200, 200, false, opts, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(71, 85, 105)
	doc.SetXY(18, doc.GetY()+200+24)
	validity := fmt.Sprintf("Valid: %s - %s",
		pass.ValidFrom.Local().Format("Jan 2, 2006 15:04"),
		pass.ValidTo.Local().Format("Jan 2, 2006 15:04"),
	)
	doc.CellFormat(264, 14, validity, "", 1, "C", false, 0, "")
	doc.SetTextColor(0, 0, 0)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render badge pdf: %w", err)
	}
	return buf.Bytes(), nil
}
