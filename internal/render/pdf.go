package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/andy/invoicer/internal/domain"
	"github.com/jung-kurt/gofpdf"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/text/language"
)

// Layout in points on an A4 page
const (
	margin      = 35.0
	infoBoxW    = 180.0
	infoBoxH    = 80.0
	logoW       = 50.0
	logoH       = 40.0
	qrSize      = 150.0
	totalsW     = 200.0
	lineHeight  = 18.0
	footerSpace = 40.0
)

var itemColumns = []struct {
	title string
	width float64
	align string
}{
	{"S.No", 30, "C"},
	{"Description", 215, "L"},
	{"HSN/SAC", 70, "C"},
	{"Qty", 40, "C"},
	{"Rate", 85, "R"},
	{"Amount", 85, "R"},
}

type rgb struct{ r, g, b int }

var (
	titleRed  = rgb{211, 47, 47}
	boxFill   = rgb{248, 249, 250}
	boxBorder = rgb{224, 224, 224}
	mutedText = rgb{68, 68, 68}
	stripe    = rgb{245, 245, 245}
)

// PDFRenderer draws invoices as single A4 documents
type PDFRenderer struct {
	logger *zap.Logger
}

// NewPDFRenderer creates a PDFRenderer
func NewPDFRenderer(logger *zap.Logger) *PDFRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFRenderer{logger: logger}
}

// QRPayload is the text encoded in the verification code
func QRPayload(invoice *domain.Invoice) string {
	return fmt.Sprintf("Invoice:%s|Total:%s", invoice.InvoiceNumber, invoice.Totals.Total.String())
}

// Render returns the PDF bytes for invoice
func (r *PDFRenderer) Render(invoice *domain.Invoice) ([]byte, error) {
	tpl := domain.GetTemplate(invoice.Template)

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin+footerSpace)
	pdf.SetTitle("Invoice "+invoice.InvoiceNumber, true)
	pdf.SetCreator("invoicer", true)

	d := &drawer{
		pdf:     pdf,
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
		invoice: invoice,
		tpl:     tpl,
		accent:  parseColor(tpl.AccentColor, rgb{0, 0, 0}),
		text:    parseColor(tpl.TextColor, rgb{17, 24, 39}),
		prefix:  invoice.Currency.ASCIIPrefix(),
		locale:  pdfLocale(invoice.Currency.Locale),
		logger:  r.logger,
	}
	d.pageW, d.pageH = pdf.GetPageSize()
	d.contentW = d.pageW - 2*margin

	pdf.SetHeaderFunc(d.background)
	pdf.SetFooterFunc(d.footer)
	pdf.AddPage()

	y := d.header(margin)
	y = d.billTo(y + 15)
	y = d.items(y + 20)
	d.summary(y + 20)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to draw invoice: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type drawer struct {
	pdf     *gofpdf.Fpdf
	tr      func(string) string
	invoice *domain.Invoice
	tpl     domain.Template
	accent  rgb
	text    rgb
	prefix  string
	locale  string
	logger  *zap.Logger

	pageW, pageH, contentW float64
}

func (d *drawer) setText(c rgb) { d.pdf.SetTextColor(c.r, c.g, c.b) }
func (d *drawer) setFill(c rgb) { d.pdf.SetFillColor(c.r, c.g, c.b) }
func (d *drawer) setDraw(c rgb) { d.pdf.SetDrawColor(c.r, c.g, c.b) }

func (d *drawer) font(style string, size float64) {
	d.pdf.SetFont("Helvetica", style, size)
}

// background tints every page for templates that have a page colour
func (d *drawer) background() {
	if d.tpl.BackgroundColor == "" {
		return
	}
	d.setFill(parseColor(d.tpl.BackgroundColor, rgb{255, 255, 255}))
	d.pdf.Rect(0, 0, d.pageW, d.pageH, "F")
}

// header draws the seller block on the left and the invoice box on the
// right, returning the y position below the separator line
func (d *drawer) header(y float64) float64 {
	pdf := d.pdf
	seller := d.invoice.Seller

	sellerX := margin
	if d.tpl.ShowLogo && d.logo(margin, y+6) {
		sellerX += logoW + 12
	}
	textW := d.pageW - 2*margin - infoBoxW - (sellerX - margin) - 10

	align := "L"
	if d.tpl.Header == domain.HeaderCenter {
		align = "C"
	}

	pdf.SetFont("Times", "", d.tpl.HeadingSize)
	d.setText(d.accent)
	pdf.SetXY(sellerX, y+8)
	pdf.CellFormat(textW, d.tpl.HeadingSize+2, d.tr(seller.Name), "", 2, align, false, 0, "")

	d.font("", d.tpl.BodySize)
	d.setText(mutedText)
	pdf.SetX(sellerX)
	pdf.MultiCell(textW, d.tpl.BodySize+3, d.tr(seller.Address), "", align, false)
	if d.invoice.Tax.IsTaxed() && seller.TaxIDValue() != "" {
		pdf.SetX(sellerX)
		pdf.CellFormat(textW, d.tpl.BodySize+3, d.tr(fmt.Sprintf("%s NO: %s", d.invoice.Tax.Label, seller.TaxIDValue())), "", 2, align, false, 0, "")
	}
	sellerBottom := pdf.GetY()

	// Invoice box
	boxX := d.pageW - margin - infoBoxW
	d.setFill(boxFill)
	d.setDraw(boxBorder)
	pdf.SetLineWidth(0.5)
	pdf.Rect(boxX, y, infoBoxW, infoBoxH, "FD")

	pdf.SetFont("Courier", "B", 16)
	d.setText(titleRed)
	pdf.Text(boxX+10, y+20, "TAX INVOICE")

	d.font("B", 9)
	d.setText(rgb{51, 51, 51})
	pdf.Text(boxX+10, y+45, "Invoice No:")
	pdf.Text(boxX+10, y+60, "Date:")

	d.font("", 9)
	d.setText(rgb{0, 0, 0})
	d.rightText(boxX+infoBoxW-10, y+45, d.invoice.InvoiceNumber)
	d.rightText(boxX+infoBoxW-10, y+60, d.invoice.CreatedAt.Format("02 Jan 2006"))

	y = max(y+infoBoxH, sellerBottom) + 20
	d.setDraw(d.accent)
	pdf.SetLineWidth(2)
	pdf.Line(margin, y, d.pageW-margin, y)
	pdf.SetLineWidth(0.5)
	return y
}

func (d *drawer) rightText(right, y float64, s string) {
	s = d.tr(s)
	d.pdf.Text(right-d.pdf.GetStringWidth(s), y, s)
}

// pdfImageTypes are the formats gofpdf embeds from the original bytes
var pdfImageTypes = map[string]string{
	"image/jpeg": "JPG",
	"image/png":  "PNG",
	"image/gif":  "GIF",
}

// logo draws the invoice logo and reports whether anything was drawn.
// Logos that cannot be decoded are skipped.
func (d *drawer) logo(x, y float64) bool {
	logo := d.invoice.Logo
	if logo == nil || len(logo.Data) == 0 || d.pdf.Err() {
		return false
	}

	name, opts, ok := d.registerLogo(logo)
	if !ok {
		return false
	}

	d.setDraw(rgb{220, 220, 220})
	d.pdf.Rect(x-2, y-2, logoW+4, logoH+4, "D")
	d.pdf.ImageOptions(name, x, y, logoW, logoH, false, opts, 0, "")
	return true
}

// registerLogo embeds the original bytes when gofpdf reads the format,
// otherwise a flattened PNG
func (d *drawer) registerLogo(logo *domain.Logo) (string, gofpdf.ImageOptions, bool) {
	if imageType, ok := pdfImageTypes[logo.MIMEType]; ok {
		opts := gofpdf.ImageOptions{ImageType: imageType}
		d.pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(logo.Data))
		if !d.pdf.Err() {
			return "logo", opts, true
		}
		// 16-bit or interlaced PNGs, for example
		d.logger.Debug("re-encoding logo", zap.String("type", logo.MIMEType), zap.Error(d.pdf.Error()))
		d.pdf.ClearError()
	}

	data, err := flattenImage(logo.Data)
	if err != nil {
		d.logger.Warn("skipping logo", zap.String("type", logo.MIMEType), zap.Error(err))
		return "", gofpdf.ImageOptions{}, false
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader("logo-flat", opts, bytes.NewReader(data))
	if d.pdf.Err() {
		d.logger.Warn("skipping logo", zap.Error(d.pdf.Error()))
		d.pdf.ClearError()
		return "", gofpdf.ImageOptions{}, false
	}
	return "logo-flat", opts, true
}

// flattenImage decodes any registered format and re-encodes it as an 8-bit
// RGBA PNG
func flattenImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *drawer) billTo(y float64) float64 {
	pdf := d.pdf
	customer := d.invoice.Customer
	half := d.contentW / 2

	pdf.SetXY(margin, y)
	d.font("B", d.tpl.BodySize)
	d.setFill(d.accent)
	d.setDraw(boxBorder)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(half, lineHeight, "Bill To", "1", 0, "L", true, 0, "")
	pdf.CellFormat(half, lineHeight, "Details", "1", 1, "L", true, 0, "")

	taxID := customer.TaxIDValue()
	if taxID == "" {
		taxID = "N/A"
	}

	d.font("", d.tpl.BodySize)
	d.setText(d.text)
	left := d.tr(customer.Name + "\n" + customer.Address)
	right := d.tr("Tax ID: " + taxID + "\nCurrency: " + d.invoice.Currency.Code)

	top := pdf.GetY()
	pdf.MultiCell(half, lineHeight-4, left, "LRB", "L", false)
	leftBottom := pdf.GetY()
	pdf.SetXY(margin+half, top)
	pdf.MultiCell(half, lineHeight-4, right, "LRB", "L", false)

	return max(leftBottom, pdf.GetY())
}

func (d *drawer) items(y float64) float64 {
	pdf := d.pdf
	pdf.SetXY(margin, y)

	d.font("B", d.tpl.BodySize)
	if d.tpl.ShowTableHeaderBg {
		d.setFill(d.accent)
		pdf.SetTextColor(255, 255, 255)
	} else {
		d.setFill(stripe)
		d.setText(d.text)
	}
	for i, col := range itemColumns {
		ln := 0
		if i == len(itemColumns)-1 {
			ln = 1
		}
		pdf.CellFormat(col.width, lineHeight, col.title, "1", ln, col.align, true, 0, "")
	}

	d.font("", d.tpl.BodySize)
	d.setText(d.text)
	d.setFill(stripe)
	for i, item := range d.invoice.Items {
		hsn := item.HSN
		if hsn == "" {
			hsn = "-"
		}
		cells := []string{
			fmt.Sprint(i + 1),
			d.fit(item.Name, itemColumns[1].width-6),
			hsn,
			item.Qty.String(),
			d.prefix + domain.FormatAmount(item.Price, d.locale),
			d.prefix + domain.FormatAmount(item.Amount(), d.locale),
		}
		fill := i%2 == 1
		for c, col := range itemColumns {
			ln := 0
			if c == len(itemColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(col.width, lineHeight, d.tr(cells[c]), "LR", ln, col.align, fill, 0, "")
		}
	}
	pdf.Line(margin, pdf.GetY(), margin+d.contentW, pdf.GetY())

	return pdf.GetY()
}

// fit truncates s with an ellipsis so it is at most w points wide
func (d *drawer) fit(s string, w float64) string {
	if d.pdf.GetStringWidth(d.tr(s)) <= w {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && d.pdf.GetStringWidth(d.tr(string(runes)+"...")) > w {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func (d *drawer) summary(y float64) {
	pdf := d.pdf
	totals := d.invoice.Totals
	tax := d.invoice.Tax

	// keep totals and QR together on one page
	needed := 3 * lineHeight
	if d.invoice.QREnabled {
		needed = max(needed, qrSize+12)
	}
	if y+needed > d.pageH-margin-footerSpace {
		pdf.AddPage()
		y = margin
	}

	rows := []struct {
		label  string
		amount string
	}{
		{"Subtotal", d.prefix + domain.FormatAmount(totals.Subtotal, d.locale)},
		{fmt.Sprintf("Tax (%s)", tax.Label), d.prefix + domain.FormatAmount(totals.TaxOrZero(), d.locale)},
		{"Grand Total", d.prefix + domain.FormatAmount(totals.Total, d.locale)},
	}

	x := d.pageW - margin - totalsW
	d.setDraw(boxBorder)
	for i, row := range rows {
		pdf.SetXY(x, y+float64(i)*lineHeight)
		size := d.tpl.BodySize + 1
		if i == len(rows)-1 {
			d.setFill(rgb{255, 248, 248})
			d.setText(titleRed)
			size += 2
		} else {
			d.setFill(rgb{255, 255, 255})
			d.setText(d.text)
		}
		d.font("B", size)
		pdf.CellFormat(totalsW/2, lineHeight, d.tr(row.label), "1", 0, "L", true, 0, "")
		d.font("", size)
		pdf.CellFormat(totalsW/2, lineHeight, d.tr(row.amount), "1", 0, "R", true, 0, "")
	}

	if d.invoice.QREnabled {
		d.qr(margin, y)
	}
}

func (d *drawer) qr(x, y float64) {
	code, err := qrcode.Encode(QRPayload(d.invoice), qrcode.Medium, 256)
	if err != nil {
		d.logger.Warn("qr generation failed", zap.Error(err))
		return
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(code))
	d.pdf.ImageOptions("qr", x, y, qrSize, qrSize, false, opts, 0, "")

	d.font("", 8)
	d.pdf.SetTextColor(100, 100, 100)
	label := "Verify Invoice"
	d.pdf.Text(x+(qrSize-d.pdf.GetStringWidth(label))/2, y+qrSize+8, label)
}

func (d *drawer) footer() {
	d.font("", 8)
	d.pdf.SetTextColor(150, 150, 150)
	d.pdf.SetXY(margin, d.pageH-footerSpace)
	d.pdf.CellFormat(d.contentW, 10, "This is a computer-generated document. No signature is required.", "", 0, "C", false, 0, "")
}

// parseColor converts "#rrggbb" to RGB, using fallback for malformed values
func parseColor(hex string, fallback rgb) rgb {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	r, g, b := c.RGB255()
	return rgb{int(r), int(g), int(b)}
}

// pdfLocale picks a locale whose digits exist in the core PDF fonts
func pdfLocale(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return "en"
	}
	if base, _ := tag.Base(); base.String() != "ar" {
		return locale
	}
	return "en"
}
