// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-client/internal/config"
	"github.com/your-org/storefront-client/internal/domain/order"
	"github.com/your-org/storefront-client/internal/domain/product"
	"github.com/your-org/storefront-client/internal/domain/user"
)

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": product.FormatPrice,
}).Parse(receiptTemplate))

// Service renders order receipts
type Service struct {
	config *config.Config
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		now:    time.Now,
	}
}

// GenerateReceipt renders a PDF receipt for an order. It needs the
// wkhtmltopdf binary on PATH.
func (s *Service) GenerateReceipt(o *order.Order, customer *user.User) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(o, customer)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML renders the receipt markup that GenerateReceipt converts
func (s *Service) RenderHTML(o *order.Order, customer *user.User) (string, error) {
	if o == nil {
		return "", fmt.Errorf("order is required")
	}

	data := ReceiptData{
		ReceiptNumber: ReceiptNumber(o.ID),
		IssuedAt:      s.now().Format("January 2, 2006"),
		Order:         o,
		Customer:      customer,
		Store:         s.config.Store,
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// ReceiptNumber formats the printed receipt number of an order
func ReceiptNumber(orderID uint) string {
	return fmt.Sprintf("RCPT-%06d", orderID)
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string
	IssuedAt      string
	Order         *order.Order
	Customer      *user.User
	Store         config.StoreConfig
}

const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { display: flex; justify-content: space-between; border-bottom: 2px solid #eee; padding-bottom: 20px; margin-bottom: 30px; }
        .receipt-title { font-size: 28px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .items-table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .num { text-align: right; width: 90px; }
        .total-row { font-size: 18px; font-weight: bold; }
        .footer { margin-top: 50px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <h1>{{.Store.Name}}</h1>
            {{if .Store.Address}}<p>{{.Store.Address}}</p>{{end}}
            {{if .Store.Email}}<p>Email: {{.Store.Email}}</p>{{end}}
            {{if .Store.Website}}<p>{{.Store.Website}}</p>{{end}}
        </div>
        <div style="text-align: right;">
            <div class="receipt-title">RECEIPT</div>
            <p><strong>Receipt #:</strong> {{.ReceiptNumber}}</p>
            <p><strong>Issued:</strong> {{.IssuedAt}}</p>
            <p><strong>Order #:</strong> {{.Order.ID}}</p>
            <p><strong>Status:</strong> {{.Order.Status.Label}}</p>
        </div>
    </div>

    <div>
        <div class="section-title">Ship To:</div>
        {{with .Customer}}<p><strong>{{.FullName}}</strong></p>{{end}}
        <p>{{.Order.ShippingAddress}}</p>
        <p><strong>Payment:</strong> {{.Order.PaymentMethod.Label}}</p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th class="num">Qty</th>
                <th class="num">Price</th>
                <th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>{{.Product.Name}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{money .Price}}</td>
                <td class="num">{{money .Subtotal}}</td>
            </tr>
            {{end}}
            <tr class="total-row">
                <td colspan="3" class="num">Total:</td>
                <td class="num">{{money .Order.TotalAmount}}</td>
            </tr>
        </tbody>
    </table>

    <div class="footer">
        <p>Thank you for your purchase!</p>
        {{if .Store.Email}}<p>Questions about this order? Contact us at {{.Store.Email}}</p>{{end}}
    </div>
</body>
</html>
`
