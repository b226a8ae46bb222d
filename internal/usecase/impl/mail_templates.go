package impl

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"text/template"
	"time"

	"market/internal/domain/entity"
	"market/internal/domain/service"
	"market/internal/errors"
	"market/internal/usecase"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	textTemplates = template.Must(template.ParseFS(templateFS, "templates/*.txt.tmpl"))
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
)

// renderMessage fills the text and HTML variants of the named template.
func renderMessage(name, subject string, to []string, data any) (*service.Message, error) {
	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, name+".txt.tmpl", data); err != nil {
		return nil, errors.Wrapf(err, "render %s text", name)
	}
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html.tmpl", data); err != nil {
		return nil, errors.Wrapf(err, "render %s html", name)
	}

	return &service.Message{
		To:      to,
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func welcomeMessage(serviceName string, user *entity.User) (*service.Message, error) {
	return renderMessage("welcome", "Welcome to "+serviceName, []string{user.Email}, map[string]any{
		"Service":  serviceName,
		"FullName": user.FullName,
		"Email":    user.Email,
		"Role":     string(user.Role),
	})
}

type confirmationLine struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

func orderConfirmationMessage(to string, order *entity.Order, names map[string]string) (*service.Message, error) {
	lines := make([]confirmationLine, 0, len(order.Items))
	for _, line := range order.Items {
		lines = append(lines, confirmationLine{
			Name:     names[line.ItemID.String()],
			Quantity: line.Quantity,
			Price:    line.Price.StringFixed(2),
			Subtotal: line.Subtotal().StringFixed(2),
		})
	}

	return renderMessage("order_confirmation", "Order confirmation", []string{to}, map[string]any{
		"OrderID": order.ID.String(),
		"Lines":   lines,
		"Total":   order.TotalAmount.StringFixed(2),
		"Status":  string(order.Status),
	})
}

func dailyReportMessage(serviceName string, to []string, report *usecase.DailyReport) (*service.Message, error) {
	date := report.GeneratedAt.UTC().Format(time.DateOnly)

	return renderMessage("daily_report", serviceName+" daily report "+date, to, map[string]any{
		"Service":       serviceName,
		"Date":          date,
		"Users":         report.Users,
		"Businesses":    report.Businesses,
		"Items":         report.Items,
		"Orders":        report.Orders,
		"PendingOrders": report.PendingOrders,
	})
}
