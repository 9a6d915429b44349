package quotation

import "github.com/interport-cargo/interport/internal/quotation/pdf"

// Document maps a priced quotation onto its printable form.
func Document(q Quoted) pdf.Document {
	lines := make([]pdf.Line, 0, len(q.Details.ItemizedCharges))
	for _, c := range q.Details.ItemizedCharges {
		lines = append(lines, pdf.Line{ServiceType: c.ServiceType, Rate: c.Rate})
	}
	return pdf.Document{
		Number:              q.Details.QuotationNumber,
		RequestCode:         q.Request.RequestCode,
		IssuedAt:            q.Details.DateIssued,
		OfficerName:         q.Details.OfficerName,
		CustomerName:        q.Request.CustomerName,
		CustomerEmail:       q.Request.CustomerEmail,
		Route:               q.Request.Source + " to " + q.Request.Destination,
		ContainerType:       string(q.Details.ContainerType),
		Containers:          q.Request.NumberOfContainers,
		Scope:               q.Details.Scope,
		Status:              string(q.Details.Status),
		Lines:               lines,
		Subtotal:            q.Details.Subtotal,
		DiscountPercentage:  q.Details.DiscountPercentage,
		DiscountAmount:      q.Details.DiscountAmount,
		AmountAfterDiscount: q.Details.AmountAfterDiscount,
		GST:                 q.Details.GST,
		TotalAmount:         q.Details.TotalAmount,
	}
}
