package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"live-commerce/internal/catalog"

	"github.com/fatih/color"
)

var (
	success = color.New(color.FgGreen).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	danger  = color.New(color.FgRed, color.Bold).SprintFunc()
	muted   = color.New(color.Faint).SprintFunc()
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(tw *tabwriter.Writer, cells ...string) {
	fmt.Fprintln(tw, strings.Join(cells, "\t"))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func strOrDash(v *string) string {
	if v == nil {
		return "-"
	}
	return orDash(*v)
}

// statusLabel colors a product or stream status. It is always the last
// column so escape codes cannot shift the alignment.
func statusLabel(status string) string {
	switch strings.ToUpper(status) {
	case "ACTIVE", catalog.StatusLive:
		return success(status)
	case "SCHEDULED":
		return warning(status)
	case "ENDED", "INACTIVE":
		return muted(status)
	default:
		return status
	}
}

func printProducts(w io.Writer, items []catalog.ProductView) error {
	tw := newTable(w)
	row(tw, "ID", "NAME", "PRICE", "STOCK", "CATEGORY", "SKU", "STATUS")
	for _, p := range items {
		row(tw, p.ID, p.Name, orDash(p.Price), intOrDash(p.Stock), orDash(p.Category), strOrDash(p.SKU), statusLabel(p.Status))
	}
	return tw.Flush()
}

func printProduct(w io.Writer, p catalog.ProductView) error {
	tw := newTable(w)
	row(tw, "ID", p.ID)
	row(tw, "Name", p.Name)
	row(tw, "Description", orDash(p.Description))
	row(tw, "Price", orDash(p.Price))
	row(tw, "Stock", intOrDash(p.Stock))
	row(tw, "Category", orDash(p.Category))
	row(tw, "SKU", strOrDash(p.SKU))
	row(tw, "Image", orDash(p.ImageURL))
	row(tw, "Created", orDash(p.CreatedLabel))
	row(tw, "Updated", orDash(p.UpdatedLabel))
	row(tw, "Status", statusLabel(p.Status))
	return tw.Flush()
}

func printReservations(w io.Writer, items []catalog.ReservationView) error {
	tw := newTable(w)
	row(tw, "ID", "CUSTOMER", "PHONE", "EMAIL", "PRODUCTS", "SCHEDULE")
	for _, r := range items {
		row(tw, r.ID, r.CustomerName, r.CustomerPhone, r.CustomerEmail, orDash(strings.Join(r.ProductIDs, ",")), orDash(r.Schedule))
	}
	return tw.Flush()
}

func printReservation(w io.Writer, r catalog.ReservationView) error {
	tw := newTable(w)
	row(tw, "ID", r.ID)
	row(tw, "Customer", r.CustomerName)
	row(tw, "Phone", r.CustomerPhone)
	row(tw, "Email", r.CustomerEmail)
	row(tw, "Products", orDash(strings.Join(r.ProductIDs, ",")))
	row(tw, "Schedule", orDash(r.Schedule))
	row(tw, "Created", orDash(r.CreatedLabel))
	return tw.Flush()
}

func printStreams(w io.Writer, items []catalog.StreamView) error {
	tw := newTable(w)
	row(tw, "ID", "TITLE", "HOST", "CHANNEL", "VIEWS", "STARTED", "STATUS")
	for _, s := range items {
		row(tw, s.ID, s.Title, s.HostID, orDash(s.Channel), s.Views, orDash(s.StartLabel), statusLabel(s.Status))
	}
	return tw.Flush()
}

func printStream(w io.Writer, s catalog.StreamView) error {
	tw := newTable(w)
	row(tw, "ID", s.ID)
	row(tw, "Title", s.Title)
	row(tw, "Description", orDash(s.Description))
	row(tw, "Host", s.HostID)
	row(tw, "Channel", orDash(s.Channel))
	row(tw, "Views", s.Views)
	row(tw, "Started", orDash(s.StartLabel))
	row(tw, "Ended", orDash(s.EndLabel))
	row(tw, "Status", statusLabel(s.Status))
	return tw.Flush()
}
