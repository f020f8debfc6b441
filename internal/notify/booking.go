package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/marcel-receptionist/internal/callrecord"
	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/extract"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

// SalonLister exposes the salons and their notification addresses.
type SalonLister interface {
	Salons() []directory.Salon
}

// BookingNotifier emails the salon when a call ends with a booking. Other
// outcomes are ignored. It is a callrecord.Sink.
type BookingNotifier struct {
	email  EmailSender
	salons SalonLister
	// fallback receives bookings whose salon is unknown or has no address.
	fallback string
	logger   *logging.Logger
}

var _ callrecord.Sink = (*BookingNotifier)(nil)

func NewBookingNotifier(email EmailSender, salons SalonLister, fallback string, logger *logging.Logger) *BookingNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingNotifier{email: email, salons: salons, fallback: fallback, logger: logger}
}

func (n *BookingNotifier) Name() string { return "email" }

func (n *BookingNotifier) Write(ctx context.Context, rec callrecord.Record) error {
	if !rec.Booked() || n.email == nil {
		return nil
	}
	to, toName := n.recipient(rec.Salon)
	if to == "" {
		n.logger.Debug("notify: no recipient for booking", "call_sid", rec.CallSid, "salon", rec.Salon)
		return nil
	}
	msg := BookingEmail(rec)
	msg.To, msg.ToName = to, toName
	if err := n.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking email for %s: %w", rec.CallSid, err)
	}
	return nil
}

func (n *BookingNotifier) recipient(salonName string) (string, string) {
	if n.salons != nil && salonName != "" {
		for _, s := range n.salons.Salons() {
			if s.Name == salonName && s.NotifyEmail != "" {
				return s.NotifyEmail, s.Name
			}
		}
	}
	return n.fallback, ""
}

// BookingEmail renders the salon notification for a booked call.
func BookingEmail(rec callrecord.Record) Email {
	k := rec.Known
	client := rec.CallerName
	if client == "" {
		client = k.ClientName
	}
	if client == "" {
		client = "Client non identifié"
	}
	barber := k.Barber
	if barber == extract.FirstAvailable {
		barber = "premier disponible"
	}

	rows := [][2]string{
		{"Client", client},
		{"Téléphone", rec.CallerPhone},
		{"Service", strings.TrimSpace(k.Service + " " + k.Price)},
		{"Jour", k.Date},
		{"Heure", k.Time},
		{"Barbier", barber},
	}
	if rec.Salon != "" {
		rows = append(rows, [2]string{"Salon", rec.Salon})
	}
	if k.Urgent {
		rows = append(rows, [2]string{"Note", "Le client est pressé."})
	}

	var text, htmlBody strings.Builder
	text.WriteString("Un rendez-vous a été pris par téléphone.\n\n")
	htmlBody.WriteString("<p>Un rendez-vous a été pris par téléphone.</p><table>")
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(&text, "%s: %s\n", r[0], r[1])
		fmt.Fprintf(&htmlBody, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", html.EscapeString(r[0]), html.EscapeString(r[1]))
	}
	fmt.Fprintf(&text, "\nAppel: %s\n", rec.CallSid)
	htmlBody.WriteString("</table>")
	fmt.Fprintf(&htmlBody, "<p>Appel: %s</p>", html.EscapeString(rec.CallSid))

	return Email{
		Subject: fmt.Sprintf("Nouveau rendez-vous: %s, %s à %s", k.Service, k.Date, k.Time),
		Text:    text.String(),
		HTML:    htmlBody.String(),
	}
}
