package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/marcel-receptionist/internal/callrecord"
	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/extract"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

type recordingSender struct {
	sent []Email
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Email) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func booked() callrecord.Record {
	return callrecord.Record{
		CallSid:     "CA9",
		CallerPhone: "+15145551234",
		CallerName:  "Jean Tremblay",
		Salon:       "Barbier du Plateau",
		Outcome:     callrecord.OutcomeBooked,
		Known: extract.Context{
			Service: "coupe homme", Price: "30 $", Date: "demain", Time: "14h", Barber: "Marco",
		},
	}
}

func TestBookingNotifierEmailsSalon(t *testing.T) {
	sender := &recordingSender{}
	n := NewBookingNotifier(sender, directory.Seed(), "", logging.Discard())

	require.NoError(t, n.Write(context.Background(), booked()))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "plateau@barbiermarcel.ca", msg.To)
	assert.Equal(t, "Barbier du Plateau", msg.ToName)
	assert.Equal(t, "Nouveau rendez-vous: coupe homme, demain à 14h", msg.Subject)
	assert.Contains(t, msg.Text, "Client: Jean Tremblay\n")
	assert.Contains(t, msg.Text, "Service: coupe homme 30 $\n")
	assert.Contains(t, msg.Text, "Barbier: Marco\n")
	assert.Contains(t, msg.HTML, "<th align=\"left\">Téléphone</th><td>+15145551234</td>")
}

func TestBookingNotifierFallbackAndSkips(t *testing.T) {
	ctx := context.Background()
	sender := &recordingSender{}
	n := NewBookingNotifier(sender, directory.Seed(), "accueil@barbiermarcel.ca", logging.Discard())

	rec := booked()
	rec.Salon = ""
	rec.Known.Barber = extract.FirstAvailable
	require.NoError(t, n.Write(ctx, rec))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "accueil@barbiermarcel.ca", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Text, "Barbier: premier disponible")

	rec = booked()
	rec.Outcome = callrecord.OutcomeAbandoned
	require.NoError(t, n.Write(ctx, rec))
	assert.Len(t, sender.sent, 1)

	noFallback := NewBookingNotifier(sender, nil, "", logging.Discard())
	rec = booked()
	require.NoError(t, noFallback.Write(ctx, rec))
	assert.Len(t, sender.sent, 1)
}

func TestBookingNotifierSendError(t *testing.T) {
	n := NewBookingNotifier(&recordingSender{err: errors.New("quota")}, directory.Seed(), "", logging.Discard())
	assert.ErrorContains(t, n.Write(context.Background(), booked()), "quota")
}

func TestBookingEmailEscapesHTML(t *testing.T) {
	rec := booked()
	rec.CallerName = ""
	rec.Known.ClientName = "<Luc>"
	msg := BookingEmail(rec)
	assert.Contains(t, msg.HTML, "&lt;Luc&gt;")
	assert.Contains(t, msg.Text, "Client: <Luc>")
}
