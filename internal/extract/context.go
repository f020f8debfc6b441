// Package extract turns free-form French caller speech into booking slots.
//
// Every field has an ordered list of patterns; the first pattern that matches
// decides the value. Extraction is pure: the same text always yields the same
// Context, and callers accumulate results across turns with Merge.
package extract

// Intent is the caller's best-effort goal for the conversation.
type Intent string

const (
	IntentBooking        Intent = "booking"
	IntentPricing        Intent = "pricing"
	IntentCancellation   Intent = "cancellation"
	IntentGreeting       Intent = "greeting"
	IntentAvailability   Intent = "availability"
	IntentRecommendation Intent = "recommendation"
	IntentInfo           Intent = "info"
	IntentGeneral        Intent = "general"
)

// Slot names a field that must be filled before a booking can be confirmed.
type Slot string

const (
	SlotNone    Slot = ""
	SlotService Slot = "service"
	SlotDate    Slot = "date"
	SlotTime    Slot = "time"
	SlotBarber  Slot = "barber"
)

// FirstAvailable is the Barber value used when the caller has no preference.
const FirstAvailable = "premier disponible"

// Context is the structured view of a conversation.
type Context struct {
	Service    string `json:"service,omitempty"`
	Price      string `json:"price,omitempty"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	Barber     string `json:"barber,omitempty"`
	Salon      string `json:"salon,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	Urgent     bool   `json:"urgent,omitempty"`
	Uncertain  bool   `json:"uncertain,omitempty"`
	Frustrated bool   `json:"frustrated,omitempty"`
	Intent     Intent `json:"intent,omitempty"`
}

// Merge layers newer over c. Non-empty fields of newer win, empty ones never
// clear what c already knows, and flags only turn on.
func (c Context) Merge(newer Context) Context {
	out := c
	if newer.Service != "" {
		out.Service = newer.Service
		out.Price = newer.Price
	}
	out.Date = pick(newer.Date, c.Date)
	out.Time = pick(newer.Time, c.Time)
	out.Barber = pick(newer.Barber, c.Barber)
	out.Salon = pick(newer.Salon, c.Salon)
	out.ClientName = pick(newer.ClientName, c.ClientName)
	out.Urgent = c.Urgent || newer.Urgent
	out.Uncertain = c.Uncertain || newer.Uncertain
	out.Frustrated = c.Frustrated || newer.Frustrated
	if newer.Intent != "" && newer.Intent != IntentGeneral {
		out.Intent = newer.Intent
	}
	if out.Intent == "" {
		out.Intent = IntentGeneral
	}
	return out
}

// Complete reports whether service, date, time and barber are all known.
func (c Context) Complete() bool {
	return c.NextMissing() == SlotNone
}

// NextMissing returns the first unknown slot in asking order.
func (c Context) NextMissing() Slot {
	switch {
	case c.Service == "":
		return SlotService
	case c.Date == "":
		return SlotDate
	case c.Time == "":
		return SlotTime
	case c.Barber == "":
		return SlotBarber
	default:
		return SlotNone
	}
}

// Known lists the slots that already have a value.
func (c Context) Known() []Slot {
	var out []Slot
	if c.Service != "" {
		out = append(out, SlotService)
	}
	if c.Date != "" {
		out = append(out, SlotDate)
	}
	if c.Time != "" {
		out = append(out, SlotTime)
	}
	if c.Barber != "" {
		out = append(out, SlotBarber)
	}
	return out
}

func pick(newer, older string) string {
	if newer != "" {
		return newer
	}
	return older
}
