// Package directory resolves callers and barbiers from reference data loaded
// once at process start. Lookups never mutate and are safe for concurrent use.
package directory

import (
	"strings"
	"time"

	"github.com/wolfman30/marcel-receptionist/internal/textutil"
)

// Caller is a known client of one of the salons.
type Caller struct {
	Phone            string    `json:"phone" yaml:"phone"`
	Name             string    `json:"name" yaml:"name"`
	PreferredService string    `json:"preferred_service,omitempty" yaml:"preferred_service"`
	PreferredBarber  string    `json:"preferred_barber,omitempty" yaml:"preferred_barber"`
	LastVisit        time.Time `json:"last_visit,omitempty" yaml:"last_visit"`
	Notes            string    `json:"notes,omitempty" yaml:"notes"`
}

// FirstName returns the first word of the caller's display name.
func (c Caller) FirstName() string {
	if fields := strings.Fields(c.Name); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Barbier works at exactly one salon.
type Barbier struct {
	Name      string   `json:"name" yaml:"name"`
	Specialty string   `json:"specialty" yaml:"specialty"`
	Price     string   `json:"price" yaml:"price"`
	Aliases   []string `json:"aliases,omitempty" yaml:"aliases"`
}

// Salon groups barbiers under one address.
type Salon struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Address     string    `json:"address" yaml:"address"`
	Phone       string    `json:"phone,omitempty" yaml:"phone"`
	NotifyEmail string    `json:"notify_email,omitempty" yaml:"notify_email"`
	Barbiers    []Barbier `json:"barbiers" yaml:"barbiers"`
}

// BarbierMatch is a barbier resolved together with its salon.
type BarbierMatch struct {
	Barbier      Barbier
	SalonID      string
	SalonName    string
	SalonAddress string
}

// Directory is the read-only caller and salon reference.
type Directory struct {
	salons  []Salon
	callers []Caller
	byPhone map[string]int
	flat    []BarbierMatch
}

// New builds a Directory. Later callers with the same normalized number
// replace earlier ones.
func New(salons []Salon, callers []Caller) *Directory {
	d := &Directory{
		salons:  append([]Salon(nil), salons...),
		byPhone: make(map[string]int, len(callers)),
	}
	for _, c := range callers {
		key := phoneKey(c.Phone)
		if key == "" {
			continue
		}
		if idx, ok := d.byPhone[key]; ok {
			d.callers[idx] = c
			continue
		}
		d.byPhone[key] = len(d.callers)
		d.callers = append(d.callers, c)
	}
	for _, s := range d.salons {
		for _, b := range s.Barbiers {
			d.flat = append(d.flat, BarbierMatch{
				Barbier:      b,
				SalonID:      s.ID,
				SalonName:    s.Name,
				SalonAddress: s.Address,
			})
		}
	}
	return d
}

// LookupCaller finds a caller by phone number, ignoring formatting.
func (d *Directory) LookupCaller(phone string) (Caller, bool) {
	if d == nil {
		return Caller{}, false
	}
	idx, ok := d.byPhone[phoneKey(phone)]
	if !ok {
		return Caller{}, false
	}
	return d.callers[idx], true
}

// LookupBarbierByName resolves a spoken barbier name. Exact name or alias
// matches are tried first, then substring matches; the first hit in salon
// order wins.
func (d *Directory) LookupBarbierByName(name string) (BarbierMatch, bool) {
	if d == nil {
		return BarbierMatch{}, false
	}
	query := textutil.CollapseSpaces(textutil.Fold(name))
	if query == "" {
		return BarbierMatch{}, false
	}
	for _, m := range d.flat {
		for _, candidate := range m.names() {
			if candidate == query {
				return m, true
			}
		}
	}
	for _, m := range d.flat {
		for _, candidate := range m.names() {
			if strings.Contains(query, candidate) || (len(query) >= 3 && strings.Contains(candidate, query)) {
				return m, true
			}
		}
	}
	return BarbierMatch{}, false
}

// Salons returns the salons in load order.
func (d *Directory) Salons() []Salon {
	if d == nil {
		return nil
	}
	return append([]Salon(nil), d.salons...)
}

// Barbiers returns every barbier flattened in salon order.
func (d *Directory) Barbiers() []BarbierMatch {
	if d == nil {
		return nil
	}
	return append([]BarbierMatch(nil), d.flat...)
}

// Salon returns the salon with the given id.
func (d *Directory) Salon(id string) (Salon, bool) {
	if d == nil {
		return Salon{}, false
	}
	for _, s := range d.salons {
		if s.ID == id {
			return s, true
		}
	}
	return Salon{}, false
}

// FirstNames lists the first names of known callers in load order.
func (d *Directory) FirstNames() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.callers))
	for _, c := range d.callers {
		if first := c.FirstName(); first != "" {
			out = append(out, first)
		}
	}
	return out
}

func (m BarbierMatch) names() []string {
	out := make([]string, 0, 1+len(m.Barbier.Aliases))
	out = append(out, textutil.Fold(m.Barbier.Name))
	for _, alias := range m.Barbier.Aliases {
		if alias = textutil.Fold(strings.TrimSpace(alias)); alias != "" {
			out = append(out, alias)
		}
	}
	return out
}
