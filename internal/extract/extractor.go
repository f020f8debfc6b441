package extract

import (
	"regexp"
	"strings"

	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/textutil"
)

type barberRule struct {
	re     *regexp.Regexp
	barber string
	salon  string
}

type salonRule struct {
	re    *regexp.Regexp
	salon string
}

type knownNameRule struct {
	re   *regexp.Regexp
	name string
}

// Extractor holds the pattern tables. The static tables are shared; the
// barbier, salon and client-name tables come from the directory.
type Extractor struct {
	barbers    []barberRule
	salons     []salonRule
	knownNames []knownNameRule
	stop       map[string]bool
}

// New builds an Extractor whose barbier, salon and client-name patterns come
// from dir. A nil directory yields an extractor with only the static tables.
func New(dir *directory.Directory) *Extractor {
	e := &Extractor{stop: map[string]bool{}}
	for _, m := range dir.Barbiers() {
		names := append([]string{m.Barbier.Name}, m.Barbier.Aliases...)
		for _, n := range names {
			folded := textutil.CollapseSpaces(textutil.Fold(n))
			if folded == "" {
				continue
			}
			e.stop[folded] = true
			e.barbers = append(e.barbers, barberRule{
				re:     wordPattern(folded),
				barber: m.Barbier.Name,
				salon:  m.SalonName,
			})
		}
	}
	for _, s := range dir.Salons() {
		alts := []string{regexp.QuoteMeta(textutil.Fold(s.Name))}
		if s.ID != "" {
			id := regexp.QuoteMeta(textutil.Fold(s.ID))
			alts = append(alts, strings.ReplaceAll(id, "-", "[- ]"))
		}
		e.salons = append(e.salons, salonRule{
			re:    regexp.MustCompile(`\b(` + strings.Join(alts, "|") + `)\b`),
			salon: s.Name,
		})
	}
	for _, first := range dir.FirstNames() {
		folded := textutil.Fold(first)
		if len(folded) < 2 {
			continue
		}
		e.knownNames = append(e.knownNames, knownNameRule{re: wordPattern(folded), name: textutil.TitleCase(first)})
	}
	return e
}

func wordPattern(folded string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(folded) + `\b`)
}

// Extract scans caller text and fills every field it can. Empty or
// unrecognized text yields an empty Context with IntentGeneral.
func (e *Extractor) Extract(text string) Context {
	folded := textutil.CollapseSpaces(textutil.Fold(text))
	ctx := Context{Intent: IntentGeneral}
	if folded == "" {
		return ctx
	}
	ctx.Intent = ClassifyIntent(folded)

	for _, r := range serviceRules {
		if r.re.MatchString(folded) {
			ctx.Service, ctx.Price = r.service, r.price
			break
		}
	}

	impliedTime := ""
	for _, r := range dateRules {
		if r.re.MatchString(folded) {
			ctx.Date, impliedTime = r.date, r.time
			break
		}
	}

	for _, r := range timeRules {
		m := r.re.FindStringSubmatch(folded)
		if m == nil {
			continue
		}
		if r.value != "" {
			ctx.Time = r.value
			break
		}
		if v, ok := r.format(m); ok {
			ctx.Time = v
			break
		}
	}
	if ctx.Time == "" {
		ctx.Time = impliedTime
	}

	ctx.Barber, ctx.Salon = e.barber(folded)
	if ctx.Salon == "" {
		for _, r := range e.salons {
			if r.re.MatchString(folded) {
				ctx.Salon = r.salon
				break
			}
		}
	}

	ctx.ClientName = e.clientName(text, folded)

	ctx.Urgent = urgentRe.MatchString(folded)
	ctx.Uncertain = uncertainRe.MatchString(folded)
	ctx.Frustrated = frustratedRe.MatchString(folded)
	return ctx
}

func (e *Extractor) barber(folded string) (string, string) {
	for _, r := range e.barbers {
		if r.re.MatchString(folded) {
			return r.barber, r.salon
		}
	}
	if noPreferenceRe.MatchString(folded) {
		return FirstAvailable, ""
	}
	return "", ""
}

func (e *Extractor) clientName(text, folded string) string {
	lower := textutil.CollapseSpaces(textutil.Lower(text))
	for _, re := range namePatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if name, ok := nameCandidate(m[1], e.stop); ok {
				return name
			}
		}
	}
	for _, r := range e.knownNames {
		if r.re.MatchString(folded) {
			return r.name
		}
	}
	return ""
}
