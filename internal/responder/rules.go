package responder

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/extract"
	"github.com/wolfman30/marcel-receptionist/internal/textutil"
)

// IdentityQuestion is asked to a recognized number before anything personal
// is said.
const IdentityQuestion = "Bonjour! À qui ai-je le plaisir de parler?"

// Patterns run against folded text.
var (
	bookingFamily  = regexp.MustCompile(`\brendez[- ]vous\b|\brdv\b|\breserv\w*|\bprendre (une )?place\b|\bbook\w*|\bune place\b`)
	serviceFamily  = regexp.MustCompile(`\bcoupe (et|avec|pis) (la |une |ma )?barbe\b|\brasage\b|\braser\b|\bcolorations?\b|\bteintures?\b|\benfants?\b|\bfils\b|\bfille\b`)
	barbeFamily    = regexp.MustCompile(`\bbarbe\b|\bmoustache\b|\bbouc\b`)
	coupeFamily    = regexp.MustCompile(`\bcoupe\b|\bcouper\b|\bcheveux\b|\bdegrade\b|\bfade\b`)
	timeFamily     = regexp.MustCompile(`\b\d{1,2} ?h\b|\b\d{1,2} ?h ?\d{2}\b|\b\d{1,2}:\d{2}\b|\bheures?\b|\bmidi\b|\bmatin\b|\bsoir\b|\bapres[- ]midi\b|\bavant[- ]midi\b`)
	dateFamily     = regexp.MustCompile(`\bdemain\b|\baujourd'hui\b|\btantot\b|\blundi\b|\bmardi\b|\bmercredi\b|\bjeudi\b|\bvendredi\b|\bsamedi\b|\bdimanche\b|\bsemaine\b`)
	stopFamily     = regexp.MustCompile(`\bc'est tout\b|\blaisse (faire|tomber)\b|\bau revoir\b|\bbye\b|\bnon merci\b|\boubliez? (ca|ça)\b|\bannul\w*|\bpas besoin\b`)
	greetingFamily = regexp.MustCompile(`\bbonjour\b|\ballo\b|\bsalut\b|\bbonsoir\b|\bhello\b|\bhi\b`)
	thanksFamily   = regexp.MustCompile(`\bmerci\b|\bparfait\b|\bd'accord\b|\bok\b|\bsuper\b|\bexcellent\b|\boui\b|\bcorrect\b|\bca marche\b|\bc'est bon\b`)
	pricingAsk     = regexp.MustCompile(`\bcombien\b|\bprix\b|\btarifs?\b|\bcoute\b|\bcher\b`)
	cancelFamily   = regexp.MustCompile(`\bannul\w*|\bcancel\w*`)
)

const goodbye = "D'accord, pas de problème. Merci d'avoir appelé Marcel, à bientôt!"

const serviceMenu = "coupe homme, taille de barbe, coupe et barbe, rasage traditionnel, coloration ou coupe enfant"

// Rules is the deterministic last tier. It always produces a reply.
type Rules struct {
	dir        *directory.Directory
	firstNames []*regexp.Regexp
}

// NewRules builds the rule engine over the directory's salons and callers.
func NewRules(dir *directory.Directory) *Rules {
	r := &Rules{dir: dir}
	for _, name := range dir.FirstNames() {
		folded := textutil.Fold(name)
		if folded == "" {
			continue
		}
		r.firstNames = append(r.firstNames, regexp.MustCompile(`\b`+regexp.QuoteMeta(folded)+`\b`))
	}
	return r
}

// Attempt implements Strategy.
func (r *Rules) Attempt(_ context.Context, p Prompt) (string, error) {
	return r.Reply(p), nil
}

// Reply walks the decision tree for one utterance.
func (r *Rules) Reply(p Prompt) string {
	u := textutil.Fold(p.Utterance)
	prefix := ""
	if p.Current.Frustrated {
		prefix = "Toutes mes excuses pour la confusion. "
	}

	if p.Caller != nil && !p.IdentityConfirmed && greetingFamily.MatchString(u) {
		return prefix + IdentityQuestion
	}

	// "annulez le rendez-vous" mentions a booking without asking for one.
	if cancelFamily.MatchString(u) {
		return prefix + goodbye
	}

	k := p.Known
	switch {
	case bookingFamily.MatchString(u):
		return prefix + r.progress(p, "Avec plaisir! ")
	case serviceFamily.MatchString(u):
		return prefix + r.progress(p, serviceAck(k))
	case barbeFamily.MatchString(u):
		return prefix + r.progress(p, serviceAck(k))
	case coupeFamily.MatchString(u):
		return prefix + r.progress(p, serviceAck(k))
	case timeFamily.MatchString(u) && k.Time != "":
		return prefix + r.progress(p, spokenTime(k.Time)+", c'est noté. ")
	case dateFamily.MatchString(u) && k.Date != "":
		return prefix + r.progress(p, upperFirst(k.Date)+", c'est noté. ")
	case r.mentionsKnownClient(u):
		return prefix + r.progress(p, r.welcomeBack(p))
	case stopFamily.MatchString(u):
		return prefix + goodbye
	case greetingFamily.MatchString(u):
		return prefix + r.greeting(p)
	case thanksFamily.MatchString(u):
		return prefix + r.progress(p, "")
	case pricingAsk.MatchString(u):
		return prefix + r.progress(p, r.priceList()+" ")
	default:
		return prefix + r.progress(p, "")
	}
}

// progress acknowledges, then either confirms or asks for the next missing
// slot. It never asks for a slot that is already known.
func (r *Rules) progress(p Prompt, ack string) string {
	k := p.Known
	if p.Caller != nil && !p.IdentityConfirmed {
		if k.Complete() {
			return ack + "Avant de confirmer, à qui ai-je le plaisir de parler?"
		}
		return ack + r.question(p)
	}
	if k.Complete() {
		return ack + r.confirmation(p)
	}
	return ack + r.question(p)
}

func (r *Rules) question(p Prompt) string {
	k := p.Known
	personal := p.Caller != nil && p.IdentityConfirmed
	switch k.NextMissing() {
	case extract.SlotService:
		q := "Quel service désirez-vous? Nous offrons " + serviceMenu + "."
		if personal && p.Caller.PreferredService != "" {
			q += fmt.Sprintf(" La dernière fois, c'était %s.", withArticle(p.Caller.PreferredService))
		}
		return q
	case extract.SlotDate:
		if k.Urgent {
			return "Nous pouvons vous recevoir dès aujourd'hui. Quel jour vous conviendrait?"
		}
		return "Pour quel jour aimeriez-vous venir?"
	case extract.SlotTime:
		if k.Urgent {
			return "Notre première disponibilité est à 9h. À quelle heure vous conviendrait?"
		}
		return "À quelle heure vous conviendrait?"
	case extract.SlotBarber:
		q := "Avec quel barbier? " + r.barberChoices(k) + ", ou le premier disponible."
		if personal && p.Caller.PreferredBarber != "" {
			q = fmt.Sprintf("Avec %s, comme d'habitude, ou un autre barbier?", p.Caller.PreferredBarber)
		}
		return q
	}
	return r.confirmation(p)
}

func (r *Rules) confirmation(p Prompt) string {
	k := p.Known
	var b strings.Builder
	b.WriteString("C'est noté")
	if name := firstWord(k.ClientName); name != "" {
		b.WriteString(", " + name)
	}
	fmt.Fprintf(&b, ": rendez-vous confirmé pour %s %s %s", withArticle(k.Service), k.Date, timePhrase(k.Time))
	if k.Barber == extract.FirstAvailable {
		b.WriteString(" avec le premier barbier disponible")
	} else {
		b.WriteString(" avec " + k.Barber)
	}
	if k.Salon != "" {
		b.WriteString(", au salon " + k.Salon)
	}
	if k.Price != "" {
		b.WriteString(", pour " + k.Price)
	}
	b.WriteString(". À bientôt!")
	return b.String()
}

func (r *Rules) greeting(p Prompt) string {
	if p.Caller != nil && p.IdentityConfirmed {
		return r.progress(p, fmt.Sprintf("Bonjour %s! ", p.Caller.FirstName()))
	}
	if len(p.Known.Known()) > 0 {
		return r.progress(p, welcome(r.dir.Salons()))
	}
	return Welcome(r.dir.Salons())
}

// Welcome is the opening line for a caller Marcel does not know.
func Welcome(salons []directory.Salon) string {
	return welcome(salons) + "Comment puis-je vous aider?"
}

func welcome(salons []directory.Salon) string {
	names := make([]string, 0, len(salons))
	for _, s := range salons {
		names = append(names, s.Name)
	}
	msg := "Bonjour et bienvenue chez Marcel! "
	if len(names) > 0 {
		msg += "Nous avons " + countWord(len(names)) + " salons: " + joinFrench(names) + ". "
	}
	return msg
}

func (r *Rules) welcomeBack(p Prompt) string {
	if p.Caller != nil && p.IdentityConfirmed {
		return fmt.Sprintf("Ah, bonjour %s! Content de vous entendre. ", p.Caller.FirstName())
	}
	if name := firstWord(p.Known.ClientName); name != "" {
		return fmt.Sprintf("Enchanté, %s! ", name)
	}
	return ""
}

func (r *Rules) mentionsKnownClient(folded string) bool {
	for _, re := range r.firstNames {
		if re.MatchString(folded) {
			return true
		}
	}
	return false
}

func (r *Rules) barberChoices(k extract.Context) string {
	var names []string
	for _, s := range r.dir.Salons() {
		if k.Salon != "" && s.Name != k.Salon {
			continue
		}
		for _, b := range s.Barbiers {
			names = append(names, b.Name)
		}
	}
	if len(names) == 0 {
		return "Vous avez une préférence"
	}
	return "Nous avons " + strings.Join(names, ", ")
}

func (r *Rules) priceList() string {
	return "Nos prix: coupe homme 30 $, taille de barbe 20 $, coupe et barbe 45 $, rasage traditionnel 35 $, coloration 60 $ et coupe enfant 20 $."
}

func serviceAck(k extract.Context) string {
	if k.Service == "" {
		return ""
	}
	if k.Price == "" {
		return upperFirst(withArticle(k.Service)) + ", très bien. "
	}
	return fmt.Sprintf("%s, c'est %s. ", upperFirst(withArticle(k.Service)), k.Price)
}

// withArticle prefixes a service with its indefinite article.
func withArticle(service string) string {
	if strings.HasPrefix(service, "rasage") {
		return "un " + service
	}
	return "une " + service
}

func spokenTime(t string) string {
	switch t {
	case "matin":
		return "Dans la matinée"
	case "après-midi":
		return "En après-midi"
	case "soir":
		return "En soirée"
	case "midi":
		return "À midi"
	default:
		return "À " + t
	}
}

func timePhrase(t string) string {
	r := []rune(spokenTime(t))
	return strings.ToLower(string(r[0])) + string(r[1:])
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func firstWord(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func countWord(n int) string {
	switch n {
	case 1:
		return "un"
	case 2:
		return "deux"
	case 3:
		return "trois"
	case 4:
		return "quatre"
	case 5:
		return "cinq"
	default:
		return fmt.Sprint(n)
	}
}

func joinFrench(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " et " + items[len(items)-1]
	}
}
