package directory

import "time"

// Seed returns the built-in reference data used when no directory file or
// database is configured.
func Seed() *Directory {
	return New(seedSalons(), seedCallers())
}

func seedSalons() []Salon {
	return []Salon{
		{
			ID:          "plateau",
			Name:        "Barbier du Plateau",
			Address:     "4521 rue Saint-Denis, Montréal",
			Phone:       "+15145550101",
			NotifyEmail: "plateau@barbiermarcel.ca",
			Barbiers: []Barbier{
				{Name: "Marco", Specialty: "coupe homme", Price: "30 $", Aliases: []string{"marcus"}},
				{Name: "Julien", Specialty: "taille de barbe", Price: "20 $", Aliases: []string{"jules"}},
			},
		},
		{
			ID:          "vieux-port",
			Name:        "Coiffure du Vieux-Port",
			Address:     "112 rue Saint-Paul Ouest, Montréal",
			Phone:       "+15145550102",
			NotifyEmail: "vieuxport@barbiermarcel.ca",
			Barbiers: []Barbier{
				{Name: "Sophie", Specialty: "coloration", Price: "60 $"},
				{Name: "Karim", Specialty: "rasage traditionnel", Price: "35 $", Aliases: []string{"kareem"}},
			},
		},
		{
			ID:          "rosemont",
			Name:        "Le Rasoir Rosemont",
			Address:     "3020 boulevard Rosemont, Montréal",
			Phone:       "+15145550103",
			NotifyEmail: "rosemont@barbiermarcel.ca",
			Barbiers: []Barbier{
				{Name: "Antoine", Specialty: "coupe et barbe", Price: "45 $", Aliases: []string{"tony"}},
				{Name: "Émilie", Specialty: "coupe enfant", Price: "20 $", Aliases: []string{"emy"}},
			},
		},
	}
}

func seedCallers() []Caller {
	return []Caller{
		{
			Phone:            "+15145551234",
			Name:             "Jean Tremblay",
			PreferredService: "coupe homme",
			PreferredBarber:  "Marco",
			LastVisit:        time.Date(2024, time.September, 12, 0, 0, 0, 0, time.UTC),
			Notes:            "Préfère un dégradé court.",
		},
		{
			Phone:            "+15145555678",
			Name:             "Marie Gagnon",
			PreferredService: "coloration",
			PreferredBarber:  "Sophie",
			LastVisit:        time.Date(2024, time.October, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			Phone:            "+14385559012",
			Name:             "Pierre Lavoie",
			PreferredService: "taille de barbe",
			PreferredBarber:  "Julien",
			LastVisit:        time.Date(2024, time.August, 28, 0, 0, 0, 0, time.UTC),
			Notes:            "Client depuis 2019.",
		},
	}
}
