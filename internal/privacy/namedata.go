package privacy

// NameHeuristics bundles the curated lookup data used by the consecutive-name
// confidence adjuster. The default bundle covers Belgian/French/Dutch usage;
// callers may supply their own locale data.
type NameHeuristics struct {
	// FalsePositiveBigrams holds institutional and legal word pairs that must
	// never be reported as person names. Keys are lowercase, accent-folded.
	FalsePositiveBigrams map[string]struct{}
	// FirstNames holds common first names; a bigram starting with one is
	// promoted from low to medium confidence. Keys are lowercase,
	// accent-folded.
	FirstNames map[string]struct{}
	// MaxWordLength rejects matches containing a word longer than this many
	// runes.
	MaxWordLength int
}

func setOf(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// DefaultNameHeuristics returns the built-in BE/FR/NL locale bundle
func DefaultNameHeuristics() *NameHeuristics {
	return &NameHeuristics{
		FalsePositiveBigrams: setOf(
			// European institutions
			"union europeenne", "commission europeenne", "parlement europeen",
			"conseil europeen", "conseil europe", "cour justice",
			"banque centrale", "comite europeen", "comite regions",
			"cour comptes", "mediateur europeen", "agence europeenne",

			// Belgian institutions
			"moniteur belge", "chambre representants", "conseil etat",
			"cour constitutionnelle", "cour cassation", "cour appel",
			"tribunal premiere", "tribunal commerce", "tribunal travail",
			"tribunal entreprise", "tribunal famille", "justice paix",
			"banque nationale", "autorite protection", "service public",
			"services publics", "region wallonne", "region bruxelloise",
			"region flamande", "communaute francaise", "communaute flamande",
			"communaute germanophone", "province liege", "province namur",
			"province hainaut", "province luxembourg", "province brabant",
			"province anvers", "province flandre",

			// French institutions
			"assemblee nationale", "senat francais", "conseil constitutionnel",
			"cour administrative", "tribunal administratif", "tribunal judiciaire",
			"tribunal correctionnel", "cour assises", "conseil prud",
			"autorite marches", "haute autorite",

			// Legal concepts
			"code civil", "code penal", "code travail", "code commerce",
			"code judiciaire", "droit commun", "droit europeen",
			"droit international", "droit public", "droit prive",
			"droit social", "droit fiscal", "droits homme",
			"droits fondamentaux", "libre circulation", "marche interieur",
			"marche unique", "ordre public", "interet general",
			"interet legitime", "bonne foi", "force majeure", "vice cache",
			"faute grave", "responsabilite civile", "base legale",
			"donnees personnelles", "donnees sensibles", "protection donnees",
			"vie privee", "secret professionnel",

			// International organisations
			"nations unies", "croix rouge", "amnesty international",
			"banque mondiale", "fonds monetaire", "organisation mondiale",
			"conseil securite",

			// Common titles
			"premier ministre", "directeur general", "secretaire general",
			"president directeur", "chef cabinet", "vice president",
			"porte parole",

			// Capitalised technical terms
			"intelligence artificielle", "apprentissage automatique",
			"machine learning", "deep learning", "open source", "big data",
			"cloud computing",

			// Generic place names
			"grand place", "place royale", "mont blanc", "saint germain",
			"saint denis",
		),
		FirstNames: setOf(
			// Common francophone male first names
			"jean", "pierre", "marc", "philippe", "michel",
			"jacques", "paul", "christian", "bernard", "patrick",
			"alain", "daniel", "claude", "andre", "francois",
			"thierry", "nicolas", "laurent", "david", "stephane",
			"eric", "frederic", "christophe", "olivier", "pascal",
			"julien", "thomas", "alexandre", "mathieu", "guillaume",
			"maxime", "antoine", "kevin", "jerome", "sebastien",
			"benoit", "arnaud", "damien", "cedric", "vincent",
			"yves", "georges", "louis", "charles", "henri",
			"rene", "albert", "joseph", "robert", "gerard",
			"bruno", "didier", "serge", "dominique", "luc",
			"hugues", "xavier", "quentin", "florian", "adrien",
			"romain", "hugo", "lucas", "nathan", "ethan",
			"gabriel", "raphael", "arthur", "leo", "adam",
			"noel", "gauthier", "martin", "simon", "emile",

			// Common francophone female first names
			"marie", "anne", "sophie", "nathalie", "isabelle",
			"christine", "catherine", "monique", "brigitte", "valerie",
			"sylvie", "francoise", "nicole", "martine", "veronique",
			"patricia", "sandrine", "laurence", "caroline", "virginie",
			"aurelie", "stephanie", "celine", "emilie", "julie",
			"sarah", "laura", "camille", "manon", "chloe",
			"lea", "emma", "clara", "alice", "charlotte",
			"juliette", "louise", "margaux", "helene", "lucie",
			"pauline", "mathilde", "marine", "elise", "amelie",
			"elodie", "delphine", "audrey", "florence", "corinne",
			"madeleine", "therese", "jeanne", "marguerite", "denise",

			// Common Dutch first names (Flanders, Netherlands)
			"jan", "pieter", "johannes", "hendrik", "willem",
			"cornelis", "gerrit", "dirk", "bart", "wim",
			"koen", "stijn", "wouter", "jeroen", "sander",
			"maarten", "joost", "ruben", "lars", "niels",
			"bram", "thijs", "daan", "sem", "liam",
			"jef", "hans", "frank", "peter", "erik",
			"geert", "filip", "tom", "tim", "steven",
			"maria", "els", "ann", "katrien", "joke",
			"lies", "sofie", "leen", "inge", "hilde",
			"griet", "lotte", "femke", "anke", "nele",
			"sara", "jana", "lien", "karen",

			// Mixed / international first names common in Belgium
			"alex", "sam", "robin", "kim", "morgan",
			"jordan", "maxim", "noah", "lina", "yasmine",
			"mehdi", "karim", "fatima", "mohammed", "ahmed",
			"youssef", "rachid", "said", "abdel", "omar",
		),
		MaxWordLength: 25,
	}
}
