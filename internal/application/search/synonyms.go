package search

import ltypes "github.com/leaselens/leaselens/pkg/types/lease"

// legalSynonyms maps common lease vocabulary to interchangeable terms, keyed
// by language code. Lists are ordered by preference; expansion takes the
// first MaxSynonymsPerWord of each.
var legalSynonyms = map[string]map[string][]string{
	ltypes.LangEnglish: {
		"lease":       {"rental", "agreement", "contract", "tenancy"},
		"landlord":    {"lessor", "owner", "management"},
		"tenant":      {"lessee", "renter", "occupant"},
		"rent":        {"payment", "rental"},
		"deposit":     {"security", "bond"},
		"evict":       {"remove", "dispossess"},
		"eviction":    {"removal", "dispossession", "lockout"},
		"repair":      {"maintenance", "fix"},
		"repairs":     {"maintenance", "upkeep"},
		"apartment":   {"unit", "dwelling", "premises"},
		"fee":         {"charge", "penalty"},
		"sublet":      {"sublease", "assign"},
		"terminate":   {"end", "cancel"},
		"termination": {"cancellation", "ending"},
		"notice":      {"notification", "warning"},
		"guest":       {"visitor", "occupant"},
		"illegal":     {"unlawful", "prohibited", "void"},
		"broken":      {"damaged", "defective"},
		"heat":        {"heating"},
		"mold":        {"mildew"},
		"pest":        {"vermin", "infestation"},
	},
	ltypes.LangSpanish: {
		"contrato":     {"arrendamiento", "alquiler"},
		"arrendador":   {"propietario", "dueño"},
		"inquilino":    {"arrendatario", "ocupante"},
		"renta":        {"alquiler", "pago"},
		"deposito":     {"fianza", "garantia"},
		"desalojo":     {"expulsion", "lanzamiento"},
		"reparacion":   {"mantenimiento", "arreglo"},
		"apartamento":  {"vivienda", "unidad"},
		"multa":        {"cargo", "recargo"},
		"subarriendo":  {"subalquiler"},
		"ilegal":       {"prohibido", "nulo"},
		"calefaccion":  {"calentamiento"},
		"notificacion": {"aviso"},
	},
	ltypes.LangFrench: {
		"bail":         {"location", "contrat"},
		"proprietaire": {"bailleur"},
		"locataire":    {"occupant", "preneur"},
		"loyer":        {"paiement"},
		"caution":      {"depot", "garantie"},
		"expulsion":    {"eviction"},
		"reparation":   {"entretien"},
		"appartement":  {"logement", "unite"},
		"frais":        {"charge", "penalite"},
		"illegal":      {"interdit", "nul"},
		"chauffage":    {"chaleur"},
		"preavis":      {"notification", "avis"},
	},
	ltypes.LangGerman: {
		"mietvertrag": {"mietvereinbarung", "vertrag"},
		"vermieter":   {"eigentumer", "hausverwaltung"},
		"mieter":      {"bewohner"},
		"miete":       {"zahlung", "mietzins"},
		"kaution":     {"sicherheit", "pfand"},
		"raumung":     {"kundigung"},
		"reparatur":   {"instandhaltung", "wartung"},
		"wohnung":     {"einheit", "unterkunft"},
		"gebuhr":      {"strafe", "zuschlag"},
		"illegal":     {"unzulassig", "nichtig"},
		"heizung":     {"warme"},
		"mahnung":     {"benachrichtigung"},
	},
}

// synonymsFor returns up to max synonyms for word in the given language.
// Unknown languages fall back to English.
func synonymsFor(word, language string, max int) []string {
	table, ok := legalSynonyms[language]
	if !ok {
		table = legalSynonyms[ltypes.LangEnglish]
	}
	syns := table[word]
	if len(syns) > max {
		syns = syns[:max]
	}
	return syns
}
