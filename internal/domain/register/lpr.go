package register

import (
	"math/rand/v2"
	"time"

	"cdef_data_generator/internal/domain/dataset"
)

// lpr3DateLayout renders dates like "05Mar2020".
const lpr3DateLayout = "02Jan2006"

var (
	diagnosisTypes = []string{"A", "B", "H", "M", "G"}
	alcaCodes      = []string{"ALCA00", "ALCA10", "ALCA20", "ALCA30", "ALCA40"}
)

// anyPNR picks any known person, making sure the frame's year is populated.
func anyPNR(f *Frame) (dataset.Column, error) {
	f.env.Persons.EnsureYearGenerated(f.Year)
	return nullable(f, dataset.String, func(_ *rand.Rand, _ int) (any, bool) {
		return f.env.Persons.RandomID()
	})
}

// linkedContact attributes a contact to each row's person, reusing one the
// person already has.
func linkedContact(personColumn string) Rule {
	return func(f *Frame) (dataset.Column, error) {
		ids, err := f.strings(personColumn)
		if err != nil {
			return dataset.Column{}, err
		}
		return column(f, dataset.String, func(_ *rand.Rand, row int) string {
			return f.env.Contacts.GetOrCreate(ids[row], f.Year)
		})
	}
}

// existingContact references contacts minted by an earlier register, or
// fresh unlinked ids when none exist yet.
func existingContact(f *Frame) (dataset.Column, error) {
	return column(f, dataset.String, func(_ *rand.Rand, _ int) string {
		if f.env.Contacts.Len() > 0 {
			return f.env.Contacts.PickAnyExisting()
		}
		return f.env.Contacts.MintUnlinked()
	})
}

func unlinkedContact(f *Frame) (dataset.Column, error) {
	return column(f, dataset.String, func(_ *rand.Rand, _ int) string {
		return f.env.Contacts.MintUnlinked()
	})
}

// contactDate reads the date of the contact in contactColumn.
func contactDate(contactColumn, layout string) Rule {
	return func(f *Frame) (dataset.Column, error) {
		ids, err := f.strings(contactColumn)
		if err != nil {
			return dataset.Column{}, err
		}
		return nullable(f, dataset.String, func(_ *rand.Rand, row int) (any, bool) {
			c, ok := f.env.Contacts.Get(ids[row])
			if !ok {
				return nil, false
			}
			return c.ContactDate.Format(layout), true
		})
	}
}

func lprAdmRules() *Ruleset {
	rules := map[string]Rule{
		"PNR":        anyPNR,
		"RECNUM":     linkedContact("PNR"),
		"D_INDDTO":   contactDate("RECNUM", time.DateOnly),
		"C_ADIAG":    diagnosis(false),
		"C_KOM":      padded(3, 100, 999),
		"C_PATTYPE":  choice("0", "1", "2", "3"),
		"C_SPEC":     padded(3, 1, 100),
		"V_ALDDG":    intRange(dataset.Int32, 0, 36_500),
		"V_ALDER":    intRange(dataset.Int32, 0, 100),
		"V_INDMINUT": intRange(dataset.Int32, 0, 60),
		"V_SENGDAGE": intRange(dataset.Int32, 0, 100),
		"VERSION":    version,
	}
	withRules(rules, padded(4, 1000, 9999), "C_AFD", "C_HAFD", "K_AFD", "C_HSGH", "C_SGH")
	withRules(rules, choice("A", "B", "C", "D", "E"), "C_HENM", "C_INDM", "C_KONTAARS", "C_UDM")
	withRules(rules, choice("V", "U"), "CPRTJEK", "CPRTYPE")
	withRules(rules, dateInYear(time.DateOnly), "D_HENDTO", "D_UDDTO")
	withRules(rules, intRange(dataset.Int32, 0, 24), "V_INDTIME", "V_UDTIME")
	return &Ruleset{Name: lprAdm, rules: rules}
}

func lprDiagRules() *Ruleset {
	rules := map[string]Rule{
		"RECNUM":        existingContact,
		"C_DIAGTYPE":    choice(diagnosisTypes...),
		"LEVERANCEDATO": dateIn(2000, 2023, time.DateOnly),
		"VERSION":       version,
	}
	withRules(rules, diagnosis(false), "C_DIAG", "C_TILDIAG")
	return &Ruleset{Name: lprDiag, rules: rules}
}

func lprBesRules() *Ruleset {
	rules := map[string]Rule{
		"RECNUM":  existingContact,
		"VERSION": version,
	}
	withRules(rules, dateIn(2000, 2023, time.DateOnly), "D_AMBDTO", "LEVERANCEDATO")
	return &Ruleset{Name: lprBes, rules: rules}
}

func lpr3KontakterRules() *Ruleset {
	rules := map[string]Rule{
		"CPR":             anyPNR,
		"DW_EK_KONTAKT":   linkedContact("CPR"),
		"DW_EK_FORLOEB":   unlinkedContact,
		"dato_start":      contactDate("DW_EK_KONTAKT", lpr3DateLayout),
		"aktionsdiagnose": diagnosis(true),
		"prioritet":       choice("ATA1", "ATA2", "ATA3"),
	}
	withRules(rules, padded(6, 100_000, 999_999), "SORENHED_IND", "SORENHED_HEN", "SORENHED_ANS")
	withRules(rules, dateInYear(lpr3DateLayout), "dato_slut", "dato_behandling_start", "dato_indberetning")
	withRules(rules, clock(), "tidspunkt_start", "tidspunkt_slut", "tidspunkt_behandling_start")
	withRules(rules, choice(alcaCodes...), "kontaktaarsag", "kontakttype", "henvisningsaarsag", "henvisningsmaade")
	withRules(rules, choice("PAS", "OPUS", "COSMIC", "EPJ", "MidtEPJ"), "lprindberetningssystem", "lprindberetningssytem")
	return &Ruleset{Name: lpr3Kontakter, rules: rules}
}

func lpr3DiagnoserRules() *Ruleset {
	rules := map[string]Rule{
		"DW_EK_KONTAKT":          existingContact,
		"senere_afkraeftet":      flag(0.1),
		"lprindberetningssystem": choice("LPR3", "OPUS", "COSMIC", "EPJ", "MidtEPJ"),
	}
	withRules(rules, diagnosis(true), "diagnosekode", "diagnosekode_parent")
	withRules(rules, choice(diagnosisTypes...), "diagnosetype", "diagnosetype_parent")
	return &Ruleset{Name: lpr3Diagnoser, rules: rules}
}
