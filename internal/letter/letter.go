// Package letter models the erasure-request form and turns it into the
// placeholder mapping used to fill the Word template.
package letter

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lehagrefabien-commits/fatca-application/internal/substitute"
)

// Lang is a supported letter language.
type Lang string

const (
	French Lang = "fr"
	Dutch  Lang = "nl"
)

// Langs lists the supported languages.
var Langs = []Lang{French, Dutch}

// ParseLang reports whether s names a supported language.
func ParseLang(s string) (Lang, bool) {
	switch Lang(s) {
	case French, Dutch:
		return Lang(s), true
	}
	return "", false
}

// Civility selects the gendered wording of the letter.
type Civility string

const (
	Male   Civility = "H"
	Female Civility = "F"
)

// DateLayout is the dd/mm/yyyy layout used in the letters.
const DateLayout = "02/01/2006"

// Request holds the submitted form fields.
type Request struct {
	Lang     Lang
	Civility Civility

	FirstName  string
	LastName   string
	Address    string
	PostalCode string
	City       string
	BirthDate  string

	// Optional, used by newer template revisions.
	Country      string
	BirthCity    string
	BirthCountry string
}

// FromValues builds a Request from posted form values. Unknown languages fall
// back to French and anything other than "F" is treated as "H".
func FromValues(v url.Values) Request {
	get := func(key string) string { return strings.TrimSpace(v.Get(key)) }

	lang, ok := ParseLang(get("lang"))
	if !ok {
		lang = French
	}
	civ := Male
	if get("civilite") == string(Female) {
		civ = Female
	}
	return Request{
		Lang:         lang,
		Civility:     civ,
		FirstName:    get("prenom"),
		LastName:     get("nom"),
		Address:      get("adresse"),
		PostalCode:   get("code_postal"),
		City:         get("ville"),
		BirthDate:    get("date_naissance"),
		Country:      get("pays"),
		BirthCity:    get("ville_naissance"),
		BirthCountry: get("pays_naissance"),
	}
}

// ErrMissingFields is matched by *MissingFieldsError.
var ErrMissingFields = errors.New("missing required fields")

// MissingFieldsError names the required form fields that were blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFields, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingFields
}

// Validate checks that every required field is filled in.
func (r Request) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"prenom", r.FirstName},
		{"nom", r.LastName},
		{"adresse", r.Address},
		{"code_postal", r.PostalCode},
		{"ville", r.City},
		{"date_naissance", r.BirthDate},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

type wording struct {
	appel, soussigne, ne, resident string
}

func (r Request) wording() wording {
	if r.Lang == Dutch {
		return wording{"Geachte heer, mevrouw", "ondergetekende", "geboren", "fiscaal inwoner"}
	}
	if r.Civility == Female {
		return wording{"Madame, Monsieur", "soussignée", "née", "résidente fiscale"}
	}
	return wording{"Madame, Monsieur", "soussigné", "né", "résident fiscal"}
}

func defaultCountry(lang Lang) string {
	if lang == Dutch {
		return "België"
	}
	return "Belgique"
}

// Mapping returns the placeholder replacements for r, dated date.
func (r Request) Mapping(date time.Time) substitute.Mapping {
	country := r.Country
	if country == "" {
		country = defaultCountry(r.Lang)
	}
	w := r.wording()
	return substitute.Mapping{
		{Key: "{{NOM_PRENOM}}", Value: r.FirstName + " " + r.LastName},
		{Key: "{{PRENOM}}", Value: r.FirstName},
		{Key: "{{NOM}}", Value: r.LastName},
		{Key: "{{ADRESSE}}", Value: r.Address},
		{Key: "{{CP_VILLE}}", Value: r.PostalCode + " " + r.City},
		{Key: "{{VILLE}}", Value: r.City},
		{Key: "{{PAYS}}", Value: country},
		{Key: "{{LIEU}}", Value: r.City},
		{Key: "{{DATE}}", Value: date.Format(DateLayout)},
		{Key: "{{DATE_NAISSANCE}}", Value: r.BirthDate},
		{Key: "{{VILLE_NAISSANCE}}", Value: r.BirthCity},
		{Key: "{{PAYS_NAISSANCE}}", Value: r.BirthCountry},
		{Key: "{{APPEL}}", Value: w.appel},
		{Key: "{{SOUSSIGNE}}", Value: w.soussigne},
		{Key: "{{NE}}", Value: w.ne},
		{Key: "{{RESIDENT_FISCAL}}", Value: w.resident},
	}
}

// Vocabulary returns every placeholder a Request can fill.
func Vocabulary() []string {
	return Request{}.Mapping(time.Time{}).Keys()
}
