package letter

import (
	"errors"
	"strings"
	"testing"
)

func TestReadRequests(t *testing.T) {
	src := "\ufeffLang, civilite,prenom,nom,adresse,code_postal,ville,date_naissance,ville_naissance\n" +
		"fr,F,Marie,Curie,\"Rue de la Loi 16, bte 2\",1000,Bruxelles,07/11/1967,Varsovie\n" +
		",,,,,,,,\n" +
		"nl,H,Jan,Peeters,Meir 1,2000,Antwerpen,01/02/1980\n"

	reqs, err := ReadRequests(strings.NewReader(src))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}

	first := reqs[0]
	if first.Lang != French || first.Civility != Female {
		t.Errorf("unexpected lang/civility %q/%q", first.Lang, first.Civility)
	}
	if first.Address != "Rue de la Loi 16, bte 2" {
		t.Errorf("expected quoted address, got %q", first.Address)
	}
	if first.BirthCity != "Varsovie" {
		t.Errorf("expected birth city, got %q", first.BirthCity)
	}

	second := reqs[1]
	if second.Lang != Dutch || second.City != "Antwerpen" {
		t.Errorf("unexpected second request %+v", second)
	}
	if second.BirthCity != "" {
		t.Errorf("short row should leave optional fields empty, got %q", second.BirthCity)
	}
}

func TestReadRequests_InvalidRow(t *testing.T) {
	src := "prenom,nom,adresse,code_postal,ville,date_naissance\n" +
		"Marie,Curie,Rue 1,1000,Bruxelles,07/11/1967\n" +
		"Jan,,Meir 1,2000,Antwerpen,01/02/1980\n"

	_, err := ReadRequests(strings.NewReader(src))
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") || !strings.Contains(err.Error(), "nom") {
		t.Errorf("expected line number and field in error, got %q", err)
	}
}

func TestReadRequests_Empty(t *testing.T) {
	reqs, err := ReadRequests(strings.NewReader(""))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(reqs) != 0 {
		t.Errorf("expected no requests, got %d", len(reqs))
	}
}
