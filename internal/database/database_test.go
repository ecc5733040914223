package database

import (
	"strings"
	"testing"
)

func TestNormaliseForcesParseTime(t *testing.T) {
	got, err := normalise("trail:pw@tcp(db:3306)/trail")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"parseTime=true"} {
		if !strings.Contains(got, want) {
			t.Fatalf("%q missing %q", got, want)
		}
	}
}

func TestNormaliseRejectsGarbage(t *testing.T) {
	if _, err := normalise("::not a dsn::"); err == nil {
		t.Fatal("want error")
	}
}
