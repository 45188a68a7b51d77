package system

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	sub := Submission{
		Name:    "Jean <Dupont>",
		Email:   "jean@example.fr",
		Subject: "Devis & délais",
		Message: "ligne 1\nligne 2\nligne 3",
	}
	out := Render(sub, "Signed")

	for _, want := range []string{
		"Nom: Jean <Dupont>",
		"Email: jean@example.fr",
		"Sujet: Devis & délais",
		"Message:\nligne 1\nligne 2\nligne 3",
		"---\nSigned",
	} {
		if !strings.Contains(out.Text, want) {
			t.Errorf("text body missing %q:\n%s", want, out.Text)
		}
	}
	if strings.Contains(out.Text, "<br>") {
		t.Error("text body has <br>")
	}

	for _, want := range []string{
		"<strong>Nom:</strong> Jean <Dupont>",
		`<a href="mailto:jean@example.fr">jean@example.fr</a>`,
		"<strong>Sujet:</strong> Devis & délais",
		"ligne 1<br>ligne 2<br>ligne 3",
		"<p>Signed</p>",
	} {
		if !strings.Contains(out.HTML, want) {
			t.Errorf("html body missing %q:\n%s", want, out.HTML)
		}
	}
}

func TestRenderIsPure(t *testing.T) {
	a := Render(validSubmission, "x")
	b := Render(validSubmission, "x")
	if a != b {
		t.Error("Render is not deterministic")
	}
}
