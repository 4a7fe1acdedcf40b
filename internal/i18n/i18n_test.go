package i18n

import "testing"

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("fr-FR,fr;q=0.8") != "fr" {
		t.Fatalf("expected fr")
	}
	if DetectLanguage("") != "en" {
		t.Fatalf("expected default en")
	}
	if DetectLanguage("es-ES") != "en" {
		t.Fatalf("expected en fallback for unsupported language")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("fr", "required") != "Requis" {
		t.Fatalf("expected Requis")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to en translation if exists
	if T("es", "required") != "Required" {
		t.Fatalf("expected en fallback for es lang")
	}
}
