package i18n

import "strings"

// Minimal message catalog for the admin UI. English is the default; French
// is kept for parity with the validation codes surfaced in forms.

var translations = map[string]map[string]string{
	"en": {
		"required":          "Required",
		"must_be_positive":  "Must be greater than zero",
		"out_of_range":      "Out of range",
		"login_failed":      "Invalid username or password",
		"register_ok":       "Account created, you can sign in now",
		"cart_added":        "Added to cart",
		"cart_cleared":      "Cart cleared",
		"cart_empty":        "Your cart is empty",
		"purchase_ok":       "Purchase successful! Your cart has been cleared.",
		"purchase_failed":   "Purchase failed. Your cart was left untouched.",
		"purchase_partial":  "Purchase recorded, but the inventory update failed. Please check stock levels manually.",
		"rfq_created":       "Request for quotation created",
		"quote_submitted":   "Quote submitted",
		"quote_bad_prices":  "Please enter valid prices for all products",
		"quote_already":     "This request already has a quote",
		"approved_ok":       "Quotation approved successfully",
		"approved_partial":  "Quotation approved, but inventory update failed. Please check the inventory manually.",
		"declined_ok":       "Quotation declined",
		"product_created":   "Product created successfully",
		"product_updated":   "Product updated successfully",
		"product_deleted":   "Product deleted successfully",
		"stock_added":       "Stock recorded",
		"forbidden":         "You are not allowed to perform this action",
	},
	"fr": {
		"required":          "Requis",
		"must_be_positive":  "Doit être supérieur à zéro",
		"out_of_range":      "Hors limites",
		"login_failed":      "Identifiant ou mot de passe invalide",
		"register_ok":       "Compte créé, vous pouvez vous connecter",
		"cart_added":        "Ajouté au panier",
		"cart_cleared":      "Panier vidé",
		"cart_empty":        "Votre panier est vide",
		"purchase_ok":       "Achat effectué ! Votre panier a été vidé.",
		"purchase_failed":   "Achat impossible. Votre panier est intact.",
		"purchase_partial":  "Achat enregistré mais la mise à jour du stock a échoué. Vérifiez le stock manuellement.",
		"rfq_created":       "Demande de devis créée",
		"quote_submitted":   "Devis envoyé",
		"quote_bad_prices":  "Saisissez des prix valides pour tous les produits",
		"quote_already":     "Cette demande a déjà un devis",
		"approved_ok":       "Devis approuvé",
		"approved_partial":  "Devis approuvé mais la mise à jour du stock a échoué. Vérifiez le stock manuellement.",
		"declined_ok":       "Devis refusé",
		"product_created":   "Produit créé",
		"product_updated":   "Produit mis à jour",
		"product_deleted":   "Produit supprimé",
		"stock_added":       "Stock enregistré",
		"forbidden":         "Action non autorisée",
	},
}

// T returns the translation of code for lang, falling back to English, then
// to the code itself so missing entries stay visible instead of blank.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := translations["en"][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	h := strings.ToLower(header)
	for _, lang := range []string{"en", "fr"} {
		if strings.HasPrefix(h, lang) || strings.Contains(h, ","+lang) || strings.Contains(h, " "+lang) {
			return lang
		}
	}
	return "en"
}
