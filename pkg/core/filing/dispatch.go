package filing

import (
	"fmt"

	"grantintel/pkg/models"
)

// marker local names that identify which form variant a <ReturnData> payload
// carries. Exactly one must be present; any other marker present alongside
// it means the document is internally inconsistent (e.g. a 990-PF document
// that also carries a 990 marker) and is rejected fail-closed.
const (
	marker990   = "IRS990"
	marker990PF = "IRS990PF"
	marker990EZ = "IRS990EZ"
)

var variantMarkers = map[models.FormVariant]string{
	models.Form990:   marker990,
	models.Form990PF: marker990PF,
	models.Form990EZ: marker990EZ,
}

// Parse dispatches a raw filing to the parser for its variant. declared may
// be nil to request auto-detection from the document's own markers. The
// parser selected accepts only the variant it is built for (Invariant 3);
// a foreign marker present anywhere in the document fails closed with
// MismatchedFormKind, and a malformed root fails with InvalidFiling.
func Parse(raw []byte, declared *models.FormVariant) (*models.Filing, error) {
	root, err := parseXML(raw)
	if err != nil {
		return nil, models.NewError(models.KindInvalidFiling, "malformed XML at document root", err)
	}

	present := map[models.FormVariant]bool{}
	for variant, marker := range variantMarkers {
		if _, ok := root.find(marker); ok {
			present[variant] = true
		}
	}

	variant, err := resolveVariant(present, declared)
	if err != nil {
		return nil, err
	}

	switch variant {
	case models.Form990:
		return parseForm990(root)
	case models.Form990PF:
		return parseForm990PF(root)
	case models.Form990EZ:
		return parseForm990EZ(root)
	default:
		return nil, models.NewError(models.KindInvalidFiling, "no recognized form marker found", nil)
	}
}

func resolveVariant(present map[models.FormVariant]bool, declared *models.FormVariant) (models.FormVariant, error) {
	count := len(present)

	if declared != nil {
		if !present[*declared] {
			return "", models.NewError(models.KindMismatchedForm,
				fmt.Sprintf("declared variant %s has no matching marker in document", *declared), nil)
		}
		if count > 1 {
			return "", models.NewError(models.KindMismatchedForm,
				fmt.Sprintf("document carries markers for %d form variants, expected only %s", count, *declared), nil)
		}
		return *declared, nil
	}

	if count == 0 {
		return "", models.NewError(models.KindInvalidFiling, "no form marker present in document", nil)
	}
	if count > 1 {
		return "", models.NewError(models.KindMismatchedForm, "document carries markers for multiple form variants", nil)
	}
	for v := range present {
		return v, nil
	}
	return "", models.NewError(models.KindInvalidFiling, "unreachable: no variant resolved", nil)
}
