package http

import (
	"fmt"

	"budgettracker/internal/core"
)

const fallbackValidationMessage = "Dati non validi"

// validationMessages holds the Italian text shown for each rejected field.
var validationMessages = map[string]map[core.Reason]string{
	core.FieldKind: {
		core.ReasonInvalidKind: "Il tipo deve essere 'income' o 'expense'",
	},
	core.FieldAmount: {
		core.ReasonEmptyInput:  "L'importo non può essere vuoto",
		core.ReasonNotANumber:  "L'importo deve essere un numero valido",
		core.ReasonNonPositive: "L'importo deve essere maggiore di zero",
		core.ReasonTooLarge:    "L'importo è troppo grande",
	},
	core.FieldDate: {
		core.ReasonEmptyInput:         "La data non può essere vuota",
		core.ReasonFutureDate:         "La data non può essere futura",
		core.ReasonTooOld:             "La data è troppo vecchia",
		core.ReasonUnrecognizedFormat: "Formato data non valido. Usa YYYY-MM-DD o DD/MM/YYYY",
	},
	core.FieldCategory: {
		core.ReasonEmptyInput:   "Seleziona una categoria",
		core.ReasonNotInCatalog: "Categoria non valida",
	},
}

// ValidationMessage renders err for the user.
func ValidationMessage(err *core.ValidationError) string {
	if err == nil {
		return ""
	}
	if err.Field == core.FieldDescription && err.Reason == core.ReasonTooLong {
		limit := err.Limit
		if limit <= 0 {
			limit = core.DefaultDescriptionMaxLength
		}
		return fmt.Sprintf("La descrizione non può superare %d caratteri", limit)
	}
	if msg, ok := validationMessages[err.Field][err.Reason]; ok {
		return msg
	}
	return fallbackValidationMessage
}
