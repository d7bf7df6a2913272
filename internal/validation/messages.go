package validation

import (
	"fmt"

	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Validation messages are user-facing and shown inline next to form inputs,
// so they are written in Spanish like the rest of the product.
var tagMessages = map[string]string{
	"required":       "este campo es obligatorio",
	"email":          "debe ser un correo electrónico válido",
	"url":            "debe ser una URL válida",
	"codigo_postal":  "el código postal debe tener exactamente 5 dígitos",
	"nombre_persona": "solo puede contener letras y espacios",
	"telefono":       "debe ser un número de teléfono válido",
}

// formatFieldError renders one validator violation as a user-facing message.
func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("debe tener al menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("debe tener al menos %s elementos", fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("no debe exceder %s caracteres", fe.Param())
		}
		return fmt.Sprintf("no debe exceder %s elementos", fe.Param())
	case "gt":
		return fmt.Sprintf("debe ser mayor que %s", fe.Param())
	case "gte":
		return fmt.Sprintf("debe ser mayor o igual a %s", fe.Param())
	case "lt":
		return fmt.Sprintf("debe ser menor que %s", fe.Param())
	case "lte":
		return fmt.Sprintf("debe ser menor o igual a %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	case "eq":
		// Only used for termsAccepted.
		return "debe aceptar los términos y condiciones"
	case "fecha", "fecha_req":
		if fd, ok := fe.Value().(domain.FlexDate); ok && !fd.IsSet() {
			return "este campo es obligatorio"
		}
		return "debe ser una fecha válida"
	}
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg
	}
	return "valor inválido"
}
