// Package validation envuelve go-playground/validator detrás de una API chica
// para que los DTOs de request se validen de forma consistente antes de tocar SMTP.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// ErrTranslatorNotFound indica que el traductor pedido no está disponible.
var ErrTranslatorNotFound = errors.New("translator not found")

// FieldErrors es un mapa campo→mensaje devuelto cuando falla la validación.
// Las claves usan el nombre JSON del campo para que el cliente pueda
// correlacionar con su payload.
type FieldErrors map[string]string

// Error implementa la interfaz error.
func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation error"
	}
	b, err := json.Marshal(fe)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values retorna el mapa de errores por campo.
func (fe FieldErrors) Values() map[string]string {
	return fe
}

// Validator valida structs usando go-playground/validator v10 con mensajes en
// inglés. Es seguro para uso concurrente.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New construye un Validator con traducciones y nombres de campo por tag JSON.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Reportar errores con el nombre JSON del campo, no el nombre Go.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	return &Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// MustNew construye un Validator o hace panic.
// Usar solo en wiring de inicio donde un fallo es fatal de todos modos.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Struct valida un struct y retorna FieldErrors si la validación falla.
// Cualquier otro error (uso inválido del validador) se retorna tal cual.
func (v *Validator) Struct(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		fieldErrs := make(FieldErrors)
		for _, fe := range validateErrs {
			key := fe.Field()
			// Para elementos de slice el namespace incluye el índice
			// (ej: "to_emails[1]"); lo conservamos para señalar cuál falló.
			if ns := fe.Namespace(); strings.Contains(ns, "[") {
				if i := strings.Index(ns, "."); i >= 0 {
					key = ns[i+1:]
				}
			}
			fieldErrs[key] = fe.Translate(v.translator)
		}

		return fieldErrs
	}

	return nil
}

// singleton liviano para validaciones sueltas (ValidEmail).
var varValidate = validator.New()

// ValidEmail valida la sintaxis de una dirección de email.
func ValidEmail(s string) bool {
	return varValidate.Var(s, "required,email") == nil
}
