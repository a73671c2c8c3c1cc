package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"whatsapp-support/internal/models"
	"whatsapp-support/internal/utils"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// mensagens de erro com o nome do campo no JSON
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Preflight responde OPTIONS com 200 vazio antes de chegar no handler.
func Preflight(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

// decodeAndValidate lê o corpo JSON e aplica as tags validate.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.InvalidInputError("Corpo da requisição vazio")
		}
		return models.WrapError(models.KindInvalidInput, "Erro ao decodificar requisição", err)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, describeField(fe))
			}
			return models.InvalidInputError("Requisição inválida: " + strings.Join(fields, "; "))
		}
		return models.WrapError(models.KindInvalidInput, "Requisição inválida", err)
	}
	return nil
}

// decodeOptional aceita corpo vazio.
func decodeOptional(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return models.WrapError(models.KindInvalidInput, "Erro ao decodificar requisição", err)
	}
	return nil
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " é obrigatório"
	case "oneof":
		return fmt.Sprintf("%s deve ser um de [%s]", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s excede o máximo de %s", fe.Field(), fe.Param())
	case "url":
		return fe.Field() + " deve ser uma URL"
	default:
		return fmt.Sprintf("%s inválido (%s)", fe.Field(), fe.Tag())
	}
}

// fail registra o erro uma única vez e devolve o envelope correspondente.
func fail(w http.ResponseWriter, route string, err error) {
	if models.KindOf(err) == models.KindInternal || models.KindOf(err) == models.KindUpstream || models.KindOf(err) == models.KindConfig {
		utils.LogError("Erro em %s: %v", route, err)
	} else {
		utils.LogWarning("Requisição recusada em %s: %v", route, err)
	}
	models.RespondWithError(w, err)
}

func ok(w http.ResponseWriter, message string, data interface{}) {
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse(message, data))
}

// ServiceRoleAuth exige a service-role key em apikey ou Authorization: Bearer.
func ServiceRoleAuth(key string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				fail(w, r.URL.Path, models.ConfigError("SERVICE_ROLE_KEY não configurada"))
				return
			}

			if !keyMatches(requestKey(r, "apikey"), key) {
				fail(w, r.URL.Path, models.ForbiddenError("Chave de serviço inválida"))
				return
			}
			next(w, r)
		}
	}
}

// requestKey lê a chave do header indicado ou de Authorization: Bearer.
func requestKey(r *http.Request, header string) string {
	if provided := r.Header.Get(header); provided != "" {
		return provided
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func keyMatches(provided, key string) bool {
	return provided != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1
}

// Health informa que o processo está de pé.
func Health(w http.ResponseWriter, r *http.Request) {
	ok(w, "ok", map[string]string{"status": "up"})
}
