package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/hitoshi/devconnector/internal/model"
)

// validate はリクエストボディの検証器。パラメータ名にはjsonタグの名前を使う。
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// fieldError は検証に失敗した1項目を表す。
type fieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// validationErrorResponse は {"errors": [{"param", "msg"}]} 形式の検証エラーレスポンス。
type validationErrorResponse struct {
	Errors []fieldError `json:"errors"`
}

// decodeAndValidate はリクエストボディをdstにデコードし、validateタグで検証する。
// 失敗した場合は400を書き込みfalseを返す。
// 各項目のエラーメッセージはmsgタグで指定する。
// 失敗したルールごとに変える場合は msg_<rule> タグ（例: msg_max）で上書きする。
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeAPIErrorResponse(w, http.StatusRequestEntityTooLarge, &model.APIError{
				Code:     model.ErrCodeInvalidRequest,
				Message:  "Request body too large.",
				Category: "validation",
			})
			return false
		}
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "Request body must be valid JSON.",
			Category: "validation",
		})
		return false
	}

	err := validate.Struct(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		handleServiceError(w, err)
		return false
	}

	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	resp := validationErrorResponse{Errors: make([]fieldError, 0, len(verrs))}
	seen := make(map[string]bool)
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		resp.Errors = append(resp.Errors, fieldError{
			Param: fe.Field(),
			Msg:   fieldMessage(t, fe),
		})
	}
	writeJSON(w, http.StatusBadRequest, resp)
	return false
}

func fieldMessage(t reflect.Type, fe validator.FieldError) string {
	if f, ok := t.FieldByName(fe.StructField()); ok {
		if msg := f.Tag.Get("msg_" + fe.Tag()); msg != "" {
			return msg
		}
		if msg := f.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	return fe.Field() + " is invalid"
}
