package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/addressapi/internal/model"
)

// UserIDParam はユーザーIDのパスパラメータ名。
const UserIDParam = "user_id"

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// FindByID は指定IDのユーザーを返す。存在しない場合はUSER_NOT_FOUNDのAPIErrorを返す。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
}

// UserHandler はユーザー参照のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// GetUser は指定IDのユーザーを返す。
// GET /users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, UserIDParam))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	user, err := h.service.FindByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// parseUserID はパスセグメントを符号付き整数に変換する。
// 整数として解釈できない場合はINVALID_PARAMETER、
// 整数だがint64に収まらない場合は該当ユーザーが存在し得ないためUSER_NOT_FOUNDを返す。
func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, model.NewUserNotFoundError(raw)
		}
		return 0, model.NewInvalidParameterError(UserIDParam, raw)
	}
	return id, nil
}
