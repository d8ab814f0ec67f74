package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/addressapi/internal/model"
)

// AddressServiceInterface は住所ハンドラーが必要とするサービスインターフェース。
type AddressServiceInterface interface {
	Get(ctx context.Context) *model.Address
}

// AddressHandler は住所取得のHTTPハンドラー。
type AddressHandler struct {
	service AddressServiceInterface
}

// NewAddressHandler はAddressHandlerを生成する。
func NewAddressHandler(service AddressServiceInterface) *AddressHandler {
	return &AddressHandler{
		service: service,
	}
}

// GetAddress は住所を返す。エラーにはならない。
// GET /address
func (h *AddressHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Get(r.Context()))
}
