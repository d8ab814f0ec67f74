// Package address は郵送先住所の組み立てを提供する。
package address

import (
	"context"

	"github.com/hitoshi/addressapi/internal/config"
	"github.com/hitoshi/addressapi/internal/model"
)

const (
	// PostcodeKey は郵便番号を解決する設定キー。
	PostcodeKey = "POSTCODE"
	// DefaultPostcode はPOSTCODEが未設定の場合の郵便番号。
	DefaultPostcode = "00000"
)

const (
	street  = "1600 Amphitheatre Parkway"
	city    = "Mountain View"
	state   = "California"
	country = "United States"
)

// Service は住所を組み立てるサービス層。
type Service struct {
	resolver config.Resolver
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(resolver config.Resolver) *Service {
	return &Service{resolver: resolver}
}

// Get は住所を返す。郵便番号は呼び出しごとにResolverから解決する。
func (s *Service) Get(ctx context.Context) *model.Address {
	return &model.Address{
		Street:   street,
		City:     city,
		State:    state,
		Country:  country,
		Postcode: s.resolver.Resolve(PostcodeKey, DefaultPostcode),
	}
}
