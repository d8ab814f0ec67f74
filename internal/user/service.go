// Package user はユーザーディレクトリ参照のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hitoshi/addressapi/internal/model"
	"github.com/hitoshi/addressapi/internal/repository"
)

// Service はユーザー参照のサービス層。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{
		userRepo: userRepo,
	}
}

// FindByID は指定IDのユーザーを返す。
// 存在しない場合はUSER_NOT_FOUNDのAPIErrorを返す。
func (s *Service) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError(strconv.FormatInt(userID, 10))
	}
	return u, nil
}
