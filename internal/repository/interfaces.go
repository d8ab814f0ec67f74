// Package repository はユーザーディレクトリの参照インターフェースと実装を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/addressapi/internal/model"
)

// UserRepository はユーザーデータの参照インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)
}
