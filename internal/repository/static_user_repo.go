package repository

import (
	"context"

	"github.com/hitoshi/addressapi/internal/model"
)

// DefaultUsers はプロセス起動時に読み込む固定のユーザーディレクトリ。
func DefaultUsers() []model.User {
	return []model.User{
		{UserID: 1, Name: "John Doe", Email: "john@example.com"},
	}
}

// StaticUserRepo は起動時に構築され、以後変更されないインメモリのUserRepository実装。
// 書き込みがないため並行アクセスでもロックは不要。
type StaticUserRepo struct {
	users map[int64]model.User
}

// NewStaticUserRepo は与えられたユーザー一覧からStaticUserRepoを生成する。
// 同じIDが複数ある場合は後勝ちとする。
func NewStaticUserRepo(users []model.User) *StaticUserRepo {
	m := make(map[int64]model.User, len(users))
	for _, u := range users {
		m[u.UserID] = u
	}
	return &StaticUserRepo{users: m}
}

// FindByID は指定IDのユーザーのコピーを返す。見つからない場合はnilを返す。
func (r *StaticUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
