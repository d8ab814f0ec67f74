// Package model はドメインモデルを定義する。
package model

// User はユーザーディレクトリの1エントリを表す。
// JSONのキーは user_id、name、email の3つに固定される。
type User struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}
