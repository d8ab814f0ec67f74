package config

import "os"

// Resolver は名前付きの設定値をリクエスト時に解決するインターフェース。
// 値が存在しない場合のみdefaultValを返す。空文字列は「存在する値」として扱う。
type Resolver interface {
	Resolve(key, defaultVal string) string
}

// EnvResolver はプロセスの環境変数から値を解決する。
// キャッシュしないため、環境変数の変更は次の呼び出しから反映される。
type EnvResolver struct{}

// Resolve は環境変数keyの現在値を返す。未設定の場合はdefaultValを返す。
func (EnvResolver) Resolve(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

// MapResolver は固定のマップから値を解決する。テストで実環境を汚さずに使う。
type MapResolver map[string]string

// Resolve はマップにkeyがあればその値を、なければdefaultValを返す。
func (m MapResolver) Resolve(key, defaultVal string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return defaultVal
}
