package model

// Address は郵送先住所を表す。
// Postcode以外は固定値で、Postcodeのみリクエストごとに設定から解決する。
// 空文字列でもキーを省略しないため、omitemptyは付けない。
type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Postcode string `json:"postcode"`
}
