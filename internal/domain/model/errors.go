package model

import "errors"

// 検索パスのエラー種別。ハンドラー層で errors.Is によりHTTPステータスへ変換する
var (
	// ErrInvalidSearchParams 不正な座標・半径。I/O実行前に返す
	ErrInvalidSearchParams = errors.New("検索パラメータが不正です（座標または半径を確認してください）")

	// ErrUpstreamUnavailable 上流プロバイダの通信エラーまたは非2xxレスポンス
	ErrUpstreamUnavailable = errors.New("上流プロバイダへのアクセスに失敗しました")

	// ErrPlaceNotFound 指定されたplace_idのエントリが存在しない
	ErrPlaceNotFound = errors.New("指定されたプレイスが見つかりません")

	// ErrMissingCoordinates 座標のない上流レスポンス。該当アイテムのみスキップする
	ErrMissingCoordinates = errors.New("上流レスポンスに有効な座標がありません")
)
