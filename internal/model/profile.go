// Package model はドメインモデルを定義する。
package model

import "time"

// Profile はユーザーのプロフィールを表す。ユーザーと1対1で紐付く。
// Experience、Educationは新しい順（先頭が最新）に並ぶ。
type Profile struct {
	ID             string
	UserID         string
	Company        string
	Website        string
	Location       string
	Status         string
	Skills         []string
	Bio            string
	GitHubUsername string
	Social         Social
	Experience     []Experience
	Education      []Education
	Version        int // 楽観的排他制御用
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// 読み取り時にusersテーブルから結合される
	UserName   string
	UserAvatar string
}

// Social はプロフィールのSNSリンクを表す。
// profiles.socialカラムにJSONとして保存される。
type Social struct {
	YouTube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Experience は職歴エントリを表す。
// profiles.experienceカラムにJSON配列として保存される。
type Experience struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	From        string `json:"from"`
	To          string `json:"to,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

// EntryID はエントリの識別子を返す。
func (e Experience) EntryID() string { return e.ID }

// Education は学歴エントリを表す。
// profiles.educationカラムにJSON配列として保存される。
type Education struct {
	ID           string `json:"id"`
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to,omitempty"`
	Current      bool   `json:"current"`
	Description  string `json:"description,omitempty"`
}

// EntryID はエントリの識別子を返す。
func (e Education) EntryID() string { return e.ID }

// ProfileFields はプロフィール作成・更新時にクライアントが指定するスカラー項目。
// 空文字列の項目は更新しない。
type ProfileFields struct {
	Company        string
	Website        string
	Location       string
	Status         string
	Skills         []string
	Bio            string
	GitHubUsername string
	Social         Social
}
