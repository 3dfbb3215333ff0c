package dto

type RefreshInput struct {
	RefreshToken string `json:"-"`
	IPAddress    string `json:"-"`
	UserAgent    string `json:"-"`
}
