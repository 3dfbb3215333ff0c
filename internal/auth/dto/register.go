package dto

type RegisterInput struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ConfirmationCodeInput struct {
	Code string `json:"code"`
}

type EmailInput struct {
	Email string `json:"email"`
}

type NewPasswordInput struct {
	NewPassword  string `json:"newPassword"`
	RecoveryCode string `json:"recoveryCode"`
}
