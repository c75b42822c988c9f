package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type NewAccountMailData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AccountApprovedMailData struct {
	Name string `json:"name"`
}

type ResetPasswordMailData struct {
	Name       string `json:"name"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type DemandAssignedMailData struct {
	Name        string `json:"name"`
	DemandTitle string `json:"demandTitle"`
	DueAt       string `json:"dueAt"`
}
