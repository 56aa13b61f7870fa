package domain

// Settings is the page configuration edited from the dashboard.
type Settings struct {
	BrandingName            string  `json:"brandingName"`
	BrandingHandle          string  `json:"brandingHandle"`
	AvatarURL               string  `json:"avatarUrl"`
	CoverURL                string  `json:"coverUrl"`
	TargetGoal              int64   `json:"targetGoal"`
	FeePercent              float64 `json:"feePercent"`
	PaymentTolerancePercent float64 `json:"paymentTolerancePercent"`
	PaymentToleranceMin     int64   `json:"paymentToleranceMin"`
}

// DefaultSettings returns the settings applied for any field missing on disk.
func DefaultSettings() Settings {
	return Settings{
		BrandingName:            "AutoFtBot69",
		BrandingHandle:          "@AutoFtBot69",
		AvatarURL:               "/gambar.jpg",
		CoverURL:                "/viaQris.jpg",
		TargetGoal:              1000000,
		FeePercent:              0.007,
		PaymentTolerancePercent: 0.02,
		PaymentToleranceMin:     100,
	}
}

// SettingsPatch carries a partial settings update; nil fields are left as is.
type SettingsPatch struct {
	BrandingName            *string  `json:"brandingName"`
	BrandingHandle          *string  `json:"brandingHandle"`
	AvatarURL               *string  `json:"avatarUrl"`
	CoverURL                *string  `json:"coverUrl"`
	TargetGoal              *int64   `json:"targetGoal"`
	FeePercent              *float64 `json:"feePercent"`
	PaymentTolerancePercent *float64 `json:"paymentTolerancePercent"`
	PaymentToleranceMin     *int64   `json:"paymentToleranceMin"`
}

// Apply returns s with every non-nil field of p applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.BrandingName != nil {
		s.BrandingName = *p.BrandingName
	}
	if p.BrandingHandle != nil {
		s.BrandingHandle = *p.BrandingHandle
	}
	if p.AvatarURL != nil {
		s.AvatarURL = *p.AvatarURL
	}
	if p.CoverURL != nil {
		s.CoverURL = *p.CoverURL
	}
	if p.TargetGoal != nil {
		s.TargetGoal = *p.TargetGoal
	}
	if p.FeePercent != nil {
		s.FeePercent = *p.FeePercent
	}
	if p.PaymentTolerancePercent != nil {
		s.PaymentTolerancePercent = *p.PaymentTolerancePercent
	}
	if p.PaymentToleranceMin != nil {
		s.PaymentToleranceMin = *p.PaymentToleranceMin
	}
	return s
}
