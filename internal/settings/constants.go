package settings

// DB config keys and defaults for settings.
const (
	// SiteNameKey is the DB config key for the platform name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback platform name.
	DefaultSiteName = "SalonKit"
	// SupportEmailKey is the DB config key for the support contact email.
	SupportEmailKey = "SUPPORT_EMAIL"
	// DefaultSupportEmail is the fallback support contact.
	DefaultSupportEmail = "suporte@salonkit.app"
	// SupportWhatsAppKey is the DB config key for the support WhatsApp number.
	SupportWhatsAppKey = "SUPPORT_WHATSAPP"
	// DefaultTrialDaysKey is the DB config key for the default trial length.
	DefaultTrialDaysKey = "DEFAULT_TRIAL_DAYS"
	// DefaultTrialDaysValue is the fallback trial length in days.
	DefaultTrialDaysValue = "7"
)
