package common

// Template values shipped in the example config. Secrets left at these values
// are errors; addresses are warnings.
const (
	PlaceholderMailUser     = "your_email@gmail.com"
	PlaceholderMailPassword = "your_app_password_here"
	PlaceholderRejectionTo  = "your_fallback@email.com"
	PlaceholderDBServer     = "your_server"
	PlaceholderDBUser       = "your_username"
	PlaceholderDBPassword   = "your_password_here"
)

// PlaceholderReport lists settings still holding template values.
type PlaceholderReport struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether the configuration can be used as is.
func (r PlaceholderReport) OK() bool {
	return len(r.Errors) == 0
}

// Clean reports whether nothing at all was flagged.
func (r PlaceholderReport) Clean() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// CheckPlaceholders finds settings that were copied from the template and
// never filled in. Mail settings are only checked when mail is enabled.
func CheckPlaceholders(cfg *Config) PlaceholderReport {
	errs, warns := NewValidator(), NewValidator()

	errs.Field("database.dsn", cfg.Database.DSN, NotPlaceholder(PlaceholderDBPassword))
	warns.Field("database.dsn", cfg.Database.DSN, NotPlaceholder(PlaceholderDBServer), NotPlaceholder(PlaceholderDBUser))

	if cfg.Mail.Enabled {
		errs.Field("mail.password", cfg.Mail.Password, NotPlaceholder(PlaceholderMailPassword))
		warns.Field("mail.username", cfg.Mail.Username, NotPlaceholder(PlaceholderMailUser))
		warns.Field("mail.from", cfg.Mail.From, NotPlaceholder(PlaceholderMailUser))
		warns.Field("mail.rejection_to", cfg.Mail.RejectionTo, NotPlaceholder(PlaceholderRejectionTo))
	}

	return PlaceholderReport{Errors: errs.Errors(), Warnings: warns.Errors()}
}
