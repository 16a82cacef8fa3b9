package email

// Config holds outbound email configuration. The Postmark tokens are
// optional so development setups can run on the logging sender; the sender
// identity is always required.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"helpdesk@opsdesk.local"`
	ReplyToEmail         string `env:"REPLY_TO_EMAIL"`
}
