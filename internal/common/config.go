package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Parser     ParserConfig     `mapstructure:"parser"`
	TextSource TextSourceConfig `mapstructure:"text_source"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
	Mail       MailConfig       `mapstructure:"mail"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Export     ExportConfig     `mapstructure:"export"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	InsertAttempts  uint          `mapstructure:"insert_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr  string `mapstructure:"grpc_addr"`
	PlainLogs bool   `mapstructure:"plain_logs"`
}

// ParserConfig tunes the field extractor.
type ParserConfig struct {
	StrictDates    bool   `mapstructure:"strict_dates"`
	UniqueDates    bool   `mapstructure:"unique_date_spans"`
	DatePairPolicy string `mapstructure:"date_pair_policy"`
	ContextWindow  int    `mapstructure:"context_window"`
	SitesFile      string `mapstructure:"sites_file"`
	MinFields      int    `mapstructure:"min_fields"`
}

// TextSourceConfig controls how document text is obtained.
type TextSourceConfig struct {
	PDFToText string        `mapstructure:"pdftotext"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// IngestConfig holds inbox and worker settings.
type IngestConfig struct {
	InboxDir       string        `mapstructure:"inbox_dir"`
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
	Debounce       time.Duration `mapstructure:"debounce"`
}

// MailConfig holds outbound notification settings.
type MailConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	SMTPHost     string        `mapstructure:"smtp_host"`
	SMTPPort     int           `mapstructure:"smtp_port"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	From         string        `mapstructure:"from"`
	RejectionTo  string        `mapstructure:"rejection_to"`
	ReportTo     string        `mapstructure:"report_to"`
	SendAttempts uint          `mapstructure:"send_attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
}

// ScheduleConfig holds cron specs for periodic jobs. An empty spec disables the job.
type ScheduleConfig struct {
	InboxSweep  string `mapstructure:"inbox_sweep"`
	DailyReport string `mapstructure:"daily_report"`
}

// ExportConfig holds output locations.
type ExportConfig struct {
	XLSXPath string `mapstructure:"xlsx_path"`
	LogCSV   string `mapstructure:"log_csv"`
}

// Date pair policies accepted by ParserConfig.DatePairPolicy.
const (
	PolicyDeliveryFirst = "delivery_first"
	PolicyShipmentFirst = "shipment_first"
)

var defaults = map[string]any{
	"database.driver":             "sqlite",
	"database.dsn":                "file:bol.db?_pragma=foreign_keys(1)",
	"database.max_conns":          20,
	"database.min_conns":          2,
	"database.max_conn_lifetime":  30 * time.Minute,
	"database.max_conn_idle_time": 5 * time.Minute,
	"database.dial_timeout":       3 * time.Second,
	"database.insert_attempts":    3,
	"database.retry_delay":        200 * time.Millisecond,

	"server.grpc_addr":  ":8080",
	"server.plain_logs": false,

	"parser.strict_dates":      false,
	"parser.unique_date_spans": false,
	"parser.date_pair_policy":  PolicyDeliveryFirst,
	"parser.context_window":    48,
	"parser.sites_file":        "",
	"parser.min_fields":        1,

	"text_source.pdftotext": "pdftotext",
	"text_source.timeout":   60 * time.Second,

	"ingest.inbox_dir":       "attachments",
	"ingest.workers":         4,
	"ingest.queue_size":      64,
	"ingest.process_timeout": 2 * time.Minute,
	"ingest.debounce":        500 * time.Millisecond,

	"mail.enabled":       false,
	"mail.smtp_host":     "smtp.gmail.com",
	"mail.smtp_port":     587,
	"mail.username":      PlaceholderMailUser,
	"mail.password":      PlaceholderMailPassword,
	"mail.from":          PlaceholderMailUser,
	"mail.rejection_to":  PlaceholderRejectionTo,
	"mail.report_to":     "",
	"mail.send_attempts": 3,
	"mail.retry_delay":   2 * time.Second,

	"schedule.inbox_sweep":  "@every 15m",
	"schedule.daily_report": "0 9 * * *",

	"export.xlsx_path": "shipments.xlsx",
	"export.log_csv":   "order_log.csv",
}

// LoadConfig reads defaults, an optional YAML file and BOL_* environment
// variables, in increasing precedence. An empty path searches ./bol.yaml and
// $HOME/.bol/bol.yaml; a missing file there is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix("BOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bol")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bol")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, NewAppError("CONFIG_ERROR", "read config file", fmt.Errorf("%w: %w", ErrConfig, err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "unmarshal config", fmt.Errorf("%w: %w", ErrConfig, err))
	}
	return &cfg, nil
}

// Validate performs structural checks on the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("database.driver", c.Database.Driver, Required, OneOf("postgres", "sqlite"))
	v.Field("database.dsn", c.Database.DSN, Required)
	v.Field("server.grpc_addr", c.Server.GRPCAddr, Required)
	v.Field("parser.date_pair_policy", c.Parser.DatePairPolicy, OneOf(PolicyDeliveryFirst, PolicyShipmentFirst))
	v.Field("parser.min_fields", c.Parser.MinFields, IntRange(0, 15))
	v.Field("ingest.workers", c.Ingest.Workers, IntRange(1, 256))
	if c.Mail.Enabled {
		v.Field("mail.smtp_host", c.Mail.SMTPHost, Required)
		v.Field("mail.smtp_port", c.Mail.SMTPPort, IntRange(1, 65535))
		v.Field("mail.from", c.Mail.From, Required)
		v.Field("mail.rejection_to", c.Mail.RejectionTo, Required)
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrConfig)
	}
	return nil
}
