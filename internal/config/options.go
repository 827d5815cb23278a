package config

const (
	defaultLogFile             = "e-library.log"
	defaultLogLevel            = "info"
	defaultLogFileMaxSize      = 20
	defaultLogFileMaxBackups   = 3
	defaultLogFileMaxAge       = 28
	defaultLogCompress         = false
	defaultPort                = 8080
	defaultHost                = "0.0.0.0"
	defaultData                = "/var/opt/e-library"
	defaultDSN                 = ""
	defaultWorkerPoolSize      = 2
	defaultLoanMaxWeeks        = 4
	defaultRenewalDefaultWeeks = 3
	defaultPageSize            = 10
	defaultTimeZone            = "Local"
	defaultOverdueScanCron     = "0 0 * * *"
	defaultShutdownTimeout     = 10
	defaultAccessTokenHours    = 7 * 24
	defaultCompressResponses   = true

	envPrefix = "ELIBRARY"
)

// Why use mapstructure instead of json, if use json as field tags, it can't recgnize the field, since the viper use mapstructure.
// see: https://pkg.go.dev/github.com/mitchellh/mapstructure#hdr-Field_Tags
type Options struct {
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFilemaxSize is the maximum size of the log file before it is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// DSN is the path of the sqlite database, defaults to <data>/e-library.db
	DSN string `mapstructure:"dsn_uri"`
	// port is the port to listen on
	Port int `mapstructure:"port"`
	// host is the host to listen on
	Host string `mapstructure:"host"`
	// data is the directory to store data
	Data           string `mapstructure:"data"`
	WorkerPoolSize int    `mapstructure:"worker_pool_size"`
	// LoanMaxWeeks bounds checkout and renewal due dates: [today, today+N weeks]
	LoanMaxWeeks int `mapstructure:"loan_max_weeks"`
	// RenewalDefaultWeeks is the renewal date proposed by the renew form
	RenewalDefaultWeeks int `mapstructure:"renewal_default_weeks"`
	PageSize            int `mapstructure:"page_size"`
	// TimeZone decides what "today" is, an IANA name or Local
	TimeZone        string `mapstructure:"time_zone"`
	OverdueScanCron string `mapstructure:"overdue_scan_cron"`
	// ShutdownTimeout in seconds
	ShutdownTimeout   int  `mapstructure:"shutdown_timeout"`
	AccessTokenHours  int  `mapstructure:"access_token_hours"`
	CompressResponses bool `mapstructure:"compress_responses"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		LogFile:             defaultLogFile,
		LogLevel:            defaultLogLevel,
		LogFileMaxSize:      defaultLogFileMaxSize,
		LogFileMaxBackups:   defaultLogFileMaxBackups,
		LogFileMaxAge:       defaultLogFileMaxAge,
		LogCompress:         defaultLogCompress,
		DSN:                 defaultDSN,
		Port:                defaultPort,
		Host:                defaultHost,
		Data:                defaultData,
		WorkerPoolSize:      defaultWorkerPoolSize,
		LoanMaxWeeks:        defaultLoanMaxWeeks,
		RenewalDefaultWeeks: defaultRenewalDefaultWeeks,
		PageSize:            defaultPageSize,
		TimeZone:            defaultTimeZone,
		OverdueScanCron:     defaultOverdueScanCron,
		ShutdownTimeout:     defaultShutdownTimeout,
		AccessTokenHours:    defaultAccessTokenHours,
		CompressResponses:   defaultCompressResponses,
	}
	return Opts
}

// defaultValues feeds viper so that environment variables are picked up by Unmarshal.
func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"log_file":              defaultLogFile,
		"log_level":             defaultLogLevel,
		"log_file_max_size":     defaultLogFileMaxSize,
		"log_file_max_backups":  defaultLogFileMaxBackups,
		"log_file_max_age":      defaultLogFileMaxAge,
		"log_compress":          defaultLogCompress,
		"dsn_uri":               defaultDSN,
		"port":                  defaultPort,
		"host":                  defaultHost,
		"data":                  defaultData,
		"worker_pool_size":      defaultWorkerPoolSize,
		"loan_max_weeks":        defaultLoanMaxWeeks,
		"renewal_default_weeks": defaultRenewalDefaultWeeks,
		"page_size":             defaultPageSize,
		"time_zone":             defaultTimeZone,
		"overdue_scan_cron":     defaultOverdueScanCron,
		"shutdown_timeout":      defaultShutdownTimeout,
		"access_token_hours":    defaultAccessTokenHours,
		"compress_responses":    defaultCompressResponses,
	}
}
