package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		Timezone string `envconfig:"TIMEZONE"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
		APIKey string `envconfig:"API_KEY"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
				PoolSize int    `envconfig:"POOL_SIZE" default:"10"`
				TLS      bool   `envconfig:"TLS"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret     string `envconfig:"ACCESS_SECRET"`
		RefreshSecret    string `envconfig:"REFRESH_SECRET"`
		AccessExpireMin  int    `envconfig:"ACCESS_EXPIRE_MIN"`
		RefreshExpireMin int    `envconfig:"REFRESH_EXPIRE_MIN"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry        int            `envconfig:"MAX_RETRY"`
			RetryWaitTime   int            `envconfig:"RETRY_WAIT_TIME"`
			MigrationTable  string         `envconfig:"MIGRATION_TABLE"`
			AutoMigrate     bool           `envconfig:"AUTO_MIGRATE"`
			Prefix          string         `envconfig:"PREFIX"`
			MaxOpenConns    int            `envconfig:"MAX_OPEN_CONNS" default:"10"`
			MaxIdleConns    int            `envconfig:"MAX_IDLE_CONNS" default:"10"`
			ConnMaxLifetime int            `envconfig:"CONN_MAX_LIFETIME" default:"300"`
			Read            PostgresServer `envconfig:"READ"`
			Write           PostgresServer `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Brokers []string `envconfig:"BROKERS"`
		SASL    struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		TLS           bool   `envconfig:"TLS"`
		ConsumerGroup string `envconfig:"CONSUMER_GROUP"`
		MaxAttempts   int    `envconfig:"MAX_ATTEMPTS" default:"3"`
		RetryBackoff  int    `envconfig:"RETRY_BACKOFF_MS" default:"500"`
		Topics        struct {
			BookingEvents string `envconfig:"BOOKING_EVENTS" default:"booking-events"`
		} `envconfig:"TOPICS"`
	} `envconfig:"KAFKA"`

	Booking struct {
		TaxRate                  float64 `envconfig:"TAX_RATE"                     default:"0.17"`
		Currency                 string  `envconfig:"CURRENCY"                     default:"usd"`
		IDPrefix                 string  `envconfig:"ID_PREFIX"                    default:"AGH"`
		HoldMinutes              int     `envconfig:"HOLD_MINUTES"                 default:"30"`
		SweepIntervalMinutes     int     `envconfig:"SWEEP_INTERVAL_MINUTES"       default:"30"`
		SweepWithServer          bool    `envconfig:"SWEEP_WITH_SERVER"            default:"true"`
		RequirePaymentForCheckIn bool    `envconfig:"REQUIRE_PAYMENT_FOR_CHECK_IN" default:"true"`
		HotelEmail               string  `envconfig:"HOTEL_EMAIL"`
	} `envconfig:"BOOKING"`

	Metrics struct {
		Enable bool `envconfig:"ENABLE"`
	} `envconfig:"METRICS"`

	External struct {
		Otel struct {
			Endpoint    string  `envconfig:"ENDPOINT"`
			Insecure    bool    `envconfig:"INSECURE" default:"true"`
			SampleRatio float64 `envconfig:"SAMPLE_RATIO" default:"1"`
		} `envconfig:"OTEL"`
		S3 struct {
			BucketName           string `envconfig:"BUCKET_NAME"`
			APIEndpoint          string `envconfig:"API_ENDPOINT"`
			PublicDomain         string `envconfig:"PUBLIC_DOMAIN"`
			Region               string `envconfig:"REGION" default:"auto"`
			AccessKeyID          string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey      string `envconfig:"SECRET_ACCESS_KEY"`
			PresignExpirySeconds int    `envconfig:"PRESIGN_EXPIRY_SECONDS" default:"3600"`
		} `envconfig:"S3"`
		Stripe struct {
			SecretKey     string `envconfig:"SECRET_KEY"`
			WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
			SuccessURL    string `envconfig:"SUCCESS_URL"`
			CancelURL     string `envconfig:"CANCEL_URL"`
		} `envconfig:"STRIPE"`
		Brevo struct {
			BaseURL           string `envconfig:"BASE_URL" default:"https://api.brevo.com/v3"`
			APIKey            string `envconfig:"API_KEY"`
			SenderName        string `envconfig:"SENDER_NAME"`
			SenderEmail       string `envconfig:"SENDER_EMAIL"`
			RequestsPerSecond int    `envconfig:"REQUESTS_PER_SECOND" default:"5"`
		} `envconfig:"BREVO"`
	} `envconfig:"EXTERNAL"`
}

var (
	conf        Config
	once        sync.Once
	initialized bool
)

func Init() error {
	var err error

	once.Do(func() {
		if loadErr := godotenv.Load(".env"); loadErr != nil {
			log.Warn().Err(loadErr).Msg("Could not load .env file, continuing with existing environment variables")
		} else {
			log.Info().Msg("Successfully loaded variables from .env file into environment")
		}

		err = envconfig.Process("", &conf)
		if err != nil {
			return
		}

		initialized = true

		log.Info().Msg("Service configuration initialized successfully")
	})

	if err != nil {
		return fmt.Errorf("processing environment variables: %w", err)
	}

	return nil
}

func Get() *Config {
	if !initialized {
		if err := Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize configuration")
		}
	}

	return &conf
}

// PostgresServer is one side of the read/write database split.
type PostgresServer struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE"`
	SSLMode  string `envconfig:"SSL_MODE"`
}
